package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/utils"
)

type CatalogService interface {
	Add(ctx context.Context, line string) error
	GetMovie(ctx context.Context, title string) (models.Movie, error)
}

// CatalogHandler handles writes to and lookups in the movie catalog
type CatalogHandler struct {
	svc CatalogService
}

func NewCatalogHandler(svc CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/add", h.Add)
	e.GET("/movies/:title", h.GetMovie)
}

// Add handles POST /add
func (h *CatalogHandler) Add(c echo.Context) error {
	req, err := utils.BindRequest[models.AddRequest](c, http.StatusUnprocessableEntity, "data_line is required")
	if err != nil {
		return err
	}

	if err := h.svc.Add(c.Request().Context(), req.DataLine); err != nil {
		return err
	}

	return SuccessResponse(c, models.AddResponse{Status: "ok"})
}

// GetMovie handles GET /movies/:title
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	movie, err := h.svc.GetMovie(c.Request().Context(), c.Param("title"))
	if err != nil {
		return err
	}
	return SuccessResponse(c, movie)
}
