// Package frontend is the server rendered UI in front of the poppy API.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/poppy/pkg/models"
)

const title = "Text→SQL UI"

// ModelLister lists the models installed in the LLM service.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

type Handler struct {
	cfg      Config
	renderer *Renderer
	backend  Backend
	models   ModelLister
	logger   ectologger.Logger
	now      func() time.Time
}

// NewHandler builds the UI handler. models may be nil.
func NewHandler(cfg Config, backend Backend, models ModelLister, logger ectologger.Logger) (*Handler, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Handler{
		cfg:      cfg,
		renderer: renderer,
		backend:  backend,
		models:   models,
		logger:   logger,
		now:      time.Now,
	}, nil
}

type indexPage struct {
	Title        string
	DefaultModel string
	Models       []string
	Error        string
	DataLine     string
}

type healthPage struct {
	Status string
	Error  string
}

type schemaPage struct {
	Rows []models.SchemaColumn
}

type addResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Renderer = h.renderer

	e.GET("/", h.Index)
	e.GET("/health", h.Health)
	e.GET("/schema", h.Schema)
	e.POST("/add", h.Add)
	e.POST("/ui/add", h.UIAdd)
	e.POST("/ui/sql", h.UISQL)
	e.POST("/ui/search", h.UISearch)
	e.StaticFS("/static", staticFiles())
}

// Index handles GET /
func (h *Handler) Index(c echo.Context) error {
	return h.renderIndex(c, http.StatusOK, "", "")
}

func (h *Handler) renderIndex(c echo.Context, code int, errMsg, dataLine string) error {
	return c.Render(code, "index.html", indexPage{
		Title:        title,
		DefaultModel: h.cfg.DefaultModel,
		Models:       h.modelChoices(c.Request().Context()),
		Error:        errMsg,
		DataLine:     dataLine,
	})
}

// modelChoices always offers the default model first.
func (h *Handler) modelChoices(ctx context.Context) []string {
	choices := []string{h.cfg.DefaultModel}
	if h.models == nil {
		return choices
	}

	installed, err := h.models.ListModels(ctx)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Debug("could not list llm models")
		return choices
	}
	for _, m := range installed {
		if m != h.cfg.DefaultModel {
			choices = append(choices, m)
		}
	}
	return choices
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	page := healthPage{Status: models.HealthDown}
	res, err := h.backend.DBHealth(c.Request().Context())
	if err != nil {
		page.Error = networkError(err)
	} else {
		page.Status = res.Status
	}
	return c.Render(http.StatusOK, "health.html", page)
}

// Schema handles GET /schema
func (h *Handler) Schema(c echo.Context) error {
	rows, err := h.backend.SchemaSummary(c.Request().Context())
	if err != nil {
		return bubble(c, http.StatusBadGateway, networkError(err))
	}
	return c.Render(http.StatusOK, "schema.html", schemaPage{Rows: rows})
}

// Add handles the no-JS form post of a data line.
func (h *Handler) Add(c echo.Context) error {
	dataLine := c.FormValue("data_line")
	if dataLine == "" {
		return c.Redirect(http.StatusFound, "/")
	}

	res, err := h.backend.Add(c.Request().Context(), dataLine)
	if err != nil {
		return h.renderIndex(c, http.StatusBadGateway, networkError(err), dataLine)
	}
	if !res.OK() {
		return h.renderIndex(c, http.StatusOK, res.Detail, dataLine)
	}
	return c.Redirect(http.StatusFound, "/schema")
}

// UIAdd handles POST /ui/add for the modal and answers JSON.
func (h *Handler) UIAdd(c echo.Context) error {
	var req models.AddRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil || !isJSON(c) {
		return c.JSON(http.StatusBadRequest, addResponse{Error: "Body JSON mancante/non valido"})
	}

	dataLine := strings.TrimSpace(req.DataLine)
	if dataLine == "" {
		return c.JSON(http.StatusBadRequest, addResponse{Error: "Campo data_line mancante"})
	}

	res, err := h.backend.Add(c.Request().Context(), dataLine)
	if err != nil {
		return c.JSON(http.StatusBadGateway, addResponse{Error: networkError(err)})
	}
	if !res.OK() {
		return c.JSON(http.StatusUnprocessableEntity, addResponse{Error: res.Detail})
	}
	return c.JSON(http.StatusOK, addResponse{OK: true})
}

// UISQL handles POST /ui/sql and returns a result fragment.
func (h *Handler) UISQL(c echo.Context) error {
	statement := strings.TrimSpace(c.FormValue("sql_query"))
	if statement == "" {
		return bubble(c, http.StatusBadRequest, "SQL mancante.")
	}

	res, err := h.backend.SQLSearch(c.Request().Context(), statement)
	if err != nil {
		return bubble(c, http.StatusBadGateway, networkError(err))
	}

	return c.Render(http.StatusOK, "_result_row.html",
		NewResultView(ModeSQL, statement, res.SqlValidation, res.Results, h.now()))
}

// UISearch handles POST /ui/search and returns a result fragment.
func (h *Handler) UISearch(c echo.Context) error {
	question := strings.TrimSpace(c.FormValue("question"))
	if question == "" {
		return bubble(c, http.StatusBadRequest, "Domanda mancante.")
	}

	model := strings.TrimSpace(c.FormValue("model"))
	if model == "" {
		model = h.cfg.DefaultModel
	}

	res, err := h.backend.Search(c.Request().Context(), question, model)
	if err != nil {
		return bubble(c, http.StatusBadGateway, networkError(err))
	}

	return c.Render(http.StatusOK, "_result_row.html",
		NewResultView(ModeLLM, res.SQL, res.SqlValidation, res.Results, h.now()))
}

func isJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

func networkError(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("Backend %d", statusErr.StatusCode)
	}
	return fmt.Sprintf("Errore di rete verso backend: %v", err)
}

func bubble(c echo.Context, code int, message string) error {
	return c.HTML(code, "<div class='bubble'><span class='badge invalid'>Errore</span> "+template.HTMLEscapeString(message)+"</div>")
}
