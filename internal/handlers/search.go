package handlers

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/poppy/pkg/models"
)

type SQLExecutor interface {
	Execute(ctx context.Context, statement string) (models.SqlResponse, error)
}

type Searcher interface {
	Search(ctx context.Context, question, model string) models.SearchResponse
}

type SchemaReader interface {
	Summary(ctx context.Context) ([]models.SchemaColumn, error)
	Databases(ctx context.Context) ([]models.DatabaseInfo, error)
}

// SearchHandler serves direct SQL, LLM search and the schema summary
type SearchHandler struct {
	executor SQLExecutor
	searcher Searcher
	schema   SchemaReader
	logger   ectologger.Logger
}

func NewSearchHandler(executor SQLExecutor, searcher Searcher, schema SchemaReader, logger ectologger.Logger) *SearchHandler {
	return &SearchHandler{
		executor: executor,
		searcher: searcher,
		schema:   schema,
		logger:   logger,
	}
}

func (h *SearchHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/schema_summary", h.SchemaSummary)
	e.POST("/sql_search", h.SQLSearch)
	e.POST("/search", h.Search)
}

// SchemaSummary handles GET /schema_summary
func (h *SearchHandler) SchemaSummary(c echo.Context) error {
	columns, err := h.schema.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, columns)
}

// SQLSearch handles POST /sql_search. Classification failures are answered
// with 200; only an unreadable body is a client error.
func (h *SearchHandler) SQLSearch(c echo.Context) error {
	var req models.SqlRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}

	ctx := c.Request().Context()
	res, err := h.executor.Execute(ctx, req.SqlQuery)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("sql search could not reach the store")
		res = models.NewSqlResponse(models.ClassificationError)
	}

	return SuccessResponse(c, res)
}

// Search handles POST /search
func (h *SearchHandler) Search(c echo.Context) error {
	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}

	return SuccessResponse(c, h.searcher.Search(c.Request().Context(), req.Question, req.Model))
}
