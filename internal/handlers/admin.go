package handlers

import (
	"github.com/labstack/echo/v4"
)

// AdminHandler exposes read-only information about the database server
type AdminHandler struct {
	schema SchemaReader
}

func NewAdminHandler(schema SchemaReader) *AdminHandler {
	return &AdminHandler{schema: schema}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo) {
	admin := e.Group("/admin")
	admin.GET("/databases", h.Databases)
}

// Databases handles GET /admin/databases
func (h *AdminHandler) Databases(c echo.Context) error {
	databases, err := h.schema.Databases(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, databases)
}
