package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) GetCategories(c echo.Context) error {
	counts, err := h.Taxonomy.CategoryCounts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"items": counts})
}

func (h *Handler) GetTags(c echo.Context) error {
	counts, err := h.Taxonomy.TagCounts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"items": counts})
}
