package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"bizsite/store"
)

func (h *Handler) GetSite(c echo.Context) error {
	cfg, err := h.Store.ActiveSiteConfig(c.Request().Context())
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusOK, h.SiteDefaults)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cfg)
}

func (h *Handler) Health(c echo.Context) error {
	if err := h.Store.Ping(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
