package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/posts", h.GetPosts)
	api.GET("/posts/:slug", h.GetPostBySlug)
	api.GET("/posts/:slug/related", h.GetRelatedPosts)
	api.GET("/categories", h.GetCategories)
	api.GET("/tags", h.GetTags)
	api.GET("/site", h.GetSite)

	var contactMW []echo.MiddlewareFunc
	if h.ContactRateLimit > 0 {
		store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(h.ContactRateLimit),
			Burst: 3,
		})
		contactMW = append(contactMW, middleware.RateLimiter(store))
	}
	api.POST("/contact", h.NewContact, contactMW...)
}
