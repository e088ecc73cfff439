package handler

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"bizsite/cache"
	"bizsite/cta"
	"bizsite/domain"
	"bizsite/feed"
	"bizsite/notify"
)

// Store is the part of the storage layer the handlers read and write
// directly. Feed pages go through Feed.
type Store interface {
	PostBySlug(ctx context.Context, slug string) (domain.PostDetail, error)
	RelatedPosts(ctx context.Context, postID string, limit int) ([]domain.ListedPost, error)
	ActiveSiteConfig(ctx context.Context) (domain.SiteConfig, error)
	SaveContact(ctx context.Context, c domain.ContactSubmission) error
	Ping(ctx context.Context) error
}

type Handler struct {
	Feed     *feed.Service
	Store    Store
	Taxonomy cache.Counter
	Notifier notify.Notifier
	CTAs     cta.Catalog
	Validate *validator.Validate
	// SiteDefaults is served when no site configuration is stored.
	SiteDefaults     domain.SiteConfig
	ContactRateLimit float64
	Log              *zap.Logger
	Now              func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}
