// Package cache keeps read-mostly aggregates in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bizsite/domain"
)

const (
	categoriesKey = "taxonomy:categories"
	tagsKey       = "taxonomy:tags"
)

// Counter is the source of truth for taxonomy counts.
type Counter interface {
	CategoryCounts(ctx context.Context) ([]domain.TaxonomyCount, error)
	TagCounts(ctx context.Context) ([]domain.TaxonomyCount, error)
}

// Taxonomy is a read-through cache in front of a Counter. Redis problems
// are logged and the request is served from the source.
type Taxonomy struct {
	source Counter
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewTaxonomy(source Counter, client *redis.Client, ttl time.Duration, log *zap.Logger) *Taxonomy {
	return &Taxonomy{source: source, client: client, ttl: ttl, log: log}
}

func (t *Taxonomy) CategoryCounts(ctx context.Context) ([]domain.TaxonomyCount, error) {
	return t.readThrough(ctx, categoriesKey, t.source.CategoryCounts)
}

func (t *Taxonomy) TagCounts(ctx context.Context) ([]domain.TaxonomyCount, error) {
	return t.readThrough(ctx, tagsKey, t.source.TagCounts)
}

// Invalidate drops cached counts. The seed tool calls it after writing posts.
func (t *Taxonomy) Invalidate(ctx context.Context) error {
	return t.client.Del(ctx, categoriesKey, tagsKey).Err()
}

func (t *Taxonomy) readThrough(ctx context.Context, key string, load func(context.Context) ([]domain.TaxonomyCount, error)) ([]domain.TaxonomyCount, error) {
	data, err := t.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []domain.TaxonomyCount
		if uErr := json.Unmarshal(data, &out); uErr == nil {
			return out, nil
		}
		t.log.Warn("discarding corrupt cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		t.log.Warn("taxonomy cache read failed", zap.String("key", key), zap.Error(err))
	}

	counts, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(counts); err == nil {
		if err := t.client.Set(ctx, key, payload, t.ttl).Err(); err != nil {
			t.log.Warn("taxonomy cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return counts, nil
}
