// Package feed pages through published posts with keyset pagination over
// (publishedAt DESC, id DESC).
package feed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bizsite/domain"
)

const (
	DefaultLimit = 12
	MinLimit     = 1
	MaxLimit     = 100
)

// Params is a decoded page request. Limit is clamped by List; callers that
// have no page size should pass DefaultLimit.
type Params struct {
	Limit        int
	After        *Cursor
	CategorySlug string
	TagSlug      string
}

// Query is what the store has to answer: published posts matching the
// filters, strictly older than After, ordered by (publishedAt DESC, id DESC),
// at most Limit rows.
type Query struct {
	Limit        int
	After        *Cursor
	CategorySlug string
	TagSlug      string
}

type Store interface {
	PublishedPosts(ctx context.Context, q Query) ([]domain.ListedPost, error)
}

type Page struct {
	Items      []domain.ListedPost
	NextCursor *Cursor
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func ClampLimit(n int) int {
	if n < MinLimit {
		return MinLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// ParseRequest turns the transport parameters of a page request into Params.
// An empty pageSize means DefaultLimit; a present but malformed cursor is
// rejected rather than treated as the first page.
func ParseRequest(pageSize, cursor, categorySlug, tagSlug string) (Params, error) {
	p := Params{
		Limit:        DefaultLimit,
		CategorySlug: strings.TrimSpace(categorySlug),
		TagSlug:      strings.TrimSpace(tagSlug),
	}

	if s := strings.TrimSpace(pageSize); s != "" {
		n, err := strconv.Atoi(s)
		switch {
		case errors.Is(err, strconv.ErrRange):
			n = MaxLimit
			if strings.HasPrefix(s, "-") {
				n = MinLimit
			}
		case err != nil:
			return Params{}, invalid("pageSize", "must be an integer")
		}
		p.Limit = n
	}

	if cursor != "" {
		c, err := DecodeCursor(cursor)
		if err != nil {
			return Params{}, err
		}
		p.After = &c
	}

	return p, nil
}

// List returns the next page of published posts. It fetches one row more
// than the limit to learn whether another page exists.
func (s *Service) List(ctx context.Context, p Params) (Page, error) {
	if p.After != nil {
		if p.After.ID == "" || p.After.PublishedAt.IsZero() {
			return Page{}, invalid("cursor", "cursor must carry publishedAt and id")
		}
	}

	limit := ClampLimit(p.Limit)
	rows, err := s.store.PublishedPosts(ctx, Query{
		Limit:        limit + 1,
		After:        p.After,
		CategorySlug: p.CategorySlug,
		TagSlug:      p.TagSlug,
	})
	if err != nil {
		return Page{}, fmt.Errorf("fetch published posts: %w", err)
	}

	page := Page{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		last := page.Items[limit-1]
		page.NextCursor = &Cursor{PublishedAt: last.PublishedAt, ID: last.ID}
	}
	if page.Items == nil {
		page.Items = []domain.ListedPost{}
	}
	return page, nil
}

// FirstPage is the entry point for server-rendered listings.
func (s *Service) FirstPage(ctx context.Context, categorySlug, tagSlug string) (Page, error) {
	return s.List(ctx, Params{
		Limit:        DefaultLimit,
		CategorySlug: categorySlug,
		TagSlug:      tagSlug,
	})
}
