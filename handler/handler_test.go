package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bizsite/cta"
	"bizsite/domain"
	"bizsite/feed"
	"bizsite/notify"
	"bizsite/store"
)

var epoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type failingNotifier struct{ calls int }

func (f *failingNotifier) Notify(context.Context, domain.ContactSubmission) error {
	f.calls++
	return errors.New("smtp unreachable")
}

type env struct {
	e     *echo.Echo
	h     *Handler
	store *store.Store
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "handler.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	s, err := store.Open(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	log := zap.NewNop()
	h := &Handler{
		Feed:         feed.NewService(s),
		Store:        s,
		Taxonomy:     s,
		Notifier:     notify.NewLogNotifier(log),
		CTAs:         cta.DefaultCatalog(),
		Validate:     NewValidator(),
		SiteDefaults: domain.SiteConfig{Title: "Default Title"},
		Log:          log,
		Now:          func() time.Time { return epoch },
	}
	e := echo.New()
	e.HTTPErrorHandler = h.HTTPErrorHandler
	h.Register(e)
	return &env{e: e, h: h, store: s}
}

func (en *env) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	en.e.ServeHTTP(rec, req)
	return rec
}

func (en *env) publish(t *testing.T, slug, content string, at time.Time) string {
	t.Helper()
	id, err := en.store.CreatePost(context.Background(), domain.Post{
		Slug: slug, Title: "Title " + slug, Content: content,
		Status: domain.StatusPublished, PublishedAt: &at,
	})
	require.NoError(t, err)
	return id
}

type listBody struct {
	Items      []domain.ListedPost `json:"items"`
	NextCursor string              `json:"nextCursor"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestGetPosts_PaginatesWithOpaqueCursor(t *testing.T) {
	en := newEnv(t)
	for i := 0; i < 13; i++ {
		en.publish(t, fmt.Sprintf("post-%02d", i), "body", epoch.Add(time.Duration(i)*time.Hour))
	}

	rec := en.do(t, http.MethodGet, "/api/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[listBody](t, rec)
	require.Len(t, first.Items, feed.DefaultLimit)
	assert.Equal(t, "post-12", first.Items[0].Slug)
	require.NotEmpty(t, first.NextCursor)

	c, err := feed.DecodeCursor(first.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, first.Items[11].ID, c.ID)

	rec = en.do(t, http.MethodGet, "/api/posts?cursor="+url.QueryEscape(first.NextCursor), "")
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[listBody](t, rec)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "post-00", second.Items[0].Slug)
	assert.Empty(t, second.NextCursor)
	assert.NotContains(t, rec.Body.String(), "nextCursor")
}

func TestGetPosts_PageSizeIsClamped(t *testing.T) {
	en := newEnv(t)
	for i := 0; i < 3; i++ {
		en.publish(t, fmt.Sprintf("p%d", i), "body", epoch.Add(time.Duration(i)*time.Minute))
	}

	rec := en.do(t, http.MethodGet, "/api/posts?pageSize=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[listBody](t, rec).Items, 1)

	rec = en.do(t, http.MethodGet, "/api/posts?pageSize=1000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[listBody](t, rec).Items, 3)
}

func TestGetPosts_MalformedCursorIs400(t *testing.T) {
	en := newEnv(t)
	en.publish(t, "only", "body", epoch)

	rec := en.do(t, http.MethodGet, "/api/posts?cursor=not-a-cursor", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.Equal(t, "validation failed", body.Error)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "cursor", body.Fields[0].Field)
}

func TestGetPosts_UnknownCategoryIsEmpty(t *testing.T) {
	en := newEnv(t)
	en.publish(t, "only", "body", epoch)

	rec := en.do(t, http.MethodGet, "/api/posts?categorySlug=nonexistent", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestGetPosts_StorageFailureIs500(t *testing.T) {
	en := newEnv(t)
	require.NoError(t, en.store.Close())

	rec := en.do(t, http.MethodGet, "/api/posts", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestGetPostBySlug_SplitsAroundCTA(t *testing.T) {
	en := newEnv(t)
	en.publish(t, "explicit", "Intro **bold**\n\n<!-- CTA:newsletter -->\n\nOutro <script>alert(1)</script>", epoch)

	rec := en.do(t, http.MethodGet, "/api/posts/explicit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Post struct {
			Slug string `json:"slug"`
		} `json:"post"`
		Body struct {
			Before   string    `json:"before"`
			CTA      cta.Block `json:"cta"`
			After    string    `json:"after"`
			Explicit bool      `json:"explicit"`
		} `json:"body"`
	}](t, rec)

	assert.Equal(t, "explicit", resp.Post.Slug)
	assert.True(t, resp.Body.Explicit)
	assert.Equal(t, "newsletter", resp.Body.CTA.Variant)
	assert.Contains(t, resp.Body.Before, "<strong>bold</strong>")
	assert.Contains(t, resp.Body.After, "Outro")
	assert.NotContains(t, resp.Body.After, "<script>")
}

func TestGetPostBySlug_NotFound(t *testing.T) {
	en := newEnv(t)
	rec := en.do(t, http.MethodGet, "/api/posts/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRelatedPosts(t *testing.T) {
	en := newEnv(t)
	ctx := context.Background()
	cat, err := en.store.CreateCategory(ctx, "guides", "Guides")
	require.NoError(t, err)
	a := en.publish(t, "a", "body", epoch)
	b := en.publish(t, "b", "body", epoch.Add(time.Hour))
	en.publish(t, "c", "body", epoch.Add(2*time.Hour))
	require.NoError(t, en.store.AttachCategories(ctx, a, cat.ID))
	require.NoError(t, en.store.AttachCategories(ctx, b, cat.ID))

	rec := en.do(t, http.MethodGet, "/api/posts/a/related", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[listBody](t, rec).Items
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].Slug)
}

func TestGetCategoriesAndTags(t *testing.T) {
	en := newEnv(t)
	ctx := context.Background()
	cat, _ := en.store.CreateCategory(ctx, "guides", "Guides")
	tag, _ := en.store.CreateTag(ctx, "go", "Go")
	id := en.publish(t, "a", "body", epoch)
	require.NoError(t, en.store.AttachCategories(ctx, id, cat.ID))
	require.NoError(t, en.store.AttachTags(ctx, id, tag.ID))

	rec := en.do(t, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[{"slug":"guides","name":"Guides","count":1}]}`, rec.Body.String())

	rec = en.do(t, http.MethodGet, "/api/tags", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[{"slug":"go","name":"Go","count":1}]}`, rec.Body.String())
}

func TestGetSite(t *testing.T) {
	en := newEnv(t)

	rec := en.do(t, http.MethodGet, "/api/site", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Default Title", decode[domain.SiteConfig](t, rec).Title)

	_, err := en.store.SaveSiteConfig(context.Background(), domain.SiteConfig{Title: "Acme"})
	require.NoError(t, err)
	rec = en.do(t, http.MethodGet, "/api/site", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme", decode[domain.SiteConfig](t, rec).Title)
}

func TestHealth(t *testing.T) {
	en := newEnv(t)
	rec := en.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, en.store.Close())
	rec = en.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewContact(t *testing.T) {
	en := newEnv(t)

	rec := en.do(t, http.MethodPost, "/api/contact",
		`{"name":" Sam ","email":"sam@example.com","message":"We would like a quote please."}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, decode[map[string]string](t, rec)["id"])
}

func TestNewContact_ValidationErrors(t *testing.T) {
	en := newEnv(t)

	rec := en.do(t, http.MethodPost, "/api/contact", `{"name":"","email":"nope","message":"short"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorResponse](t, rec)

	fields := map[string]string{}
	for _, f := range body.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 10 characters", fields["message"])
}

func TestNewContact_NotificationFailureDoesNotFailRequest(t *testing.T) {
	en := newEnv(t)
	n := &failingNotifier{}
	en.h.Notifier = n

	rec := en.do(t, http.MethodPost, "/api/contact",
		`{"name":"Sam","email":"sam@example.com","message":"We would like a quote please."}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, n.calls)
}

func TestNewContact_RateLimited(t *testing.T) {
	en := newEnv(t)
	en.h.ContactRateLimit = 0.001
	en.e = echo.New()
	en.e.HTTPErrorHandler = en.h.HTTPErrorHandler
	en.h.Register(en.e)

	body := `{"name":"Sam","email":"sam@example.com","message":"We would like a quote please."}`
	codes := []int{}
	for i := 0; i < 5; i++ {
		codes = append(codes, en.do(t, http.MethodPost, "/api/contact", body).Code)
	}
	assert.Equal(t, []int{201, 201, 201, 429, 429}, codes)
}
