package handler

import (
	"net/http"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"bizsite/cta"
	"bizsite/domain"
	"bizsite/feed"
)

const relatedLimit = 3

var sanitizerUGC = bluemonday.UGCPolicy()

type postListResponse struct {
	Items      []domain.ListedPost `json:"items"`
	NextCursor string              `json:"nextCursor,omitempty"`
}

type postBody struct {
	Before   string    `json:"before"`
	CTA      cta.Block `json:"cta"`
	After    string    `json:"after"`
	Explicit bool      `json:"explicit"`
}

type postResponse struct {
	Post domain.PostDetail `json:"post"`
	Body postBody          `json:"body"`
}

func (h *Handler) GetPosts(c echo.Context) error {
	params, err := feed.ParseRequest(
		c.QueryParam("pageSize"),
		c.QueryParam("cursor"),
		c.QueryParam("categorySlug"),
		c.QueryParam("tagSlug"),
	)
	if err != nil {
		return err
	}

	page, err := h.Feed.List(c.Request().Context(), params)
	if err != nil {
		return err
	}

	resp := postListResponse{Items: page.Items}
	if page.NextCursor != nil {
		resp.NextCursor = feed.EncodeCursor(*page.NextCursor)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetPostBySlug(c echo.Context) error {
	post, err := h.Store.PostBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}

	split := cta.Split(post.Content)
	return c.JSON(http.StatusOK, postResponse{
		Post: post,
		Body: postBody{
			Before:   safeMd(split.Before),
			CTA:      h.CTAs.Resolve(split.Variant),
			After:    safeMd(split.After),
			Explicit: split.Explicit,
		},
	})
}

func (h *Handler) GetRelatedPosts(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := h.Store.PostBySlug(ctx, c.Param("slug"))
	if err != nil {
		return err
	}
	related, err := h.Store.RelatedPosts(ctx, post.ID, relatedLimit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"items": related})
}

func mdToHTML(md string) []byte {
	// create markdown parser with extensions
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	opts := html.RendererOptions{Flags: htmlFlags}
	renderer := html.NewRenderer(opts)

	return markdown.Render(doc, renderer)
}

func safeMd(content string) string {
	if content == "" {
		return ""
	}
	return string(sanitizerUGC.SanitizeBytes(mdToHTML(content)))
}
