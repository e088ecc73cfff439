package domain

import (
	"time"
)

type PostStatus string

const (
	StatusDraft          PostStatus = "draft"
	StatusReadyToPublish PostStatus = "readyToPublish"
	StatusPublished      PostStatus = "published"
)

func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusReadyToPublish, StatusPublished:
		return true
	}
	return false
}

type FeaturedImage struct {
	URL         string `json:"url"`
	Alt         string `json:"alt"`
	BlurDataURL string `json:"blurDataUrl,omitempty"`
}

type AuthorRef struct {
	Name string `json:"name"`
}

// ListedPost is the read-only projection used by feeds. Optional
// associations are nil when the post has none.
type ListedPost struct {
	ID            string         `json:"id"`
	Slug          string         `json:"slug"`
	Title         string         `json:"title"`
	Excerpt       *string        `json:"excerpt"`
	ReadingTime   *int           `json:"readingTime"`
	PublishedAt   time.Time      `json:"publishedAt"`
	FeaturedImage *FeaturedImage `json:"featuredImage"`
	Author        *AuthorRef     `json:"author"`
}

type Post struct {
	ID              string
	Slug            string
	Title           string
	Excerpt         *string
	Content         string
	ReadingTime     *int
	Status          PostStatus
	PublishedAt     *time.Time
	FeaturedImageID *string
	AuthorID        *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PostDetail is a published post with everything a post page needs.
type PostDetail struct {
	ListedPost
	Content    string     `json:"-"`
	Categories []Category `json:"categories"`
	Tags       []Tag      `json:"tags"`
}
