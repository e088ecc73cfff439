package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bizsite/domain"
	"bizsite/feed"
)

const listedColumns = `p.id, p.slug, p.title, p.excerpt, p.reading_time, p.published_at,
	m.url, m.alt, m.blur_data_url, a.name`

const listedJoins = `LEFT JOIN media m ON m.id = p.featured_image_id
	LEFT JOIN authors a ON a.id = p.author_id`

const publishedPredicate = `p.status = 'published' AND p.published_at IS NOT NULL`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListed(row rowScanner, extra ...any) (domain.ListedPost, error) {
	var (
		p           domain.ListedPost
		excerpt     sql.NullString
		readingTime sql.NullInt64
		publishedAt int64
		imgURL      sql.NullString
		imgAlt      sql.NullString
		imgBlur     sql.NullString
		authorName  sql.NullString
	)
	dest := append([]any{&p.ID, &p.Slug, &p.Title, &excerpt, &readingTime, &publishedAt,
		&imgURL, &imgAlt, &imgBlur, &authorName}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.ListedPost{}, err
	}

	p.PublishedAt = fromMillis(publishedAt)
	if excerpt.Valid {
		p.Excerpt = &excerpt.String
	}
	if readingTime.Valid {
		n := int(readingTime.Int64)
		p.ReadingTime = &n
	}
	if imgURL.Valid {
		p.FeaturedImage = &domain.FeaturedImage{URL: imgURL.String, Alt: imgAlt.String, BlurDataURL: imgBlur.String}
	}
	if authorName.Valid {
		p.Author = &domain.AuthorRef{Name: authorName.String}
	}
	return p, nil
}

// PublishedPosts answers a feed.Query with keyset pagination over
// (published_at DESC, id DESC).
func (s *Store) PublishedPosts(ctx context.Context, q feed.Query) ([]domain.ListedPost, error) {
	var (
		where strings.Builder
		args  []any
	)
	where.WriteString(publishedPredicate)
	if q.CategorySlug != "" {
		where.WriteString(` AND EXISTS (SELECT 1 FROM post_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.post_id = p.id AND c.slug = ?)`)
		args = append(args, q.CategorySlug)
	}
	if q.TagSlug != "" {
		where.WriteString(` AND EXISTS (SELECT 1 FROM post_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND t.slug = ?)`)
		args = append(args, q.TagSlug)
	}
	if q.After != nil {
		at := toMillis(q.After.PublishedAt)
		if q.After.PublishedAt.Sub(fromMillis(at)) > 0 {
			// Stored times are whole milliseconds, so every row in the
			// cursor's millisecond is strictly older than it.
			where.WriteString(` AND p.published_at <= ?`)
			args = append(args, at)
		} else {
			where.WriteString(` AND (p.published_at < ? OR (p.published_at = ? AND p.id < ?))`)
			args = append(args, at, at, q.After.ID)
		}
	}
	args = append(args, q.Limit)

	query := `SELECT ` + listedColumns + ` FROM posts p ` + listedJoins +
		` WHERE ` + where.String() +
		` ORDER BY p.published_at DESC, p.id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query published posts: %w", err)
	}
	defer rows.Close()

	posts := make([]domain.ListedPost, 0, q.Limit)
	for rows.Next() {
		p, err := scanListed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan published post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate published posts: %w", err)
	}
	return posts, nil
}

// PostBySlug returns a published post with its body and taxonomy.
func (s *Store) PostBySlug(ctx context.Context, slug string) (domain.PostDetail, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+listedColumns+`, p.content FROM posts p `+listedJoins+
		` WHERE `+publishedPredicate+` AND p.slug = ?`, slug)

	var d domain.PostDetail
	p, err := scanListed(row, &d.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PostDetail{}, ErrNotFound
	}
	if err != nil {
		return domain.PostDetail{}, fmt.Errorf("query post %q: %w", slug, err)
	}
	d.ListedPost = p

	if d.Categories, err = s.postCategories(ctx, p.ID); err != nil {
		return domain.PostDetail{}, err
	}
	if d.Tags, err = s.postTags(ctx, p.ID); err != nil {
		return domain.PostDetail{}, err
	}
	return d, nil
}

func (s *Store) postCategories(ctx context.Context, postID string) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT c.id, c.slug, c.name FROM categories c
		JOIN post_categories pc ON pc.category_id = c.id
		WHERE pc.post_id = ? ORDER BY c.name`, postID)
	if err != nil {
		return nil, fmt.Errorf("query post categories: %w", err)
	}
	defer rows.Close()

	out := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name); err != nil {
			return nil, fmt.Errorf("scan post category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) postTags(ctx context.Context, postID string) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t.id, t.slug, t.name FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ? ORDER BY t.name`, postID)
	if err != nil {
		return nil, fmt.Errorf("query post tags: %w", err)
	}
	defer rows.Close()

	out := []domain.Tag{}
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name); err != nil {
			return nil, fmt.Errorf("scan post tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreatePost inserts p, assigning an id when it has none, and returns the id.
func (s *Store) CreatePost(ctx context.Context, p domain.Post) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = domain.StatusDraft
	}
	if !p.Status.Valid() {
		return "", fmt.Errorf("invalid post status %q", p.Status)
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO posts
		(id, slug, title, excerpt, content, reading_time, status, published_at,
		 featured_image_id, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Slug, p.Title, nullString(p.Excerpt), p.Content, nullInt(p.ReadingTime),
		string(p.Status), nullMillis(p.PublishedAt), nullString(p.FeaturedImageID),
		nullString(p.AuthorID), toMillis(p.CreatedAt), toMillis(p.UpdatedAt))
	if err != nil {
		return "", fmt.Errorf("insert post %q: %w", p.Slug, err)
	}
	return p.ID, nil
}

// SetStatus moves a post through the publishing workflow. Publishing stamps
// publishedAt when the post has none yet.
func (s *Store) SetStatus(ctx context.Context, postID string, status domain.PostStatus, at time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("invalid post status %q", status)
	}
	var publishedAt sql.NullInt64
	if status == domain.StatusPublished {
		publishedAt = sql.NullInt64{Int64: toMillis(at), Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `UPDATE posts
		SET status = ?, published_at = COALESCE(published_at, ?), updated_at = ?
		WHERE id = ?`, string(status), publishedAt, toMillis(at), postID)
	if err != nil {
		return fmt.Errorf("update post status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateAuthor(ctx context.Context, a domain.Author) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := toMillis(time.Now())
	_, err := s.db.ExecContext(ctx, `INSERT INTO authors (id, name, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`, a.ID, a.Name, nullString(a.Email), now, now)
	if err != nil {
		return "", fmt.Errorf("insert author: %w", err)
	}
	return a.ID, nil
}

func (s *Store) CreateMedia(ctx context.Context, m domain.Media) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO media (id, url, alt, blur_data_url, created_at)
		VALUES (?, ?, ?, ?, ?)`, m.ID, m.URL, m.Alt, nullString(m.BlurDataURL), toMillis(time.Now()))
	if err != nil {
		return "", fmt.Errorf("insert media: %w", err)
	}
	return m.ID, nil
}
