package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"bizsite/domain"
)

func (s *Store) CreateCategory(ctx context.Context, slug, name string) (domain.Category, error) {
	c := domain.Category{ID: uuid.NewString(), Slug: slug, Name: name}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO categories (id, slug, name) VALUES (?, ?, ?)`,
		c.ID, c.Slug, c.Name); err != nil {
		return domain.Category{}, fmt.Errorf("insert category %q: %w", slug, err)
	}
	return c, nil
}

func (s *Store) CreateTag(ctx context.Context, slug, name string) (domain.Tag, error) {
	t := domain.Tag{ID: uuid.NewString(), Slug: slug, Name: name}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO tags (id, slug, name) VALUES (?, ?, ?)`,
		t.ID, t.Slug, t.Name); err != nil {
		return domain.Tag{}, fmt.Errorf("insert tag %q: %w", slug, err)
	}
	return t, nil
}

func (s *Store) AttachCategories(ctx context.Context, postID string, categoryIDs ...string) error {
	return s.attach(ctx, `INSERT OR IGNORE INTO post_categories (post_id, category_id) VALUES (?, ?)`, postID, categoryIDs)
}

func (s *Store) AttachTags(ctx context.Context, postID string, tagIDs ...string) error {
	return s.attach(ctx, `INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)`, postID, tagIDs)
}

func (s *Store) attach(ctx context.Context, stmt, postID string, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("prepare attach: %w", err)
	}
	defer prepared.Close()

	for _, id := range ids {
		if _, err := prepared.ExecContext(ctx, postID, id); err != nil {
			return fmt.Errorf("attach %s to post %s: %w", id, postID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CategoryCounts returns every category with the number of published posts
// filed under it, busiest first.
func (s *Store) CategoryCounts(ctx context.Context) ([]domain.TaxonomyCount, error) {
	return s.counts(ctx, `SELECT c.slug, c.name, COUNT(p.id) AS n
		FROM categories c
		LEFT JOIN post_categories pc ON pc.category_id = c.id
		LEFT JOIN posts p ON p.id = pc.post_id AND `+publishedPredicate+`
		GROUP BY c.id, c.slug, c.name
		ORDER BY n DESC, c.name ASC`)
}

func (s *Store) TagCounts(ctx context.Context) ([]domain.TaxonomyCount, error) {
	return s.counts(ctx, `SELECT t.slug, t.name, COUNT(p.id) AS n
		FROM tags t
		LEFT JOIN post_tags pt ON pt.tag_id = t.id
		LEFT JOIN posts p ON p.id = pt.post_id AND `+publishedPredicate+`
		GROUP BY t.id, t.slug, t.name
		ORDER BY n DESC, t.name ASC`)
}

func (s *Store) counts(ctx context.Context, query string) ([]domain.TaxonomyCount, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query taxonomy counts: %w", err)
	}
	defer rows.Close()

	out := []domain.TaxonomyCount{}
	for rows.Next() {
		var c domain.TaxonomyCount
		if err := rows.Scan(&c.Slug, &c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scan taxonomy count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
