package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bizsite/domain"
)

func (s *Store) ActiveSiteConfig(ctx context.Context) (domain.SiteConfig, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, active, version, title, description,
		image_home, favicon, footer, updated_at
		FROM site_config WHERE active = 1 ORDER BY updated_at DESC LIMIT 1`)

	var (
		c         domain.SiteConfig
		updatedAt int64
	)
	err := row.Scan(&c.ID, &c.Active, &c.Version, &c.Title, &c.Description,
		&c.ImageHome, &c.Favicon, &c.Footer, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SiteConfig{}, ErrNotFound
	}
	if err != nil {
		return domain.SiteConfig{}, fmt.Errorf("query site config: %w", err)
	}
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}

// SaveSiteConfig stores c as the only active configuration. Earlier rows are
// kept, deactivated, as history.
func (s *Store) SaveSiteConfig(ctx context.Context, c domain.SiteConfig) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := toMillis(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE site_config SET active = 0 WHERE active = 1`); err != nil {
		return "", fmt.Errorf("deactivate site config: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO site_config
		(id, active, version, title, description, image_home, favicon, footer, created_at, updated_at)
		VALUES (?, 1, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Version, c.Title, c.Description, c.ImageHome, c.Favicon, c.Footer, now, now); err != nil {
		return "", fmt.Errorf("insert site config: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}
	return c.ID, nil
}
