package store

import (
	"context"
	"fmt"

	"bizsite/domain"
)

func (s *Store) SaveContact(ctx context.Context, c domain.ContactSubmission) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO contact_submissions
		(id, name, email, company, phone, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Company, c.Phone, c.Message, toMillis(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert contact submission: %w", err)
	}
	return nil
}
