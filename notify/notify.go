// Package notify tells the business about new contact submissions.
package notify

import (
	"context"

	"go.uber.org/zap"

	"bizsite/domain"
)

// Notifier delivers a contact submission to whoever handles leads. Email
// delivery lives behind this interface.
type Notifier interface {
	Notify(ctx context.Context, s domain.ContactSubmission) error
}

type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, s domain.ContactSubmission) error {
	n.log.Info("new contact submission",
		zap.String("id", s.ID),
		zap.String("name", s.Name),
		zap.String("email", s.Email),
		zap.String("company", s.Company),
		zap.Int("message_length", len(s.Message)),
	)
	return nil
}
