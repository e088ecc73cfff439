package feed

import (
	"fmt"

	"bizsite/domain"
)

func invalid(field, format string, args ...any) *domain.ValidationError {
	return &domain.ValidationError{Fields: []domain.FieldError{{Field: field, Message: fmt.Sprintf(format, args...)}}}
}
