package domain

import (
	"time"
)

type ContactSubmission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=120"`
	Email     string    `json:"email" validate:"required,email,max=254"`
	Company   string    `json:"company" validate:"max=120"`
	Phone     string    `json:"phone" validate:"omitempty,max=40"`
	Message   string    `json:"message" validate:"required,min=10,max=5000"`
	CreatedAt time.Time `json:"createdAt"`
}
