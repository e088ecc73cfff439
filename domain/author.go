package domain

import (
	"time"
)

type Author struct {
	ID        string
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Media struct {
	ID          string
	URL         string
	Alt         string
	BlurDataURL *string
	CreatedAt   time.Time
}
