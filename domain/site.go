package domain

import (
	"time"
)

type SiteConfig struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageHome   string    `json:"imageHome,omitempty"`
	Favicon     string    `json:"favicon,omitempty"`
	Footer      string    `json:"footer,omitempty"`
	Version     string    `json:"version,omitempty"`
	Active      bool      `json:"active"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
