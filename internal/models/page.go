package models

import (
	"time"

	"github.com/google/uuid"
)

// NewPage creates a new page with generated UUID and timestamps
func NewPage(language, path string) *Page {
	now := time.Now()
	return &Page{
		ID:        uuid.New(),
		Path:      path,
		Language:  language,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Float returns a pointer to v, for optional priorities.
func Float(v float64) *float64 {
	return &v
}
