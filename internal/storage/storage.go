package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/romangod6/sitemapd/internal/models"
)

var ErrPageNotFound = errors.New("page not found")

type Store interface {
	Initialize() error
	Close() error

	// Page operations
	UpsertPage(ctx context.Context, page *models.Page) error
	GetPage(ctx context.Context, id uuid.UUID) (*models.Page, error)
	ListPages(ctx context.Context, limit, offset int) ([]*models.Page, error)
	// ListAllPages returns every page in one of languages, or every page
	// when languages is empty.
	ListAllPages(ctx context.Context, languages []string) ([]*models.Page, error)
	DeletePage(ctx context.Context, id uuid.UUID) error
}

// Open connects to the store named by driver ("sqlite3" or "postgres").
func Open(driver, url string) (Store, error) {
	switch driver {
	case "sqlite3", "sqlite", "":
		return NewSQLiteStore(url)
	case "postgres", "postgresql":
		return NewPostgresStore(url)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
