package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/romangod6/sitemapd/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS pages (
            id UUID PRIMARY KEY,
            path VARCHAR(2048) NOT NULL,
            language VARCHAR(35) NOT NULL,
            title TEXT,
            changefreq VARCHAR(16),
            priority DOUBLE PRECISION,
            source VARCHAR(32) NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
            UNIQUE (language, path)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_pages_updated_at ON pages(updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_source ON pages(source)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *PostgresStore) UpsertPage(ctx context.Context, page *models.Page) error {
	query := `
        INSERT INTO pages (id, path, language, title, changefreq, priority, source, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (language, path) DO UPDATE SET
            title = EXCLUDED.title,
            changefreq = EXCLUDED.changefreq,
            priority = EXCLUDED.priority,
            source = EXCLUDED.source,
            updated_at = EXCLUDED.updated_at
        RETURNING id, created_at
    `

	return s.db.QueryRowContext(ctx, query,
		page.ID,
		page.Path,
		page.Language,
		page.Title,
		string(page.ChangeFrequency),
		nullFloat(page.Priority),
		page.Source,
		page.CreatedAt,
		page.UpdatedAt,
	).Scan(&page.ID, &page.CreatedAt)
}

func (s *PostgresStore) GetPage(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	query := `
        SELECT id, path, language, title, changefreq, priority, source, created_at, updated_at
        FROM pages
        WHERE id = $1
    `

	pages, err := s.queryPages(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return pages[0], nil
}

func (s *PostgresStore) ListPages(ctx context.Context, limit, offset int) ([]*models.Page, error) {
	query := `
        SELECT id, path, language, title, changefreq, priority, source, created_at, updated_at
        FROM pages
        ORDER BY updated_at DESC, path, language
        LIMIT $1 OFFSET $2
    `

	return s.queryPages(ctx, query, limit, offset)
}

func (s *PostgresStore) ListAllPages(ctx context.Context, languages []string) ([]*models.Page, error) {
	if len(languages) == 0 {
		return s.queryPages(ctx, `
            SELECT id, path, language, title, changefreq, priority, source, created_at, updated_at
            FROM pages
            ORDER BY path, language
        `)
	}

	query := `
        SELECT id, path, language, title, changefreq, priority, source, created_at, updated_at
        FROM pages
        WHERE language = ANY($1)
        ORDER BY path, language
    `

	return s.queryPages(ctx, query, pq.Array(languages))
}

func (s *PostgresStore) DeletePage(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkDeleted(res)
}

func (s *PostgresStore) queryPages(ctx context.Context, query string, args ...interface{}) ([]*models.Page, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*models.Page
	for rows.Next() {
		page := &models.Page{}
		var title, changefreq sql.NullString
		var priority sql.NullFloat64

		err := rows.Scan(
			&page.ID,
			&page.Path,
			&page.Language,
			&title,
			&changefreq,
			&priority,
			&page.Source,
			&page.CreatedAt,
			&page.UpdatedAt,
		)

		if err != nil {
			return nil, err
		}

		page.Title = title.String
		page.ChangeFrequency = models.ChangeFrequency(changefreq.String)
		if priority.Valid {
			page.Priority = models.Float(priority.Float64)
		}

		pages = append(pages, page)
	}

	return pages, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
