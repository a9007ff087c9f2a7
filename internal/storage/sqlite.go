package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/romangod6/sitemapd/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS pages (
            id TEXT PRIMARY KEY,
            path TEXT NOT NULL,
            language TEXT NOT NULL,
            title TEXT,
            changefreq TEXT,
            priority REAL,
            source TEXT NOT NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(language, path)
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

func (s *SQLiteStore) UpsertPage(ctx context.Context, page *models.Page) error {
	query := `
        INSERT INTO pages (id, path, language, title, changefreq, priority, source, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(language, path) DO UPDATE SET
            title = excluded.title,
            changefreq = excluded.changefreq,
            priority = excluded.priority,
            source = excluded.source,
            updated_at = excluded.updated_at
        RETURNING id
    `

	var idStr string
	err := s.db.QueryRowContext(ctx, query,
		page.ID.String(),
		page.Path,
		page.Language,
		page.Title,
		string(page.ChangeFrequency),
		nullFloat(page.Priority),
		page.Source,
		page.CreatedAt,
		page.UpdatedAt,
	).Scan(&idStr)
	if err != nil {
		return err
	}

	if page.ID, err = uuid.Parse(idStr); err != nil {
		return err
	}

	// RETURNING drops the column type, so created_at is read separately.
	return s.db.QueryRowContext(ctx, `SELECT created_at FROM pages WHERE id = ?`, idStr).Scan(&page.CreatedAt)
}

func (s *SQLiteStore) GetPage(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	query := `
        SELECT id, path, language, title, changefreq, priority, source, created_at, updated_at
        FROM pages
        WHERE id = ?
    `

	pages, err := s.queryPages(ctx, query, id.String())
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return pages[0], nil
}

func (s *SQLiteStore) ListPages(ctx context.Context, limit, offset int) ([]*models.Page, error) {
	query := `
        SELECT id, path, language, title, changefreq, priority, source, created_at, updated_at
        FROM pages
        ORDER BY updated_at DESC, path, language
        LIMIT ? OFFSET ?
    `

	return s.queryPages(ctx, query, limit, offset)
}

func (s *SQLiteStore) ListAllPages(ctx context.Context, languages []string) ([]*models.Page, error) {
	query := `
        SELECT id, path, language, title, changefreq, priority, source, created_at, updated_at
        FROM pages
    `

	args := make([]interface{}, 0, len(languages))
	if len(languages) > 0 {
		placeholders := make([]string, len(languages))
		for i, lang := range languages {
			placeholders[i] = "?"
			args = append(args, lang)
		}
		query += " WHERE language IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY path, language"

	return s.queryPages(ctx, query, args...)
}

func (s *SQLiteStore) DeletePage(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return checkDeleted(res)
}

func (s *SQLiteStore) queryPages(ctx context.Context, query string, args ...interface{}) ([]*models.Page, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*models.Page
	for rows.Next() {
		var page models.Page
		var idStr string
		var title, changefreq sql.NullString
		var priority sql.NullFloat64

		err := rows.Scan(
			&idStr,
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

		page.ID, _ = uuid.Parse(idStr)
		page.Title = title.String
		page.ChangeFrequency = models.ChangeFrequency(changefreq.String)
		if priority.Valid {
			page.Priority = models.Float(priority.Float64)
		}

		pages = append(pages, &page)
	}

	return pages, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func checkDeleted(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPageNotFound
	}
	return nil
}
