package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/romangod6/sitemapd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "pages.db"))
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_UpsertKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := models.NewPage("en", "/blog/hello")
	first.Title = "Hello"
	first.Source = models.SourceContent
	require.NoError(t, store.UpsertPage(ctx, first))

	second := models.NewPage("en", "/blog/hello")
	second.Title = "Hello again"
	second.Priority = models.Float(0.6)
	second.ChangeFrequency = models.Weekly
	second.Source = models.SourceContent
	second.UpdatedAt = first.UpdatedAt.Add(time.Hour)
	require.NoError(t, store.UpsertPage(ctx, second))

	assert.Equal(t, first.ID, second.ID)

	got, err := store.GetPage(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Hello again", got.Title)
	assert.Equal(t, models.Weekly, got.ChangeFrequency)
	require.NotNil(t, got.Priority)
	assert.Equal(t, 0.6, *got.Priority)
	assert.WithinDuration(t, second.UpdatedAt, got.UpdatedAt, time.Millisecond)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetPage(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_ListAllPagesByLanguage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, p := range []*models.Page{
		models.NewPage("en", "/b"),
		models.NewPage("ko", "/b"),
		models.NewPage("ja", "/a"),
		models.NewPage("en", "/a"),
	} {
		p.Source = models.SourceAPI
		require.NoError(t, store.UpsertPage(ctx, p))
	}

	all, err := store.ListAllPages(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	pages, err := store.ListAllPages(ctx, []string{"en", "ko"})
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "/a", pages[0].Path)
	assert.Equal(t, "en", pages[0].Language)
	assert.Equal(t, "/b", pages[1].Path)
	assert.Nil(t, pages[0].Priority)
}

func TestSQLiteStore_ListPagesPagination(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, path := range []string{"/one", "/two", "/three"} {
		p := models.NewPage("en", path)
		p.Source = models.SourceAPI
		p.UpdatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.UpsertPage(ctx, p))
	}

	page, err := store.ListPages(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "/three", page[0].Path)
	assert.Equal(t, "/two", page[1].Path)

	page, err = store.ListPages(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "/one", page[0].Path)
}

func TestSQLiteStore_DeletePage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p := models.NewPage("en", "/gone")
	p.Source = models.SourceAPI
	require.NoError(t, store.UpsertPage(ctx, p))

	require.NoError(t, store.DeletePage(ctx, p.ID))
	assert.ErrorIs(t, store.DeletePage(ctx, p.ID), ErrPageNotFound)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}
