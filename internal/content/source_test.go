package content

import (
	"context"
	"testing"
	"time"

	"github.com/romangod6/sitemapd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePages(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	post := models.NewPage("ko", "/blog/post")
	post.Source = models.SourceContent
	post.ChangeFrequency = models.Yearly
	post.Priority = models.Float(0.5)
	post.UpdatedAt = time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, store.UpsertPage(ctx, post))

	other := models.NewPage("de", "/blog/post")
	other.Source = models.SourceContent
	require.NoError(t, store.UpsertPage(ctx, other))

	fetch := StorePages(store, "en")
	entries, err := fetch(ctx, "https://example.com", []string{"en", "ko"})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "https://example.com/ko/blog/post", e.Location)
	assert.Equal(t, "2024-02-03T04:05:06.000Z", e.LastModified)
	assert.Equal(t, models.Yearly, e.ChangeFrequency)
	require.NotNil(t, e.Priority)
	assert.Equal(t, 0.5, *e.Priority)
	assert.Equal(t, []models.Alternate{
		{Hreflang: "en", Href: "https://example.com/en/blog/post"},
		{Hreflang: "ko", Href: "https://example.com/ko/blog/post"},
		{Hreflang: "x-default", Href: "https://example.com/en/blog/post"},
	}, e.Alternates)
}

func TestStorePages_NoLanguages(t *testing.T) {
	entries, err := StorePages(newTestStore(t), "en")(context.Background(), "https://example.com", nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
