package content

import (
	"context"
	"fmt"

	"github.com/romangod6/sitemapd/internal/models"
	"github.com/romangod6/sitemapd/internal/sitemap"
	"github.com/romangod6/sitemapd/internal/storage"
)

// StorePages exposes the page store as a dynamic page source. Each stored
// page becomes one entry stamped with its UpdatedAt and carrying alternates
// for every configured language.
func StorePages(store storage.Store, defaultLanguage string) sitemap.DynamicPagesFunc {
	return func(ctx context.Context, siteURL string, languages []string) ([]models.SitemapEntry, error) {
		if len(languages) == 0 {
			return nil, nil
		}

		pages, err := store.ListAllPages(ctx, languages)
		if err != nil {
			return nil, fmt.Errorf("failed to list pages: %w", err)
		}

		entries := make([]models.SitemapEntry, 0, len(pages))
		for _, p := range pages {
			entries = append(entries, models.SitemapEntry{
				Location:        sitemap.LocalizedURL(siteURL, p.Language, p.Path),
				LastModified:    sitemap.Timestamp(p.UpdatedAt),
				ChangeFrequency: p.ChangeFrequency,
				Priority:        p.Priority,
				Alternates:      sitemap.Alternates(siteURL, languages, defaultLanguage, p.Path),
			})
		}

		return entries, nil
	}
}
