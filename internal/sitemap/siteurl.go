package sitemap

import (
	"net/http"

	"github.com/romangod6/sitemapd/internal/models"
)

// MaxURLsPerSitemap is the sitemap protocol's per-document ceiling.
const MaxURLsPerSitemap = 50000

// GetSiteURL derives scheme://host from an inbound request. The Host header
// is trusted as sent; pin site.url in the config when that is not acceptable.
func GetSiteURL(r *http.Request) string {
	scheme := "http"
	host := r.Host

	switch {
	case r.URL != nil && r.URL.IsAbs():
		scheme = r.URL.Scheme
	case r.TLS != nil:
		scheme = "https"
	}

	return scheme + "://" + host
}

// SitemapCount is the number of sitemaps needed for total entries.
func SitemapCount(total int) int {
	return (total + MaxURLsPerSitemap - 1) / MaxURLsPerSitemap
}

// Page returns the n-th (1-based) slice of at most MaxURLsPerSitemap
// entries, or nil when n is out of range.
func Page(entries []models.SitemapEntry, n int) []models.SitemapEntry {
	if n < 1 || n > SitemapCount(len(entries)) {
		return nil
	}
	start := (n - 1) * MaxURLsPerSitemap
	end := start + MaxURLsPerSitemap
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end]
}
