package crawler

import (
	"strings"
	"testing"

	"github.com/romangod6/sitemapd/internal/models"
	"github.com/romangod6/sitemapd/internal/sitemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestParseSitemap_URLSet(t *testing.T) {
	data := sitemap.GenerateSitemapXML([]models.SitemapEntry{{
		Location:     "https://example.com/en/about",
		LastModified: "2024-01-01T00:00:00.000Z",
		Alternates:   sitemap.Alternates("https://example.com", []string{"en"}, "en", "/about"),
	}})

	refs, urls, err := ParseSitemap([]byte(data))
	require.NoError(t, err)
	assert.Empty(t, refs)
	require.Len(t, urls, 1)
	assert.Equal(t, "https://example.com/en/about", urls[0].Loc)
	assert.Equal(t, map[string]string{
		"en":        "https://example.com/en/about",
		"x-default": "https://example.com/en/about",
	}, sitemapAlternates(urls[0]))
}

func TestParseSitemap_Index(t *testing.T) {
	refs, urls, err := ParseSitemap([]byte(sitemap.GenerateSitemapIndexXML("https://example.com", 2)))
	require.NoError(t, err)
	assert.Empty(t, urls)
	require.Len(t, refs, 2)
	assert.Equal(t, "https://example.com/sitemap-2.xml", refs[1].Loc)
}

func TestExtractHreflang(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<html><head>
<link rel="alternate" hreflang="en" href="https://example.com/en/">
<link rel="Alternate Feed" hreflang="ko" href="https://example.com/ko/">
<link rel="canonical" href="https://example.com/en/">
<link rel="alternate" type="application/rss+xml" href="/feed.xml">
</head><body></body></html>`))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"en": "https://example.com/en/",
		"ko": "https://example.com/ko/",
	}, ExtractHreflang(doc))
}
