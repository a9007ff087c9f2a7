package sitemap

import (
	"context"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/romangod6/sitemapd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSitemapXML_Empty(t *testing.T) {
	out := GenerateSitemapXML(nil)

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	assert.Contains(t, out, `xmlns:xhtml="http://www.w3.org/1999/xhtml"`)
	assert.NotContains(t, out, "<url>")

	var set models.URLSet
	require.NoError(t, xml.Unmarshal([]byte(out), &set))
	assert.Empty(t, set.URLs)
}

func TestGenerateSitemapXML_EntryLayout(t *testing.T) {
	out := GenerateSitemapXML([]models.SitemapEntry{{
		Location:        "https://example.com/en/about",
		LastModified:    "2024-05-01T12:00:00.000Z",
		ChangeFrequency: models.Monthly,
		Priority:        models.Float(0.8),
		Alternates: []models.Alternate{
			{Hreflang: "en", Href: "https://example.com/en/about"},
			{Hreflang: "x-default", Href: "https://example.com/en/about"},
		},
	}})

	want := `  <url>
    <loc>https://example.com/en/about</loc>
    <lastmod>2024-05-01T12:00:00.000Z</lastmod>
    <changefreq>monthly</changefreq>
    <priority>0.8</priority>
    <xhtml:link rel="alternate" hreflang="en" href="https://example.com/en/about"/>
    <xhtml:link rel="alternate" hreflang="x-default" href="https://example.com/en/about"/>
  </url>
`
	assert.Contains(t, out, want)
}

func TestGenerateSitemapXML_OptionalFieldsOmitted(t *testing.T) {
	out := GenerateSitemapXML([]models.SitemapEntry{{Location: "https://example.com/en"}})

	assert.Contains(t, out, "<loc>https://example.com/en</loc>")
	assert.NotContains(t, out, "<lastmod>")
	assert.NotContains(t, out, "<changefreq>")
	assert.NotContains(t, out, "<priority>")
	assert.NotContains(t, out, "<xhtml:link")
}

func TestGenerateSitemapXML_PriorityFormatting(t *testing.T) {
	out := GenerateSitemapXML([]models.SitemapEntry{
		{Location: "a", Priority: models.Float(1)},
		{Location: "b", Priority: models.Float(0)},
		{Location: "c", Priority: models.Float(0.25)},
	})

	assert.Contains(t, out, "<priority>1</priority>")
	assert.Contains(t, out, "<priority>0</priority>")
	assert.Contains(t, out, "<priority>0.25</priority>")
}

func TestGenerateSitemapXML_EscapingRoundTrip(t *testing.T) {
	loc := `https://example.com/en/search?q=a&b=<c>&d="e"&f='g'`
	out := GenerateSitemapXML([]models.SitemapEntry{{
		Location:   loc,
		Alternates: []models.Alternate{{Hreflang: "en", Href: loc}},
	}})

	assert.Contains(t, out, "&amp;b=&lt;c&gt;&amp;d=&quot;e&quot;&amp;f=&apos;g&apos;")

	var set models.URLSet
	require.NoError(t, xml.Unmarshal([]byte(out), &set))
	require.Len(t, set.URLs, 1)
	assert.Equal(t, loc, set.URLs[0].Loc)
	require.Len(t, set.URLs[0].Links, 1)
	assert.Equal(t, loc, set.URLs[0].Links[0].Href)
}

func TestGenerateSitemapXML_EscapesChangeFrequencyAndHreflang(t *testing.T) {
	out := GenerateSitemapXML([]models.SitemapEntry{{
		Location:        "https://example.com/en",
		ChangeFrequency: "weekly & <daily>",
		Alternates:      []models.Alternate{{Hreflang: `en"x`, Href: "https://example.com/en"}},
	}})

	var set models.URLSet
	require.NoError(t, xml.Unmarshal([]byte(out), &set))
	require.Len(t, set.URLs, 1)
	assert.Equal(t, "weekly & <daily>", set.URLs[0].ChangeFreq)
	require.Len(t, set.URLs[0].Links, 1)
	assert.Equal(t, `en"x`, set.URLs[0].Links[0].Hreflang)
}

func TestGenerateSitemapXML_AlternateCompleteness(t *testing.T) {
	languages := []string{"en", "ko", "ja"}
	g := NewGenerator(Options{
		Languages:       languages,
		DefaultLanguage: "en",
		Routes:          []models.RouteDefinition{{Path: ""}, {Path: "/about"}, {Path: "/projects"}},
	})

	entries, err := g.GetAllPages(context.Background(), "https://example.com")
	require.NoError(t, err)

	var set models.URLSet
	require.NoError(t, xml.Unmarshal([]byte(GenerateSitemapXML(entries)), &set))
	require.Len(t, set.URLs, 9)

	for _, u := range set.URLs {
		require.Len(t, u.Links, len(languages)+1, u.Loc)
		assert.Equal(t, "x-default", u.Links[len(languages)].Hreflang)
		for _, l := range u.Links {
			assert.Equal(t, "alternate", l.Rel)
		}
	}
}

func TestGenerateSitemapIndexXML_Pagination(t *testing.T) {
	count := SitemapCount(50001)
	require.Equal(t, 2, count)

	out := generateSitemapIndexXML("https://example.com", count, fixedNow)

	var index models.SitemapIndex
	require.NoError(t, xml.Unmarshal([]byte(out), &index))
	require.Len(t, index.Sitemaps, 2)
	assert.Equal(t, "https://example.com/sitemap-1.xml", index.Sitemaps[0].Loc)
	assert.Equal(t, "https://example.com/sitemap-2.xml", index.Sitemaps[1].Loc)
	for _, s := range index.Sitemaps {
		assert.Equal(t, "2024-05-01T12:00:00.000Z", s.LastMod)
	}
	assert.Contains(t, out, `<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
}

func TestGenerateSitemapIndexXML_UsesCurrentTime(t *testing.T) {
	out := GenerateSitemapIndexXML("https://example.com", 1)

	var index models.SitemapIndex
	require.NoError(t, xml.Unmarshal([]byte(out), &index))
	require.Len(t, index.Sitemaps, 1)
	_, ok := parseLastModified(index.Sitemaps[0].LastMod)
	assert.True(t, ok)
}
