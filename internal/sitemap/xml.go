package sitemap

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/romangod6/sitemapd/internal/models"
)

const (
	SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	XHTMLNamespace   = "http://www.w3.org/1999/xhtml"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes the five XML special characters.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// GenerateSitemapXML renders entries as a <urlset> document. The caller keeps
// len(entries) within MaxURLsPerSitemap; nothing is truncated here.
func GenerateSitemapXML(entries []models.SitemapEntry) string {
	var b strings.Builder

	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, "<urlset xmlns=\"%s\" xmlns:xhtml=\"%s\">\n", SitemapNamespace, XHTMLNamespace)

	for _, e := range entries {
		b.WriteString("  <url>\n")
		fmt.Fprintf(&b, "    <loc>%s</loc>\n", EscapeXML(e.Location))
		if e.LastModified != "" {
			fmt.Fprintf(&b, "    <lastmod>%s</lastmod>\n", e.LastModified)
		}
		if e.ChangeFrequency != "" {
			fmt.Fprintf(&b, "    <changefreq>%s</changefreq>\n", EscapeXML(string(e.ChangeFrequency)))
		}
		if e.Priority != nil {
			fmt.Fprintf(&b, "    <priority>%s</priority>\n", strconv.FormatFloat(*e.Priority, 'f', -1, 64))
		}
		for _, alt := range e.Alternates {
			fmt.Fprintf(&b, "    <xhtml:link rel=\"alternate\" hreflang=\"%s\" href=\"%s\"/>\n",
				EscapeXML(alt.Hreflang), EscapeXML(alt.Href))
		}
		b.WriteString("  </url>\n")
	}

	b.WriteString("</urlset>")
	return b.String()
}

// GenerateSitemapIndexXML renders a <sitemapindex> pointing at
// {siteURL}/sitemap-1.xml through {siteURL}/sitemap-{count}.xml.
func GenerateSitemapIndexXML(siteURL string, count int) string {
	return generateSitemapIndexXML(siteURL, count, time.Now())
}

// lastmod of every reference is the generation time, not the freshness of
// the referenced sitemap.
func generateSitemapIndexXML(siteURL string, count int, now time.Time) string {
	var b strings.Builder
	lastMod := Timestamp(now)

	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, "<sitemapindex xmlns=\"%s\">\n", SitemapNamespace)
	for i := 1; i <= count; i++ {
		b.WriteString("  <sitemap>\n")
		fmt.Fprintf(&b, "    <loc>%s</loc>\n", EscapeXML(SubSitemapURL(siteURL, i)))
		fmt.Fprintf(&b, "    <lastmod>%s</lastmod>\n", lastMod)
		b.WriteString("  </sitemap>\n")
	}
	b.WriteString("</sitemapindex>")
	return b.String()
}

// SubSitemapURL is the location of the n-th (1-based) paginated sitemap.
func SubSitemapURL(siteURL string, n int) string {
	return fmt.Sprintf("%s/sitemap-%d.xml", siteURL, n)
}
