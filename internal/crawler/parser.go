// internal/crawler/parser.go
package crawler

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/romangod6/sitemapd/internal/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseSitemap decodes either a sitemap index (refs) or a urlset (urls).
func ParseSitemap(data []byte) (refs []models.SitemapRef, urls []models.URL, err error) {
	var index models.SitemapIndex
	if err := xml.Unmarshal(data, &index); err == nil && index.XMLName.Local == "sitemapindex" {
		return index.Sitemaps, nil, nil
	}

	var set models.URLSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, nil, fmt.Errorf("error parsing sitemap: %w", err)
	}

	return nil, set.URLs, nil
}

// ExtractHreflang collects <link rel="alternate" hreflang="…" href="…">
// elements under n, keyed by hreflang.
func ExtractHreflang(n *html.Node) map[string]string {
	links := make(map[string]string)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Link && isAlternate(getAttr(n, "rel")) {
			if lang := getAttr(n, "hreflang"); lang != "" {
				links[lang] = getAttr(n, "href")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return links
}

func isAlternate(rel string) bool {
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		if token == "alternate" {
			return true
		}
	}
	return false
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// pageTitle returns the document title, falling back to the first <h1>.
func pageTitle(doc *goquery.Selection) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	return title
}

// sitemapAlternates indexes the xhtml:link alternates of a sitemap URL.
func sitemapAlternates(u models.URL) map[string]string {
	links := make(map[string]string, len(u.Links))
	for _, l := range u.Links {
		if isAlternate(l.Rel) && l.Hreflang != "" {
			links[l.Hreflang] = l.Href
		}
	}
	return links
}
