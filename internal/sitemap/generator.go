package sitemap

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/romangod6/sitemapd/internal/models"
	"go.uber.org/zap"
)

// DynamicPagesFunc yields pages that are not expressible as static routes.
type DynamicPagesFunc func(ctx context.Context, siteURL string, languages []string) ([]models.SitemapEntry, error)

type Options struct {
	Languages       []string
	DefaultLanguage string
	Routes          []models.RouteDefinition
	DynamicPages    DynamicPagesFunc
	// DynamicTimeout bounds the DynamicPages call. Zero means no limit.
	DynamicTimeout time.Duration
	Logger         *zap.Logger
	Now            func() time.Time
}

// Generator enumerates every sitemap entry of a site. It holds no mutable
// state, so one Generator can serve concurrent requests.
type Generator struct {
	languages       []string
	defaultLanguage string
	routes          []models.RouteDefinition
	dynamicPages    DynamicPagesFunc
	dynamicTimeout  time.Duration
	logger          *zap.Logger
	now             func() time.Time
}

func NewGenerator(opts Options) *Generator {
	g := &Generator{
		languages:       append([]string(nil), opts.Languages...),
		defaultLanguage: opts.DefaultLanguage,
		routes:          append([]models.RouteDefinition(nil), opts.Routes...),
		dynamicPages:    opts.DynamicPages,
		dynamicTimeout:  opts.DynamicTimeout,
		logger:          opts.Logger,
		now:             opts.Now,
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// Languages returns a copy of the configured language tags.
func (g *Generator) Languages() []string {
	return append([]string(nil), g.languages...)
}

func (g *Generator) DefaultLanguage() string {
	return g.defaultLanguage
}

// GetAllPages returns the deduplicated entries of siteURL sorted by
// LastModified, newest first. A later entry with the same Location replaces
// an earlier one, so dynamic pages override static routes. An error from the
// dynamic page source is returned as is; no partial list is produced.
func (g *Generator) GetAllPages(ctx context.Context, siteURL string) ([]models.SitemapEntry, error) {
	pages := g.staticPages(siteURL)

	if g.dynamicPages != nil {
		dynamic, err := g.fetchDynamicPages(ctx, siteURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch dynamic pages: %w", err)
		}
		g.logger.Debug("Fetched dynamic pages",
			zap.String("site", siteURL),
			zap.Int("count", len(dynamic)))
		pages = append(pages, dynamic...)
	}

	set := newEntrySet(len(pages))
	for _, p := range pages {
		set.put(p)
	}

	entries := set.list()
	sortByLastModified(entries)

	g.logger.Debug("Enumerated sitemap pages",
		zap.String("site", siteURL),
		zap.Int("static", len(g.routes)*len(g.languages)),
		zap.Int("entries", len(entries)))

	return entries, nil
}

func (g *Generator) staticPages(siteURL string) []models.SitemapEntry {
	now := Timestamp(g.now())
	pages := make([]models.SitemapEntry, 0, len(g.routes)*len(g.languages))

	for _, route := range g.routes {
		lastMod := now
		if route.LastModified != "" {
			lastMod = route.LastModified
		}
		for _, lang := range g.languages {
			pages = append(pages, models.SitemapEntry{
				Location:        LocalizedURL(siteURL, lang, route.Path),
				LastModified:    lastMod,
				ChangeFrequency: route.ChangeFrequency,
				Priority:        route.Priority,
				Alternates:      Alternates(siteURL, g.languages, g.defaultLanguage, route.Path),
			})
		}
	}

	return pages
}

func (g *Generator) fetchDynamicPages(ctx context.Context, siteURL string) ([]models.SitemapEntry, error) {
	if g.dynamicTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.dynamicTimeout)
		defer cancel()
	}
	return g.dynamicPages(ctx, siteURL, g.Languages())
}

// LocalizedURL joins siteURL, the language tag and a route path.
func LocalizedURL(siteURL, lang, path string) string {
	return siteURL + "/" + lang + path
}

// Alternates lists path in every language followed by the x-default entry.
// defaultLanguage is not checked against languages.
func Alternates(siteURL string, languages []string, defaultLanguage, path string) []models.Alternate {
	alts := make([]models.Alternate, 0, len(languages)+1)
	for _, lang := range languages {
		alts = append(alts, models.Alternate{
			Hreflang: lang,
			Href:     LocalizedURL(siteURL, lang, path),
		})
	}
	return append(alts, models.Alternate{
		Hreflang: models.XDefault,
		Href:     LocalizedURL(siteURL, defaultLanguage, path),
	})
}

// Timestamp formats t the way generated lastmod values are written.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// entrySet is an insertion-ordered map keyed by Location. A repeated key
// keeps the slot of its first insertion and the value of its last.
type entrySet struct {
	index   map[string]int
	entries []models.SitemapEntry
}

func newEntrySet(size int) *entrySet {
	return &entrySet{
		index:   make(map[string]int, size),
		entries: make([]models.SitemapEntry, 0, size),
	}
}

func (s *entrySet) put(e models.SitemapEntry) {
	if i, ok := s.index[e.Location]; ok {
		s.entries[i] = e
		return
	}
	s.index[e.Location] = len(s.entries)
	s.entries = append(s.entries, e)
}

func (s *entrySet) list() []models.SitemapEntry {
	return s.entries
}

var lastModLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00", "2006-01-02"}

func parseLastModified(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range lastModLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sortByLastModified orders entries newest first. Entries without a
// parseable LastModified go last; ties keep their relative order.
func sortByLastModified(entries []models.SitemapEntry) {
	type keyed struct {
		t  time.Time
		ok bool
	}
	keys := make(map[string]keyed, len(entries))
	for _, e := range entries {
		t, ok := parseLastModified(e.LastModified)
		keys[e.Location] = keyed{t: t, ok: ok}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := keys[entries[i].Location], keys[entries[j].Location]
		switch {
		case a.ok && b.ok:
			return a.t.After(b.t)
		default:
			return a.ok && !b.ok
		}
	})
}
