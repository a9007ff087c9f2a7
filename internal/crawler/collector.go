package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/gocolly/colly/v2"
	"github.com/romangod6/sitemapd/internal/models"
	"go.uber.org/zap"
)

const (
	ProblemStatus          = "status"
	ProblemFetch           = "fetch"
	ProblemHreflangMissing = "hreflang-missing"
	ProblemHreflangExtra   = "hreflang-extra"
	ProblemRedirect        = "redirect"
)

// locKey carries the sitemap <loc> of a page request through redirects.
const locKey = "loc"

type AuditorConfig struct {
	UserAgent   string
	Parallelism int
	// MaxURLs caps the number of pages visited. Zero visits every URL.
	MaxURLs int
}

type Problem struct {
	URL    string `json:"url"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

type PageResult struct {
	URL      string            `json:"url"`
	Status   int               `json:"status"`
	Title    string            `json:"title,omitempty"`
	Hreflang map[string]string `json:"hreflang,omitempty"`
}

type AuditReport struct {
	Sitemaps []string     `json:"sitemaps"`
	URLs     int          `json:"urls"`
	Pages    []PageResult `json:"pages"`
	Problems []Problem    `json:"problems"`
}

// Auditor crawls a published sitemap and checks that every listed page
// answers and declares the same hreflang alternates as the sitemap.
type Auditor struct {
	config *AuditorConfig
	logger *zap.Logger
}

func NewAuditor(config *AuditorConfig, logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}
	return &Auditor{config: config, logger: logger}
}

func (a *Auditor) Audit(ctx context.Context, sitemapURL string) (*AuditReport, error) {
	sitemaps, urls, err := a.fetchSitemaps(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	report := &AuditReport{Sitemaps: sitemaps, URLs: len(urls)}
	if a.config.MaxURLs > 0 && len(urls) > a.config.MaxURLs {
		urls = urls[:a.config.MaxURLs]
	}

	a.logger.Info("Sitemap loaded",
		zap.String("sitemap", sitemapURL),
		zap.Int("sitemaps", len(sitemaps)),
		zap.Int("urls", report.URLs),
		zap.Int("visiting", len(urls)))

	pages, problems, err := a.visitPages(ctx, urls)
	if err != nil {
		return nil, err
	}

	report.Pages = pages
	report.Problems = problems
	return report, nil
}

// fetchSitemaps loads sitemapURL and, for an index, every referenced sitemap.
func (a *Auditor) fetchSitemaps(ctx context.Context, sitemapURL string) ([]string, []models.URL, error) {
	c := colly.NewCollector(
		colly.UserAgent(a.config.UserAgent),
	)
	c.MaxBodySize = 0
	abortOnDone(ctx, c)

	var sitemaps []string
	var urls []models.URL
	var errs []error

	c.OnResponse(func(r *colly.Response) {
		loc := r.Request.URL.String()
		sitemaps = append(sitemaps, loc)

		refs, entries, err := ParseSitemap(r.Body)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", loc, err))
			return
		}
		urls = append(urls, entries...)

		for _, ref := range refs {
			a.logger.Debug("Following sitemap index entry", zap.String("sitemap", ref.Loc))
			if err := r.Request.Visit(ref.Loc); err != nil && !errors.Is(err, colly.ErrAlreadyVisited) {
				errs = append(errs, fmt.Errorf("%s: %w", ref.Loc, err))
			}
		}
	})

	if err := c.Visit(sitemapURL); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	c.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, nil, fmt.Errorf("failed to load sitemap: %w", err)
	}

	return sitemaps, urls, nil
}

func (a *Auditor) visitPages(ctx context.Context, urls []models.URL) ([]PageResult, []Problem, error) {
	expected := make(map[string]map[string]string, len(urls))
	hosts := make(map[string]bool)
	for _, u := range urls {
		expected[u.Loc] = sitemapAlternates(u)
		if parsed, err := url.Parse(u.Loc); err == nil {
			hosts[parsed.Hostname()] = true
		}
	}

	domains := make([]string, 0, len(hosts))
	for h := range hosts {
		domains = append(domains, h)
	}

	c := colly.NewCollector(
		colly.UserAgent(a.config.UserAgent),
		colly.AllowedDomains(domains...),
		colly.Async(true),
	)
	abortOnDone(ctx, c)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: a.config.Parallelism,
	}); err != nil {
		return nil, nil, err
	}

	var mu sync.Mutex
	results := make(map[string]*PageResult, len(urls))
	var problems []Problem

	result := func(loc string) *PageResult {
		r, ok := results[loc]
		if !ok {
			r = &PageResult{URL: loc}
			results[loc] = r
		}
		return r
	}

	c.OnResponse(func(r *colly.Response) {
		loc := requestLoc(r.Request)
		final := r.Request.URL.String()

		mu.Lock()
		defer mu.Unlock()
		result(loc).Status = r.StatusCode
		if final != loc {
			problems = append(problems, Problem{URL: loc, Kind: ProblemRedirect, Detail: final})
		}
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		loc := requestLoc(e.Request)
		title := pageTitle(e.DOM)
		var found map[string]string
		if len(e.DOM.Nodes) > 0 {
			found = ExtractHreflang(e.DOM.Nodes[0])
		}

		mu.Lock()
		defer mu.Unlock()
		res := result(loc)
		res.Title = title
		res.Hreflang = found
		problems = append(problems, compareHreflang(loc, expected[loc], found)...)
	})

	c.OnError(func(r *colly.Response, err error) {
		loc := requestLoc(r.Request)
		a.logger.Warn("Page check failed", zap.String("url", loc), zap.Int("status", r.StatusCode), zap.Error(err))

		mu.Lock()
		defer mu.Unlock()
		result(loc).Status = r.StatusCode
		if r.StatusCode != 0 {
			problems = append(problems, Problem{URL: loc, Kind: ProblemStatus, Detail: fmt.Sprintf("HTTP %d", r.StatusCode)})
		} else {
			problems = append(problems, Problem{URL: loc, Kind: ProblemFetch, Detail: err.Error()})
		}
	})

	for idx, u := range urls {
		a.logger.Debug("Queueing page", zap.Int("index", idx+1), zap.Int("total", len(urls)), zap.String("url", u.Loc))
		reqCtx := colly.NewContext()
		reqCtx.Put(locKey, u.Loc)
		if err := c.Request("GET", u.Loc, nil, reqCtx, nil); err != nil && !errors.Is(err, colly.ErrAlreadyVisited) {
			mu.Lock()
			problems = append(problems, Problem{URL: u.Loc, Kind: ProblemFetch, Detail: err.Error()})
			mu.Unlock()
		}
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	pages := make([]PageResult, 0, len(results))
	for _, r := range results {
		pages = append(pages, *r)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].URL < pages[j].URL })
	sort.SliceStable(problems, func(i, j int) bool {
		if problems[i].URL != problems[j].URL {
			return problems[i].URL < problems[j].URL
		}
		return problems[i].Kind < problems[j].Kind
	})

	return pages, problems, nil
}

// requestLoc is the sitemap URL a request was queued for, which differs from
// r.URL once a redirect has been followed.
func requestLoc(r *colly.Request) string {
	if loc := r.Ctx.Get(locKey); loc != "" {
		return loc
	}
	return r.URL.String()
}

// abortOnDone stops issuing requests once ctx is cancelled.
func abortOnDone(ctx context.Context, c *colly.Collector) {
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
}

func compareHreflang(loc string, want, got map[string]string) []Problem {
	var problems []Problem
	for lang, href := range want {
		if got[lang] != href {
			problems = append(problems, Problem{
				URL:    loc,
				Kind:   ProblemHreflangMissing,
				Detail: fmt.Sprintf("%s -> %s", lang, href),
			})
		}
	}
	for lang, href := range got {
		if _, ok := want[lang]; !ok {
			problems = append(problems, Problem{
				URL:    loc,
				Kind:   ProblemHreflangExtra,
				Detail: fmt.Sprintf("%s -> %s", lang, href),
			})
		}
	}
	sort.Slice(problems, func(i, j int) bool { return problems[i].Detail < problems[j].Detail })
	return problems
}
