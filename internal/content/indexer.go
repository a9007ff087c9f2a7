package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/romangod6/sitemapd/internal/models"
	"github.com/romangod6/sitemapd/internal/storage"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// IndexResult summarizes one indexer run.
type IndexResult struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Removed int `json:"removed"`
}

// Indexer loads markdown pages from {dir}/{language}/**/*.md into the page
// store. Pages with source "content" that are no longer on disk are removed.
type Indexer struct {
	dir       string
	store     storage.Store
	languages []string
	logger    *zap.Logger
	md        goldmark.Markdown
}

func NewIndexer(dir string, store storage.Store, languages []string, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		dir:       dir,
		store:     store,
		languages: append([]string(nil), languages...),
		logger:    logger,
		md:        goldmark.New(goldmark.WithExtensions(meta.Meta)),
	}
}

type parsedPage struct {
	page  *models.Page
	draft bool
}

func (ix *Indexer) Run(ctx context.Context) (*IndexResult, error) {
	found := make([][]parsedPage, len(ix.languages))

	g, gctx := errgroup.WithContext(ctx)
	for i, lang := range ix.languages {
		i, lang := i, lang
		g.Go(func() error {
			pages, err := ix.scanLanguage(gctx, lang)
			if err != nil {
				return fmt.Errorf("failed to scan %s content: %w", lang, err)
			}
			found[i] = pages
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &IndexResult{}
	seen := make(map[uuid.UUID]bool)

	for _, pages := range found {
		for _, p := range pages {
			if p.draft {
				result.Skipped++
				continue
			}
			if err := ix.store.UpsertPage(ctx, p.page); err != nil {
				return nil, fmt.Errorf("failed to save page %s%s: %w", p.page.Language, p.page.Path, err)
			}
			seen[p.page.ID] = true
			result.Indexed++
		}
	}

	existing, err := ix.store.ListAllPages(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	for _, p := range existing {
		if p.Source != models.SourceContent || seen[p.ID] {
			continue
		}
		if err := ix.store.DeletePage(ctx, p.ID); err != nil {
			// Removed by a concurrent run.
			if errors.Is(err, storage.ErrPageNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to remove page %s%s: %w", p.Language, p.Path, err)
		}
		ix.logger.Debug("Removed stale page", zap.String("language", p.Language), zap.String("path", p.Path))
		result.Removed++
	}

	ix.logger.Info("Content indexed",
		zap.String("dir", ix.dir),
		zap.Int("indexed", result.Indexed),
		zap.Int("skipped", result.Skipped),
		zap.Int("removed", result.Removed))

	return result, nil
}

func (ix *Indexer) scanLanguage(ctx context.Context, lang string) ([]parsedPage, error) {
	root := filepath.Join(ix.dir, lang)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		ix.logger.Debug("No content for language", zap.String("language", lang))
		return nil, nil
	}

	var pages []parsedPage
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		p, err := ix.parseFile(path, lang, rel)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		pages = append(pages, p)
		return nil
	})

	return pages, err
}

func (ix *Indexer) parseFile(path, lang, rel string) (parsedPage, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return parsedPage{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return parsedPage{}, err
	}

	pctx := parser.NewContext()
	doc := ix.md.Parser().Parse(text.NewReader(source), parser.WithContext(pctx))
	fm, err := meta.TryGet(pctx)
	if err != nil {
		return parsedPage{}, fmt.Errorf("invalid front matter: %w", err)
	}

	page := models.NewPage(lang, pagePath(rel, stringValue(fm["slug"])))
	page.Source = models.SourceContent
	page.Title = stringValue(fm["title"])
	if page.Title == "" {
		page.Title = firstHeading(doc, source)
	}
	if freq := models.ChangeFrequency(stringValue(fm["changefreq"])); freq.Valid() {
		page.ChangeFrequency = freq
	} else if freq != "" {
		ix.logger.Warn("Ignoring unknown changefreq",
			zap.String("file", path),
			zap.String("changefreq", string(freq)))
	}
	page.Priority = floatValue(fm["priority"])

	page.UpdatedAt = info.ModTime().UTC()
	for _, key := range []string{"updated", "date"} {
		if t, ok := timeValue(fm[key]); ok {
			page.UpdatedAt = t
			break
		}
	}

	draft, _ := fm["draft"].(bool)
	return parsedPage{page: page, draft: draft}, nil
}

// pagePath maps a file relative to its language directory to a route path:
// "blog/hello.md" is "/blog/hello", "blog/index.md" is "/blog" and the top
// level "index.md" is "".
func pagePath(rel, slug string) string {
	if slug = strings.Trim(slug, "/"); slug != "" {
		return "/" + slug
	}

	rel = strings.TrimSuffix(filepath.ToSlash(rel), ".md")
	if rel == "index" {
		return ""
	}
	rel = strings.TrimSuffix(rel, "/index")
	return "/" + rel
}

func firstHeading(doc ast.Node, source []byte) string {
	var title string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		collectText(heading, source, &buf)
		title = strings.TrimSpace(buf.String())
		return ast.WalkStop, nil
	})
	return title
}

func collectText(n ast.Node, source []byte, buf *bytes.Buffer) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			continue
		}
		collectText(c, source, buf)
	}
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func floatValue(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return models.Float(n)
	case int:
		return models.Float(float64(n))
	}
	return nil
}

var frontMatterLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func timeValue(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case string:
		for _, layout := range frontMatterLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed.UTC(), true
			}
		}
	}
	return time.Time{}, false
}
