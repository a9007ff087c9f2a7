package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/romangod6/sitemapd/internal/content"
	"github.com/romangod6/sitemapd/internal/models"
	"github.com/romangod6/sitemapd/internal/sitemap"
	"github.com/romangod6/sitemapd/internal/storage"
	"go.uber.org/zap"
)

const xmlContentType = "application/xml; charset=utf-8"

// Indexer refreshes the page store from the content directory.
type Indexer interface {
	Run(ctx context.Context) (*content.IndexResult, error)
}

type HandlerConfig struct {
	// SiteURL pins the sitemap origin. When empty it is taken from the request.
	SiteURL     string
	CacheMaxAge time.Duration
	Indexer     Indexer
	Logger      *zap.Logger
}

type Handler struct {
	store     storage.Store
	generator *sitemap.Generator
	config    HandlerConfig
	logger    *zap.Logger
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PaginationResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalCount int         `json:"total_count,omitempty"`
}

type CreatePageRequest struct {
	Path            string                 `json:"path"`
	Language        string                 `json:"language" binding:"required"`
	Title           string                 `json:"title"`
	ChangeFrequency models.ChangeFrequency `json:"changefreq" binding:"omitempty,oneof=always hourly daily weekly monthly yearly never"`
	Priority        *float64               `json:"priority" binding:"omitempty,min=0,max=1"`
	UpdatedAt       *time.Time             `json:"updated_at"`
}

func NewHandler(store storage.Store, generator *sitemap.Generator, config HandlerConfig) *Handler {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:     store,
		generator: generator,
		config:    config,
		logger:    logger,
	}
}

// Sitemap serves a single sitemap, or a sitemap index once the site
// outgrows one document.
func (h *Handler) Sitemap(c *gin.Context) {
	siteURL := h.siteURL(c.Request)

	entries, ok := h.allPages(c, siteURL)
	if !ok {
		return
	}

	if len(entries) > sitemap.MaxURLsPerSitemap {
		count := sitemap.SitemapCount(len(entries))
		h.logger.Info("Serving sitemap index", zap.String("site", siteURL), zap.Int("sitemaps", count))
		h.writeXML(c, sitemap.GenerateSitemapIndexXML(siteURL, count))
		return
	}

	h.writeXML(c, sitemap.GenerateSitemapXML(entries))
}

// SubSitemap serves /sitemap-{n}.xml.
func (h *Handler) SubSitemap(c *gin.Context) {
	file := c.Param("file")
	if !strings.HasSuffix(file, ".xml") {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Sitemap not found"})
		return
	}

	n, err := strconv.Atoi(strings.TrimSuffix(file, ".xml"))
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid sitemap index"})
		return
	}

	siteURL := h.siteURL(c.Request)
	entries, ok := h.allPages(c, siteURL)
	if !ok {
		return
	}

	page := sitemap.Page(entries, n)
	if page == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Sitemap not found"})
		return
	}

	h.writeXML(c, sitemap.GenerateSitemapXML(page))
}

func (h *Handler) siteURL(r *http.Request) string {
	if h.config.SiteURL != "" {
		return h.config.SiteURL
	}
	return sitemap.GetSiteURL(r)
}

func (h *Handler) allPages(c *gin.Context, siteURL string) ([]models.SitemapEntry, bool) {
	entries, err := h.generator.GetAllPages(c.Request.Context(), siteURL)
	if err != nil {
		h.logger.Error("Failed to generate sitemap", zap.String("site", siteURL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate sitemap"})
		return nil, false
	}
	return entries, true
}

func (h *Handler) writeXML(c *gin.Context, body string) {
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.config.CacheMaxAge.Seconds())))
	c.Data(http.StatusOK, xmlContentType, []byte(body))
}

func (h *Handler) ListPages(c *gin.Context) {
	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	pages, err := h.store.ListPages(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch pages"})
		return
	}

	if pages == nil {
		pages = []*models.Page{}
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  pages,
		Page:  page,
		Limit: limit,
	})
}

func (h *Handler) GetPage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid page ID"})
		return
	}

	page, err := h.store.GetPage(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch page"})
		return
	}

	if page == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Page not found"})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) CreatePage(c *gin.Context) {
	var req CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid page data"})
		return
	}

	if req.Path != "" && !strings.HasPrefix(req.Path, "/") {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Page path must start with /"})
		return
	}

	if !h.supportsLanguage(req.Language) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("Unsupported language %q", req.Language)})
		return
	}

	page := models.NewPage(req.Language, req.Path)
	page.Title = req.Title
	page.ChangeFrequency = req.ChangeFrequency
	page.Priority = req.Priority
	page.Source = models.SourceAPI
	if req.UpdatedAt != nil {
		page.UpdatedAt = *req.UpdatedAt
	}

	if err := h.store.UpsertPage(c.Request.Context(), page); err != nil {
		h.logger.Error("Failed to save page", zap.String("path", page.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save page"})
		return
	}

	c.JSON(http.StatusCreated, page)
}

func (h *Handler) DeletePage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid page ID"})
		return
	}

	if err := h.store.DeletePage(c.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Page not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete page"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// RunIndex re-reads the content directory on demand.
func (h *Handler) RunIndex(c *gin.Context) {
	if h.config.Indexer == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Content indexing is not configured"})
		return
	}

	result, err := h.config.Indexer.Run(c.Request.Context())
	if err != nil {
		h.logger.Error("Content indexing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to index content"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) supportsLanguage(lang string) bool {
	for _, l := range h.generator.Languages() {
		if l == lang {
			return true
		}
	}
	return false
}

// Utility functions
func getPaginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	return page, limit
}
