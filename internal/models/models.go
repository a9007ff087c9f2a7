package models

import (
	"time"

	"github.com/google/uuid"
)

// ChangeFrequency is the advisory <changefreq> hint of a sitemap entry.
type ChangeFrequency string

const (
	Always  ChangeFrequency = "always"
	Hourly  ChangeFrequency = "hourly"
	Daily   ChangeFrequency = "daily"
	Weekly  ChangeFrequency = "weekly"
	Monthly ChangeFrequency = "monthly"
	Yearly  ChangeFrequency = "yearly"
	Never   ChangeFrequency = "never"
)

// Valid reports whether f is one of the sitemap protocol's values.
func (f ChangeFrequency) Valid() bool {
	switch f {
	case Always, Hourly, Daily, Weekly, Monthly, Yearly, Never:
		return true
	}
	return false
}

// XDefault is the hreflang value of the catch-all alternate.
const XDefault = "x-default"

// Alternate is the same logical page in another language.
type Alternate struct {
	Hreflang string `json:"hreflang"`
	Href     string `json:"href"`
}

// SitemapEntry is one crawlable URL. Location is the dedup key.
type SitemapEntry struct {
	Location        string          `json:"location"`
	LastModified    string          `json:"lastModified,omitempty"`
	ChangeFrequency ChangeFrequency `json:"changeFrequency,omitempty"`
	Priority        *float64        `json:"priority,omitempty"`
	Alternates      []Alternate     `json:"alternates,omitempty"`
}

// RouteDefinition is a language-agnostic static page, e.g. "/about".
type RouteDefinition struct {
	Path            string          `json:"path" mapstructure:"path"`
	ChangeFrequency ChangeFrequency `json:"changefreq,omitempty" mapstructure:"changefreq"`
	Priority        *float64        `json:"priority,omitempty" mapstructure:"priority"`
	LastModified    string          `json:"lastmod,omitempty" mapstructure:"lastmod"`
}

// Page is a dynamic page kept in the content index.
type Page struct {
	ID              uuid.UUID       `json:"id"`
	Path            string          `json:"path"`
	Language        string          `json:"language"`
	Title           string          `json:"title"`
	ChangeFrequency ChangeFrequency `json:"changefreq,omitempty"`
	Priority        *float64        `json:"priority,omitempty"`
	Source          string          `json:"source"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

const (
	SourceContent = "content"
	SourceAPI     = "api"
)
