package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/romangod6/sitemapd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 9090
  cacheMaxAge: 30m
site:
  url: https://example.com/
  languages: [en, ko, ja]
  defaultLanguage: ko
  routes:
    - path: ""
      changefreq: weekly
      priority: 1.0
    - path: /about
      changefreq: monthly
      priority: 0.8
    - path: /projects
      lastmod: "2024-01-01"
database:
  driver: postgres
  url: postgres://localhost/sitemapd
sitemap:
  dynamicTimeout: 5s
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.CacheMaxAge())
	assert.Equal(t, "https://example.com", cfg.SiteURL())
	assert.Equal(t, []string{"en", "ko", "ja"}, cfg.Site.Languages)
	assert.Equal(t, "ko", cfg.Site.DefaultLanguage)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.DynamicTimeout())

	routes := cfg.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, "/about", routes[1].Path)
	assert.Equal(t, models.Monthly, routes[1].ChangeFrequency)
	require.NotNil(t, routes[1].Priority)
	assert.Equal(t, 0.8, *routes[1].Priority)
	assert.Nil(t, routes[2].Priority)
	assert.Equal(t, "2024-01-01", routes[2].LastModified)

	// Defaults still apply to keys the file leaves out.
	assert.Equal(t, "content", cfg.Content.Dir)
	assert.Equal(t, time.Hour, cfg.IndexInterval())
	assert.Equal(t, 2, cfg.Audit.Parallelism)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SITEMAPD_SERVER_PORT", "7070")
	t.Setenv("SITEMAPD_DATABASE_URL", "/tmp/override.db")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/tmp/override.db", cfg.Database.URL)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Config{}
	cfg.Content.IndexInterval = "soon"
	cfg.Server.CacheMaxAge = ""

	assert.Equal(t, time.Hour, cfg.IndexInterval())
	assert.Equal(t, time.Hour, cfg.CacheMaxAge())
	assert.Equal(t, time.Duration(0), cfg.DynamicTimeout())
}

func TestRoutes_UnknownChangeFrequencyCleared(t *testing.T) {
	cfg := &Config{}
	cfg.Site.Routes = []models.RouteDefinition{
		{Path: "/about", ChangeFrequency: "fortnightly"},
		{Path: "/blog", ChangeFrequency: models.Daily},
	}

	routes := cfg.Routes()
	assert.Empty(t, routes[0].ChangeFrequency)
	assert.Equal(t, models.Daily, routes[1].ChangeFrequency)
	assert.Equal(t, models.ChangeFrequency("fortnightly"), cfg.Site.Routes[0].ChangeFrequency)
}
