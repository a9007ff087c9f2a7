package config

import (
	"strings"
	"time"

	"github.com/romangod6/sitemapd/internal/models"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	LogDir   string
	Database struct {
		Driver string
		URL    string
	}
	Server struct {
		Port        int
		CacheMaxAge string
	}
	Site struct {
		URL             string
		Languages       []string
		DefaultLanguage string
		Routes          []models.RouteDefinition
	}
	Content struct {
		Dir           string
		IndexInterval string
	}
	Sitemap struct {
		DynamicTimeout string
	}
	Audit struct {
		UserAgent   string
		Parallelism int
		MaxURLs     int
	}
}

// LoadConfig reads config.yaml from ".", "./config" or the explicit path,
// with SITEMAPD_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("sitemapd")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Defaults alone are a valid configuration.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logdir", "logs")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.url", "sitemapd.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cachemaxage", "1h")
	v.SetDefault("site.languages", []string{"en", "ko"})
	v.SetDefault("site.defaultlanguage", "en")
	v.SetDefault("site.routes", []map[string]interface{}{
		{"path": "", "changefreq": "weekly", "priority": 1.0},
	})
	v.SetDefault("content.dir", "content")
	v.SetDefault("content.indexinterval", "1h")
	v.SetDefault("sitemap.dynamictimeout", "0s")
	v.SetDefault("audit.useragent", "sitemapd audit bot v1.0")
	v.SetDefault("audit.parallelism", 2)
	v.SetDefault("audit.maxurls", 0)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}

func (c *Config) IndexInterval() time.Duration {
	return parseDuration(c.Content.IndexInterval, time.Hour)
}

func (c *Config) CacheMaxAge() time.Duration {
	return parseDuration(c.Server.CacheMaxAge, time.Hour)
}

// DynamicTimeout of zero disables the dynamic page timeout.
func (c *Config) DynamicTimeout() time.Duration {
	return parseDuration(c.Sitemap.DynamicTimeout, 0)
}

// Routes returns a copy of the configured static route table. A changefreq
// outside the protocol's values is cleared.
func (c *Config) Routes() []models.RouteDefinition {
	routes := append([]models.RouteDefinition(nil), c.Site.Routes...)
	for i := range routes {
		if !routes[i].ChangeFrequency.Valid() {
			routes[i].ChangeFrequency = ""
		}
	}
	return routes
}

// SiteURL is the pinned origin without a trailing slash, or "".
func (c *Config) SiteURL() string {
	return strings.TrimRight(c.Site.URL, "/")
}
