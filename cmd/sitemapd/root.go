package main

import (
	"fmt"

	"github.com/romangod6/sitemapd/config"
	"github.com/romangod6/sitemapd/internal/content"
	"github.com/romangod6/sitemapd/internal/sitemap"
	"github.com/romangod6/sitemapd/internal/storage"
	"github.com/romangod6/sitemapd/internal/utils"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "sitemapd",
		Short:         "Localized sitemap server and content indexer",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ./config.yaml or ./config/config.yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newIndexCmd(opts),
		newAuditCmd(opts),
	)

	return cmd
}

// app holds the resources shared by the serve and index commands.
type app struct {
	cfg    *config.Config
	logger *utils.RunLogger
	store  storage.Store
}

func openApp(cfg *config.Config, component string) (*app, error) {
	logger, err := utils.NewRunLogger(cfg.LogDir, component, cfg.Debug)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := store.Initialize(); err != nil {
		store.Close()
		logger.Close()
		return nil, fmt.Errorf("failed to initialize database tables: %w", err)
	}

	return &app{cfg: cfg, logger: logger, store: store}, nil
}

func (a *app) indexer() *content.Indexer {
	return content.NewIndexer(a.cfg.Content.Dir, a.store, a.cfg.Site.Languages, a.logger.Logger)
}

func (a *app) generator() *sitemap.Generator {
	return sitemap.NewGenerator(sitemap.Options{
		Languages:       a.cfg.Site.Languages,
		DefaultLanguage: a.cfg.Site.DefaultLanguage,
		Routes:          a.cfg.Routes(),
		DynamicPages:    content.StorePages(a.store, a.cfg.Site.DefaultLanguage),
		DynamicTimeout:  a.cfg.DynamicTimeout(),
		Logger:          a.logger.Logger,
	})
}

func (a *app) Close() {
	a.store.Close()
	a.logger.Close()
}
