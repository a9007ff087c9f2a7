package main

import (
	"encoding/json"
	"fmt"

	"github.com/romangod6/sitemapd/internal/crawler"
	"github.com/romangod6/sitemapd/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var failOnProblems bool

	cmd := &cobra.Command{
		Use:   "audit <sitemap-url>",
		Short: "Crawl a published sitemap and check every page and its hreflang links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg

			logger, err := utils.NewRunLogger(cfg.LogDir, "audit", cfg.Debug)
			if err != nil {
				return err
			}
			defer logger.Close()

			auditor := crawler.NewAuditor(&crawler.AuditorConfig{
				UserAgent:   cfg.Audit.UserAgent,
				Parallelism: cfg.Audit.Parallelism,
				MaxURLs:     cfg.Audit.MaxURLs,
			}, logger.Logger)

			report, err := auditor.Audit(cmd.Context(), args[0])
			if err != nil {
				logger.Error("Audit failed", zap.Error(err))
				return err
			}

			for _, p := range report.Problems {
				logger.Warn("Problem found", zap.String("url", p.URL), zap.String("kind", p.Kind), zap.String("detail", p.Detail))
			}
			logger.Info("Audit completed",
				zap.Int("urls", report.URLs),
				zap.Int("visited", len(report.Pages)),
				zap.Int("problems", len(report.Problems)),
				zap.String("log", logger.Path()))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}

			if failOnProblems && len(report.Problems) > 0 {
				return fmt.Errorf("audit found %d problems", len(report.Problems))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failOnProblems, "fail-on-problems", true, "exit non-zero when problems are found")

	return cmd
}
