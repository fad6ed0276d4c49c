package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rankcrawl/internal/crawler"
)

// newCrawlCmd creates the 'crawl' subcommand, which runs exactly one pass
// over the configured ranking pages.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Run one crawl pass over the ranking pages",
		Long: `Fetches every configured ranking page in order, resolves companies and
categories, follows detail links, and upserts listings. Per-listing failures
are logged and skipped; the pass still exits zero. Only setup failures (bad
configuration, unreachable storage) produce a non-zero exit.`,

		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.Logger()

	engine, err := crawler.NewEngine(
		appInstance.Config(),
		appInstance.Fetcher(),
		appInstance.Store(),
		appInstance.Archive(),
		logger,
	)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	// Cancellation is cooperative: the engine checks between pages and
	// listings, never mid-fetch.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := engine.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawl pass: %w", err)
	}

	logger.Info("Crawl command finished",
		zap.String("pass_id", report.PassID),
		zap.Int("attempted", report.Attempted),
		zap.Int("persisted", report.Persisted),
		zap.Int("skipped", report.Skipped),
	)
	return nil
}
