package crawler

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rankcrawl/internal/parse"
)

// Engine drives one crawl pass: it walks the configured ranking pages,
// resolves the category once per page, parses listing summaries, follows
// detail links, and commits one listing at a time. A failure inside one
// listing is logged with its URL and never aborts the category or the pass.
type Engine struct {
	cfg     Config
	fetcher Fetcher
	store   Store
	archive Archiver // optional
	logger  *zap.Logger
	repair  parse.RepairOptions
	baseURL *url.URL
}

// NewEngine constructs an Engine. The archive may be nil.
func NewEngine(cfg Config, fetcher Fetcher, store Store, archive Archiver, logger *zap.Logger) (*Engine, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Engine{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		archive: archive,
		logger:  logger,
		repair: parse.RepairOptions{
			CollapseDigitRuns: cfg.SalaryRepairDigitRuns,
			MinWage:           cfg.SalaryMinWage,
		},
		baseURL: base,
	}, nil
}

// Run executes one full pass over the configured ranking pages. It returns
// a Report with the pass counters; the error is non-nil only when the
// context was canceled mid-pass.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	report := Report{
		PassID:    uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log := e.logger.With(zap.String("pass_id", report.PassID))
	log.Info("Starting crawl pass", zap.Int("ranking_pages", len(e.cfg.RankingPages)))

	for _, page := range e.cfg.RankingPages {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now().UTC()
			return report, err
		}
		e.processRankingPage(ctx, page, &report, log)
	}

	report.FinishedAt = time.Now().UTC()
	log.Info("Crawl pass finished",
		zap.Int("pages_fetched", report.PagesFetched),
		zap.Int("page_failures", report.PageFailures),
		zap.Int("listings_attempted", report.Attempted),
		zap.Int("listings_persisted", report.Persisted),
		zap.Int("listings_skipped", report.Skipped),
	)
	return report, ctx.Err()
}

func (e *Engine) processRankingPage(ctx context.Context, rp RankingPage, report *Report, log *zap.Logger) {
	pageLog := log.With(zap.String("category", rp.Name), zap.String("url", rp.URL))

	page, err := e.fetchPage(ctx, rp.URL)
	if err != nil {
		pageLog.Error("Failed to fetch ranking page", zap.Error(err))
		report.PageFailures++
		return
	}
	report.PagesFetched++

	// Resolve the category once per index page, not once per listing.
	categoryID, err := e.store.ResolveCategory(ctx, rp.Name)
	if err != nil {
		pageLog.Error("Failed to resolve category", zap.Error(err))
		report.PageFailures++
		return
	}

	summaries := parse.ParseIndex(page.Body, e.baseURL, e.repair)
	pageLog.Info("Parsed ranking page", zap.Int("listings", len(summaries)))

	for _, summary := range summaries {
		if ctx.Err() != nil {
			return
		}
		report.Attempted++
		if err := e.processListing(ctx, categoryID, summary); err != nil {
			pageLog.Error("Failed to process listing",
				zap.String("listing_url", summary.DetailURL),
				zap.String("company", summary.CompanyName),
				zap.Error(err),
			)
			report.Skipped++
			TotalListingFailures.Inc()
			continue
		}
		report.Persisted++
		TotalListingsPersisted.Inc()
	}
}

func (e *Engine) processListing(ctx context.Context, categoryID int64, summary parse.ListingSummary) error {
	companyID, err := e.store.ResolveCompany(ctx, summary.CompanyName)
	if err != nil {
		return fmt.Errorf("resolve company %q: %w", summary.CompanyName, err)
	}

	listing := Listing{
		CompanyID:       companyID,
		CategoryID:      categoryID,
		Rank:            summary.Rank,
		Title:           summary.Title,
		URL:             summary.DetailURL,
		EmploymentType:  summary.EmploymentType,
		SalarySummary:   summary.SalarySummary,
		LocationSummary: summary.LocationSummary,
	}

	if summary.DetailURL != "" {
		fields, err := e.fetchDetail(ctx, summary.DetailURL)
		if err != nil {
			return err
		}
		listing.Details = fields
	}

	if _, err := e.store.UpsertListing(ctx, listing); err != nil {
		return fmt.Errorf("persist listing: %w", err)
	}
	return nil
}

// fetchDetail turns one detail-page URL into a flat field map. A fetch
// failure propagates without partial extraction.
func (e *Engine) fetchDetail(ctx context.Context, rawURL string) (map[string]string, error) {
	page, err := e.fetchPage(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return parse.ParseDetail(page.Body), nil
}

func (e *Engine) fetchPage(ctx context.Context, rawURL string) (Page, error) {
	page, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		TotalPageFailures.Inc()
		return Page{}, err
	}
	TotalPagesFetched.Inc()
	if e.archive != nil {
		if _, aerr := e.archive.SaveHTML(ctx, page); aerr != nil {
			e.logger.Warn("Failed to archive page", zap.String("url", rawURL), zap.Error(aerr))
		}
	}
	return page, nil
}
