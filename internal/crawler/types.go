// Package crawler defines core types shared across subsystems.
package crawler

import (
	"net/http"
	"time"
)

// RankingPage names one configured index page: a category label plus the URL
// of the ranking page that groups listings under that category.
type RankingPage struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// Page is the raw result of fetching one URL.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
	FetchedAt  time.Time
}

// Listing is the complete record persisted for one job posting. Company and
// Category must be resolved to existing entities before the listing is stored.
// A non-empty URL identifies the listing for upsert purposes across runs.
type Listing struct {
	CompanyID       int64
	CategoryID      int64
	Rank            *int
	Title           string
	URL             string
	EmploymentType  string
	SalarySummary   string
	LocationSummary string

	// Details holds the extracted detail-page sections keyed by field name
	// (page_title, job_content, ...). Every configured field is present,
	// empty string when the section was absent.
	Details map[string]string
}

// Detail returns the named detail section, or "" when it was never extracted.
func (l Listing) Detail(name string) string {
	if l.Details == nil {
		return ""
	}
	return l.Details[name]
}

// Report summarizes one completed crawl pass. It is returned even when some
// units failed; only setup errors abort a pass without a report.
type Report struct {
	PassID       string
	StartedAt    time.Time
	FinishedAt   time.Time
	PagesFetched int
	PageFailures int
	Attempted    int
	Persisted    int
	Skipped      int
}
