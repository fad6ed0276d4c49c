package crawler

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config captures every knob that influences a crawl pass. All values
// originate from Viper so the crawler can be configured via file or env vars.
type Config struct {
	RankingPages   []RankingPage
	BaseURL        string
	UserAgent      string
	FetchDelay     time.Duration
	RequestTimeout time.Duration

	// RenderEnabled routes fetches through the headless renderer. Off by
	// default; the ranking pages are server-rendered.
	RenderEnabled bool
	RenderTimeout time.Duration

	// ArchiveDir, when set, enables raw HTML snapshots of every fetched page.
	ArchiveDir   string
	MaxPageBytes int64

	// SalaryRepairDigitRuns collapses a "1600"+4-digit run in the salary
	// summary down to "1600". SalaryMinWage drops salary summaries whose
	// first number is below the floor. Both are site-template workarounds
	// inherited from an older scraper and default to off.
	SalaryRepairDigitRuns bool
	SalaryMinWage         int
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		BaseURL:               v.GetString("crawler.base_url"),
		UserAgent:             v.GetString("crawler.user_agent"),
		FetchDelay:            v.GetDuration("crawler.fetch_delay"),
		RequestTimeout:        v.GetDuration("crawler.request_timeout"),
		RenderEnabled:         v.GetBool("crawler.render_enabled"),
		RenderTimeout:         v.GetDuration("crawler.render_timeout"),
		ArchiveDir:            v.GetString("archive.dir"),
		MaxPageBytes:          v.GetInt64("crawler.max_page_bytes"),
		SalaryRepairDigitRuns: v.GetBool("crawler.salary_repair_digit_runs"),
		SalaryMinWage:         v.GetInt("crawler.salary_min_wage"),
	}
	if err := v.UnmarshalKey("crawler.ranking_pages", &cfg.RankingPages); err != nil {
		return Config{}, fmt.Errorf("unmarshal crawler.ranking_pages: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks for configuration that would make a pass unrunnable.
func (c Config) Validate() error {
	if len(c.RankingPages) == 0 {
		return fmt.Errorf("crawler.ranking_pages must include at least one page")
	}
	for _, p := range c.RankingPages {
		if p.Name == "" {
			return fmt.Errorf("ranking page %q has no category name", p.URL)
		}
		u, err := url.Parse(p.URL)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("ranking page %q: url must be absolute", p.Name)
		}
	}
	if c.BaseURL == "" {
		return fmt.Errorf("crawler.base_url must be set")
	}
	if u, err := url.Parse(c.BaseURL); err != nil || !u.IsAbs() {
		return fmt.Errorf("crawler.base_url must be an absolute URL")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.FetchDelay < 0 {
		return fmt.Errorf("crawler.fetch_delay must be >= 0")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("crawler.request_timeout must be > 0")
	}
	if c.RenderEnabled && c.RenderTimeout <= 0 {
		return fmt.Errorf("crawler.render_timeout must be > 0 when rendering is enabled")
	}
	if c.MaxPageBytes <= 0 {
		return fmt.Errorf("crawler.max_page_bytes must be > 0")
	}
	if c.SalaryMinWage < 0 {
		return fmt.Errorf("crawler.salary_min_wage must be >= 0")
	}
	return nil
}
