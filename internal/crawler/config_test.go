package crawler

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	v.Set("crawler.base_url", "https://type.jp")
	v.Set("crawler.user_agent", "rankcrawl-test/1.0")
	v.Set("crawler.fetch_delay", "3s")
	v.Set("crawler.request_timeout", "15s")
	v.Set("crawler.max_page_bytes", 5*1024*1024)
	v.Set("crawler.ranking_pages", []map[string]any{
		{"name": "総合", "url": "https://type.jp/rank/"},
		{"name": "開発", "url": "https://type.jp/rank/development/"},
	})
	return v
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(newTestViper())
	require.NoError(t, err)
	require.Equal(t, "https://type.jp", cfg.BaseURL)
	require.Equal(t, 3*time.Second, cfg.FetchDelay)
	require.Equal(t, 15*time.Second, cfg.RequestTimeout)
	require.Equal(t, int64(5*1024*1024), cfg.MaxPageBytes)
	require.Len(t, cfg.RankingPages, 2)
	require.Equal(t, RankingPage{Name: "開発", URL: "https://type.jp/rank/development/"}, cfg.RankingPages[1])
	require.False(t, cfg.RenderEnabled)
	require.False(t, cfg.SalaryRepairDigitRuns)
}

func TestLoadConfigSalaryRepair(t *testing.T) {
	t.Parallel()

	v := newTestViper()
	v.Set("crawler.salary_repair_digit_runs", true)
	v.Set("crawler.salary_min_wage", 850)

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	require.True(t, cfg.SalaryRepairDigitRuns)
	require.Equal(t, 850, cfg.SalaryMinWage)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			RankingPages:   []RankingPage{{Name: "総合", URL: "https://type.jp/rank/"}},
			BaseURL:        "https://type.jp",
			UserAgent:      "rankcrawl-test/1.0",
			RequestTimeout: 15 * time.Second,
			MaxPageBytes:   1 << 20,
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no ranking pages", func(c *Config) { c.RankingPages = nil }},
		{"page without name", func(c *Config) { c.RankingPages[0].Name = "" }},
		{"relative page url", func(c *Config) { c.RankingPages[0].URL = "/rank/" }},
		{"missing base url", func(c *Config) { c.BaseURL = "" }},
		{"relative base url", func(c *Config) { c.BaseURL = "type.jp" }},
		{"missing user agent", func(c *Config) { c.UserAgent = "" }},
		{"negative fetch delay", func(c *Config) { c.FetchDelay = -time.Second }},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"render without timeout", func(c *Config) { c.RenderEnabled = true }},
		{"zero max page bytes", func(c *Config) { c.MaxPageBytes = 0 }},
		{"negative wage floor", func(c *Config) { c.SalaryMinWage = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
