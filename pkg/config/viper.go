// Package config initializes the application's configuration. It uses Viper
// to read settings from a config file and environment variables, providing a
// unified configuration system.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitConfig sets Viper defaults and search paths. Called once at startup,
// before any command runs. Reading the config file is best-effort: a missing
// file means defaults plus environment variables.
func InitConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/rankcrawl/")
	viper.AddConfigPath("$HOME/.rankcrawl")

	viper.SetDefault("crawler.base_url", "https://type.jp")
	viper.SetDefault("crawler.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	viper.SetDefault("crawler.fetch_delay", "3s")
	viper.SetDefault("crawler.request_timeout", "15s")
	viper.SetDefault("crawler.render_enabled", false)
	viper.SetDefault("crawler.render_timeout", "15s")
	viper.SetDefault("crawler.max_page_bytes", 5*1024*1024)
	viper.SetDefault("crawler.salary_repair_digit_runs", false)
	viper.SetDefault("crawler.salary_min_wage", 0)

	// The fixed, versioned set of ranking pages this crawler walks.
	viper.SetDefault("crawler.ranking_pages", []map[string]any{
		{"name": "総合", "url": "https://type.jp/rank/"},
		{"name": "開発", "url": "https://type.jp/rank/development/"},
		{"name": "PM", "url": "https://type.jp/rank/pm/"},
		{"name": "インフラ", "url": "https://type.jp/rank/infrastructure/"},
		{"name": "エンジニア", "url": "https://type.jp/rank/engineer/"},
		{"name": "営業", "url": "https://type.jp/rank/sales/"},
		{"name": "サービス", "url": "https://type.jp/rank/service/"},
		{"name": "オフィス", "url": "https://type.jp/rank/office/"},
		{"name": "その他", "url": "https://type.jp/rank/others/"},
	})

	viper.SetDefault("database.provider", "postgres")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.max_conns", 4)
	viper.SetDefault("database.min_conns", 1)

	viper.SetDefault("archive.dir", "")
	viper.SetDefault("server.metrics_addr", "")
	viper.SetDefault("logging.mode", "production")

	viper.SetEnvPrefix("RANKCRAWL") // e.g. RANKCRAWL_DATABASE_DSN
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}
