// Package cmd defines and implements the CLI commands for the rankcrawl executable.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rankcrawl/internal/app"
	"rankcrawl/pkg/config"
)

var cfgFile string

// appKeyType is the key for storing the App in the command context.
type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory, a variable so tests can swap in a mock.
var newApp = app.New

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rankcrawl",
		Short: "A rate-limited crawler for the type.jp job-ranking pages.",
		Long: `rankcrawl walks the fixed set of type.jp ranking pages, follows each
listing's detail link, and persists normalized companies, categories, and
listings. A pass is idempotent: recrawling a listing URL updates the stored
row instead of duplicating it.`,

		// Runs after config is loaded, before the subcommand: build and
		// inject the application services so a bad setup fails here.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgFile != "" {
				viper.SetConfigFile(cfgFile)
			}
			if err := config.InitConfig(); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			appInstance, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(*app.App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., /etc/rankcrawl, $HOME/.rankcrawl)")
	cmd.AddCommand(newCrawlCmd())
	return cmd
}

// Execute runs the root command and returns its error for main to map to an
// exit code.
func Execute() error {
	return newRootCmd().Execute()
}

func resolveApp(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}
