package main

import (
	"os"

	"github.com/ecocal/ecocal/internal/app"
	"github.com/ecocal/ecocal/internal/config"
	"github.com/ecocal/ecocal/internal/database"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ecocal",
	Short: "Economic calendar scraper and Google Calendar sync",
	Long: `ecocal scrapes the Trading Economics calendar page, stores the events
in PostgreSQL and pushes high-importance events to a Google Calendar.

Run "ecocal serve" for the HTTP API, or use the pipeline commands
(scrape, sync, run) for one-shot execution from cron.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config/application.yaml", "path to the configuration file")
}

// buildPipeline loads configuration, runs migrations and wires the
// dependency graph used by the non-server commands.
func buildPipeline() (*app.Dependencies, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	db := database.NewConnector(cfg.Database)
	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}
	return app.BuildDependencies(db, cfg), nil
}
