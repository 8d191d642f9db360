package main

import (
	"fmt"

	"github.com/ecocal/ecocal/internal/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApplication(configPath)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return application.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
