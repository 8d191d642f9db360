package main

import (
	"errors"
	"fmt"

	"github.com/ecocal/ecocal/internal/config"
	"github.com/ecocal/ecocal/pkg/google"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to Google Calendar",
	Long: `Starts the OAuth consent flow: prints a URL to open in a browser, waits
for the redirect on a local port and stores the obtained token at the
configured token file. Run this once before using the sync commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.Google.ClientId == "" || cfg.Google.ClientSecret == "" {
			return errors.New("google.clientid and google.clientsecret must be configured")
		}

		return google.Authorize(cmd.Context(), cfg.Google, func(url string) {
			fmt.Printf("Open the following URL in your browser:\n\n%s\n\n", url)
			fmt.Println("Waiting for authorization...")
		})
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}
