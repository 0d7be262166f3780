package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/varoOP/aniwatch/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the aniwatch web server",
	Long: `Serve starts the HTTP API:
1. Opens (and migrates) the local SQLite database
2. Builds the MAL catalog client behind the TTL cache
3. Listens until interrupted, then shuts down gracefully

Without a configured mal_client_id the server still runs; every catalog
operation degrades to an empty result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := application.Run(ctx); err != nil {
			return fmt.Errorf("serve failed: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
