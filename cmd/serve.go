package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/noorhq/noor/api"
	"github.com/noorhq/noor/internal/database"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the HTTP API server.

Pending database migrations are applied on startup. The server shuts
down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides configuration)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := newLogger()

	a, err := setup(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := database.Migrate(a.cfg.PostgresURL()); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.ServerAddr
	}

	server := api.NewServer(a.assistant, a.store, a.pool, logger)
	if err := server.Run(ctx, addr); err != nil {
		return fmt.Errorf("HTTP server: %w", err)
	}
	return nil
}
