// Package cmd implements the noor command line interface.
package cmd

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noorhq/noor/internal/log"
)

var (
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "noor",
	Short: "Noor - a bilingual Quran and hadith question answering service",
	Long: `Noor answers questions about Islam in English and Arabic, grounding
every answer in Quran verses and hadith retrieved from its corpus.

Run 'noor serve' to start the HTTP API, or 'noor ask' to answer a single
question from the command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

// newLogger builds the process logger from the persistent flags.
func newLogger() log.Logger {
	return log.New(log.Config{Level: parseLevel(logLevel), JSON: logJSON})
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
