package main

import (
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/config"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:           "pfoctl",
	Short:         "Operator CLI for the property flow organizer",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

// newLogger builds the console logger shared by every subcommand
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	return logger.New(&logger.Config{
		Level:      level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
}

// loadConfig reads config.toml, .env and PFO_* variables like the server does
func loadConfig() (*config.Config, error) {
	return config.Load()
}
