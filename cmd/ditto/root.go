package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ditto/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "ditto",
	Short:         "A Discord bot that keeps user avatars around as custom emoji",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// loadConfig reads and validates the configuration for commands that talk to Discord
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
