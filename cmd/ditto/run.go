package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ditto/internal/bot"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and serve slash commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dittoBot, err := bot.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}

		if err := dittoBot.Start(); err != nil {
			return fmt.Errorf("failed to start bot: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
