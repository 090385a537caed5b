package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"

	"ditto/internal/commands"
	emojimodule "ditto/internal/commands/modules/emojicache"
)

var emojiCmd = &cobra.Command{
	Use:   "emoji",
	Short: "Maintain the avatar emoji cache without starting the bot",
}

var emojiSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Purge stale cache records and report orphaned emoji",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEmojiModule(cmd.Context(), func(ctx context.Context, m *emojimodule.Module) error {
			report, err := m.SweepService().RunSweep(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), emojimodule.FormatSweepReport(report))
			return nil
		})
	},
}

var emojiStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print slot usage across the emoji pool",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEmojiModule(cmd.Context(), func(ctx context.Context, m *emojimodule.Module) error {
			stats, err := m.SweepService().Stats(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, g := range stats.Guilds {
				fmt.Fprintf(out, "%s\t%d/%d used\t%d free\n", g.ID, g.Used, g.Capacity, g.Free())
			}
			fmt.Fprintf(out, "records=%d bindings=%d free=%d\n", stats.Records, stats.Bindings, stats.Free())
			return nil
		})
	},
}

// withEmojiModule builds the command modules over a REST-only session and
// hands the emojicache module to fn.
func withEmojiModule(ctx context.Context, fn func(context.Context, *emojimodule.Module) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	session, err := discordgo.New("Bot " + cfg.GetBotToken())
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	handler, err := commands.NewModuleHandler(cfg, session)
	if err != nil {
		return err
	}
	defer func() {
		if err := handler.Close(); err != nil {
			cfg.Logger.Warn("error closing database", "err", err)
		}
	}()

	if err := handler.InitializeModuleServices(session); err != nil {
		return err
	}

	m, ok := handler.GetModule("emojicache").(*emojimodule.Module)
	if !ok {
		return fmt.Errorf("emojicache module is not registered")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return fn(ctx, m)
}

func init() {
	emojiCmd.AddCommand(emojiSweepCmd, emojiStatsCmd)
	rootCmd.AddCommand(emojiCmd)
}
