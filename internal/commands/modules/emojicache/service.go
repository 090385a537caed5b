package emojicache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"

	"ditto/internal/commands/types"
	"ditto/internal/config"
	"ditto/internal/emojicache"
	"ditto/internal/utils"
)

const sweepTimeout = 10 * time.Minute

// Service runs the periodic reconciliation sweep of the emoji cache
type Service struct {
	types.BaseService
	config *config.Config
	cache  *emojicache.Cache
}

// NewService creates a sweep service over cache
func NewService(cfg *config.Config, cache *emojicache.Cache) *Service {
	return &Service{config: cfg, cache: cache}
}

// ScheduledFuncs runs the sweep on emoji.sweep_schedule
func (s *Service) ScheduledFuncs() []types.ScheduledFunc {
	return []types.ScheduledFunc{
		{
			Name:     "emoji-sweep",
			Schedule: s.config.GetEmojiSweepSchedule(),
			Fn: func() error {
				ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
				defer cancel()
				_, err := s.RunSweep(ctx)
				return err
			},
		},
	}
}

// RunSweep sweeps the cache and reports anything it changed or found to the
// log channel.
func (s *Service) RunSweep(ctx context.Context) (emojicache.SweepReport, error) {
	report, err := s.cache.Sweep(ctx)
	if err != nil {
		return report, fmt.Errorf("emoji sweep failed: %w", err)
	}

	if s.Session != nil && s.config.GetLogChannelID() != "" && noteworthy(report) {
		if err := utils.LogToChannel(s.config, s.Session, "Emoji Cache Sweep", FormatSweepReport(report)); err != nil {
			s.config.Logger.Warnf("Failed to post sweep report: %v", err)
		}
	}
	return report, nil
}

// Stats reads the cache's slot usage
func (s *Service) Stats(ctx context.Context) (emojicache.Stats, error) {
	return s.cache.Stats(ctx)
}

func noteworthy(r emojicache.SweepReport) bool {
	return len(r.Purged) > 0 || len(r.Orphans) > 0 || len(r.Unreachable) > 0
}

// FormatSweepReport renders a sweep report for Discord or a terminal
func FormatSweepReport(r emojicache.SweepReport) string {
	var b strings.Builder
	b.WriteString(heredoc.Docf(`
		**Records checked:** %d
		**Records purged:** %d
		**Orphans found:** %d
		**Orphans deleted:** %d
	`, r.Checked, len(r.Purged), len(r.Orphans), r.OrphansDeleted))

	if len(r.Orphans) > 0 {
		b.WriteString("\n**Orphans:**\n")
		b.WriteString(utils.SummariseList(r.Orphans, func(o emojicache.Orphan) string {
			return fmt.Sprintf("`%s` (%s) in %s", o.Name, o.EmojiID, o.GuildID)
		}, 10, false))
		b.WriteString("\n")
	}
	if len(r.Unreachable) > 0 {
		b.WriteString("\n**Unreachable guilds:** ")
		b.WriteString(strings.Join(r.Unreachable, ", "))
		b.WriteString("\n")
	}
	return b.String()
}
