package emojicache

import (
	"context"

	"ditto/internal/database"
)

// SweepReport summarises one reconciliation pass
type SweepReport struct {
	Checked        int
	Purged         []string // records whose emoji had vanished
	Orphans        []Orphan // emoji in pool guilds without a record
	OrphansDeleted int
	Unreachable    []string // pool guilds that could not be listed
}

// Orphan is an emoji found in a pool guild with no matching record, usually
// left behind by a partially failed upload.
type Orphan struct {
	GuildID string
	EmojiID string
	Name    string
}

// Sweep reconciles the records with the pool guilds. Records whose emoji no
// longer exists are purged. Static emoji with no record are reported as
// orphans and deleted when emoji.sweep_orphans is enabled.
//
// Guilds are listed with no transaction open; the store is only locked to
// apply the purges.
func (c *Cache) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	// Records are read before the guilds are listed, so an emoji uploaded in
	// between can only look like an orphan, never like a vanished record.
	var records []database.EmojiRecord
	err := c.db.WithTx(ctx, func(tx *database.Tx) error {
		var err error
		records, err = tx.EmojiRecords(ctx)
		return err
	})
	if err != nil {
		return report, err
	}

	listed := make(map[string]bool, len(c.pool))
	live := make(map[string]struct{})
	var candidates []Orphan
	for _, pg := range c.pool {
		emojis, err := c.host.Emojis(ctx, pg.ID)
		if err != nil {
			c.logger.Warn("sweep could not list pool guild", "guild", pg.ID, "err", err)
			report.Unreachable = append(report.Unreachable, pg.ID)
			continue
		}
		listed[pg.ID] = true
		for _, e := range emojis {
			if e == nil {
				continue
			}
			live[e.ID] = struct{}{}
			if !e.Animated {
				candidates = append(candidates, Orphan{GuildID: pg.ID, EmojiID: e.ID, Name: e.Name})
			}
		}
	}

	known := make(map[string]struct{}, len(records))
	var vanished []string
	for _, rec := range records {
		known[rec.EmojiID] = struct{}{}

		var gone bool
		switch {
		case listed[rec.GuildID]:
			_, ok := live[rec.EmojiID]
			gone = !ok
		case c.inPool(rec.GuildID):
			// Unreachable this time; nothing can be said about it
			continue
		default:
			// The guild has left the pool, so look the emoji up on its own
			emoji, err := c.host.Emoji(ctx, rec.GuildID, rec.EmojiID)
			if err != nil {
				c.logger.Warn("sweep could not resolve emoji", "emoji", rec.EmojiID, "guild", rec.GuildID, "err", err)
				continue
			}
			gone = emoji == nil
		}

		report.Checked++
		if gone {
			vanished = append(vanished, rec.EmojiID)
		}
	}

	var orphans []Orphan
	err = c.withTx(ctx, func(tx *cacheTx) error {
		for _, id := range vanished {
			existed, err := tx.DeleteEmojiRecord(ctx, id)
			if err != nil {
				return err
			}
			if existed {
				report.Purged = append(report.Purged, id)
			}
		}

		for _, o := range candidates {
			if _, ok := known[o.EmojiID]; ok {
				continue
			}
			// Recorded after the records were read
			rec, err := tx.EmojiRecord(ctx, o.EmojiID)
			if err != nil {
				return err
			}
			if rec == nil {
				orphans = append(orphans, o)
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	report.Orphans = orphans

	// Records are only written for fresh uploads, so an orphan cannot gain
	// one after the check above.
	if c.sweepOrphans {
		for _, o := range orphans {
			if err := c.host.DeleteEmoji(ctx, o.GuildID, o.EmojiID); err != nil {
				c.logger.Warn("failed to delete orphaned emoji", "guild", o.GuildID, "emoji", o.EmojiID, "err", err)
				continue
			}
			report.OrphansDeleted++
		}
	}

	c.logger.Info("emoji sweep complete",
		"checked", report.Checked,
		"purged", len(report.Purged),
		"orphans", len(report.Orphans),
		"orphans_deleted", report.OrphansDeleted,
	)
	return report, nil
}

func (c *Cache) inPool(guildID string) bool {
	for _, pg := range c.pool {
		if pg.ID == guildID {
			return true
		}
	}
	return false
}

// Stats describes the cache for the admin command
type Stats struct {
	Guilds   []Guild
	Records  int
	Bindings int
}

// Free returns the total free slots across reachable pool guilds
func (s Stats) Free() int {
	n := 0
	for _, g := range s.Guilds {
		n += g.Free()
	}
	return n
}

// Stats reads the current slot usage and record counts
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	guilds, err := c.Guilds(ctx)
	if err != nil {
		return stats, err
	}
	stats.Guilds = guilds

	err = c.db.WithTx(ctx, func(tx *database.Tx) error {
		var err error
		if stats.Records, err = tx.CountEmojiRecords(ctx); err != nil {
			return err
		}
		stats.Bindings, err = tx.CountUserEmoji(ctx)
		return err
	})
	return stats, err
}
