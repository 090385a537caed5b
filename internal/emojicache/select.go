package emojicache

import (
	"context"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"ditto/internal/config"
)

const guildListConcurrency = 4

// selectGuild picks the pool guild that receives the next upload.
//
// Guilds with more than leaveFree free slots are eligible, and one is drawn
// at random weighted by its free slots. When none is eligible the least
// recently fetched emoji is evicted and the pool re-read. The loop runs at
// most once per record that existed on entry.
func (c *Cache) selectGuild(ctx context.Context, tx *cacheTx) (Guild, error) {
	if len(c.pool) == 0 {
		return Guild{}, ErrNoPool
	}

	records, err := tx.CountEmojiRecords(ctx)
	if err != nil {
		return Guild{}, err
	}

	for evictions := 0; ; evictions++ {
		guilds, err := c.Guilds(ctx)
		if err != nil {
			return Guild{}, err
		}

		eligible := make([]Guild, 0, len(guilds))
		for _, g := range guilds {
			if g.Free() > c.leaveFree {
				eligible = append(eligible, g)
			}
		}

		if len(eligible) > 0 {
			c.rngMu.Lock()
			g := weightedPick(c.rng, eligible)
			c.rngMu.Unlock()
			return g, nil
		}

		if evictions >= records {
			return Guild{}, fmt.Errorf("%w: pool still full after %d evictions", ErrInconsistent, evictions)
		}

		oldest, err := tx.OldestEmojiRecord(ctx)
		if err != nil {
			return Guild{}, err
		}
		if oldest == nil {
			return Guild{}, ErrInconsistent
		}

		c.logger.Info("emoji pool full, evicting least recently used", "emoji", oldest.EmojiID, "guild", oldest.GuildID)
		if err := c.evict(ctx, tx, *oldest); err != nil {
			return Guild{}, err
		}
	}
}

// Guilds reads the live slot accounting of every reachable pool guild, in
// pool order. Unreachable guilds are skipped; it fails only when none can be
// read.
func (c *Cache) Guilds(ctx context.Context) ([]Guild, error) {
	results := make([]*Guild, len(c.pool))
	errs := make([]error, len(c.pool))

	var g errgroup.Group
	g.SetLimit(guildListConcurrency)
	for i, pg := range c.pool {
		g.Go(func() error {
			guild, err := c.readGuild(ctx, pg)
			if err != nil {
				c.logger.Warn("skipping unreachable pool guild", "guild", pg.ID, "err", err)
				errs[i] = err
				return nil
			}
			results[i] = &guild
			return nil
		})
	}
	_ = g.Wait()

	guilds := make([]Guild, 0, len(c.pool))
	var lastErr error
	for i, guild := range results {
		if guild == nil {
			lastErr = errs[i]
			continue
		}
		guilds = append(guilds, *guild)
	}

	if len(guilds) == 0 && lastErr != nil {
		return nil, fmt.Errorf("no emoji pool guild is reachable: %w", lastErr)
	}
	return guilds, nil
}

func (c *Cache) readGuild(ctx context.Context, pg config.EmojiGuild) (Guild, error) {
	emojis, err := c.host.Emojis(ctx, pg.ID)
	if err != nil {
		return Guild{}, err
	}

	capacity := pg.Capacity
	if capacity == 0 {
		capacity, err = c.host.EmojiLimit(ctx, pg.ID)
		if err != nil {
			return Guild{}, fmt.Errorf("unknown emoji limit: %w", err)
		}
	}

	return Guild{ID: pg.ID, Capacity: capacity, Used: countStatic(emojis)}, nil
}

// weightedPick draws one guild with probability proportional to its free
// slots. Every guild passed in must have at least one free slot.
func weightedPick(rng *rand.Rand, guilds []Guild) Guild {
	total := 0
	for _, g := range guilds {
		total += g.Free()
	}

	n := rng.IntN(total)
	for _, g := range guilds {
		n -= g.Free()
		if n < 0 {
			return g
		}
	}
	return guilds[len(guilds)-1]
}
