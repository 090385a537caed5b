package emojicache

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ditto/internal/config"
	"ditto/internal/database"
)

func TestSweepPurgesVanishedAndReportsOrphans(t *testing.T) {
	pool := []config.EmojiGuild{{ID: "A", Capacity: 10}, {ID: "B", Capacity: 10}}
	f := newFixture(t, pool, 0, nil)
	f.seedCached(t, "A", "kept", t0)
	f.seedCached(t, "A", "gone", t0)
	f.seedCached(t, "B", "other", t0)
	f.host.vanish("gone")
	f.host.seed("B", "stray", false)
	f.host.seed("B", "party", true)

	report, err := f.cache.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, []string{"gone"}, report.Purged)
	assert.Equal(t, []Orphan{{GuildID: "B", EmojiID: "stray", Name: "estray"}}, report.Orphans)
	assert.Zero(t, report.OrphansDeleted)
	assert.Empty(t, report.Unreachable)

	assert.Nil(t, f.record(t, "gone"))
	assert.NotNil(t, f.record(t, "kept"))
	assert.True(t, f.host.has("stray"), "orphans are only reported by default")
}

func TestSweepDeletesOrphansWhenEnabled(t *testing.T) {
	f := newFixture(t, []config.EmojiGuild{{ID: "A", Capacity: 10}}, 0, map[string]interface{}{
		"emoji.sweep_orphans": true,
	})
	f.seedCached(t, "A", "kept", t0)
	f.host.seed("A", "stray", false)

	report, err := f.cache.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.OrphansDeleted)
	assert.False(t, f.host.has("stray"))
	assert.True(t, f.host.has("kept"))
}

func TestSweepSkipsUnreachableGuild(t *testing.T) {
	pool := []config.EmojiGuild{{ID: "A", Capacity: 10}, {ID: "B", Capacity: 10}}
	f := newFixture(t, pool, 0, nil)
	f.host.listErr["B"] = errors.New("missing access")

	report, err := f.cache.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, report.Unreachable)
}

func TestStats(t *testing.T) {
	pool := []config.EmojiGuild{{ID: "A", Capacity: 4}, {ID: "B", Capacity: 6}}
	f := newFixture(t, pool, 0, nil)
	f.seedCached(t, "A", "a1", t0)
	f.host.seed("B", "foreign", false)

	stats, err := f.cache.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Records)
	assert.Equal(t, 0, stats.Bindings)
	assert.Equal(t, 8, stats.Free())
	require.Len(t, stats.Guilds, 2)
}

func TestSweepUsesGuildListings(t *testing.T) {
	f := newFixture(t, []config.EmojiGuild{{ID: "A", Capacity: 50}}, 0, nil)
	for i := 0; i < 20; i++ {
		f.seedCached(t, "A", fmt.Sprintf("e%d", i), t0)
	}
	f.host.vanish("e7")

	report, err := f.cache.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, report.Checked)
	assert.Equal(t, []string{"e7"}, report.Purged)
	assert.Zero(t, f.host.lookups, "pool guild records are checked against the listing")
}

func TestSweepResolvesRecordsOutsideThePool(t *testing.T) {
	f := newFixture(t, []config.EmojiGuild{{ID: "A", Capacity: 10}}, 0, nil)
	f.host.addGuild("retired", 10)
	f.seedCached(t, "retired", "still-there", t0)
	f.seedCached(t, "retired", "gone", t0)
	f.host.vanish("gone")

	report, err := f.cache.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, []string{"gone"}, report.Purged)
	assert.Equal(t, 2, f.host.lookups)
}

func TestSweepLeavesStoreWritableWhileListing(t *testing.T) {
	f := newFixture(t, []config.EmojiGuild{{ID: "A", Capacity: 10}}, 0, map[string]interface{}{
		"emoji.sweep_orphans": true,
	})
	ctx := context.Background()

	// An upload lands while the sweep is listing guilds
	f.host.onList = func(guildID string) {
		f.host.seed(guildID, "late", false)
		err := f.db.WithTx(ctx, func(tx *database.Tx) error {
			return tx.InsertEmojiRecord(ctx, "late", guildID, t0)
		})
		assert.NoError(t, err)
	}

	report, err := f.cache.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Orphans, "an emoji recorded mid-sweep is not an orphan")
	assert.Zero(t, report.OrphansDeleted)
	assert.True(t, f.host.has("late"))
	assert.NotNil(t, f.record(t, "late"))
}
