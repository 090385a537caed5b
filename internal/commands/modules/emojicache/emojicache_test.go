package emojicache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ditto/internal/commands/types"
	"ditto/internal/config"
	"ditto/internal/database"
	"ditto/internal/emojicache"
	"ditto/internal/utils"
)

func TestStatsEmbed(t *testing.T) {
	embed := statsEmbed(emojicache.Stats{
		Guilds: []emojicache.Guild{
			{ID: "A", Capacity: 50, Used: 48},
			{ID: "B", Capacity: 100, Used: 10},
		},
		Records:  55,
		Bindings: 40,
	})

	assert.Contains(t, embed.Description, "**Cached emoji:** 55")
	assert.Contains(t, embed.Description, "**Users with an avatar emoji:** 40")
	assert.Contains(t, embed.Description, "**Free slots:** 92")
	require.Len(t, embed.Fields, 1)
	assert.Contains(t, embed.Fields[0].Value, "A  48/50 used, 2 free")
	assert.Contains(t, embed.Fields[0].Value, "B  10/100 used, 90 free")

	empty := statsEmbed(emojicache.Stats{})
	assert.Contains(t, empty.Description, "No pool guild is reachable.")
}

func TestFormatSweepReport(t *testing.T) {
	got := FormatSweepReport(emojicache.SweepReport{
		Checked:     4,
		Purged:      []string{"1"},
		Orphans:     []emojicache.Orphan{{GuildID: "A", EmojiID: "9", Name: "stray"}},
		Unreachable: []string{"B"},
	})

	assert.Contains(t, got, "**Records checked:** 4")
	assert.Contains(t, got, "**Records purged:** 1")
	assert.Contains(t, got, "**Orphans deleted:** 0")
	assert.Contains(t, got, "`stray` (9) in A")
	assert.Contains(t, got, "**Unreachable guilds:** B")

	quiet := FormatSweepReport(emojicache.SweepReport{Checked: 2})
	assert.NotContains(t, quiet, "Orphans:**\n")
	assert.False(t, noteworthy(emojicache.SweepReport{Checked: 2}))
}

func TestErrorEmbed(t *testing.T) {
	tests := []struct {
		err   error
		title string
	}{
		{emojicache.ErrNotCached, "❌ Not cached"},
		{emojicache.ErrDesynced, "❌ Desynced"},
		{emojicache.ErrInconsistent, "❌ Pool full"},
		{emojicache.ErrNoPool, "❌ No pool"},
		{&emojicache.PartialError{GuildID: "A", EmojiID: "7", Err: errors.New("disk full")}, "❌ Partially created"},
		{errors.New("boom"), "❌ Emoji cache error"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.title, errorEmbed(tt.err).Title, tt.err.Error())
	}
}

func newTestModule(t *testing.T) *Module {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "ec.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.NewMockConfig(map[string]interface{}{"emoji.sweep_schedule": "@every 30m"})
	cache, err := emojicache.New(cfg, db, nil)
	require.NoError(t, err)

	return New(&types.Dependencies{Config: cfg, DB: db, EmojiCache: cache})
}

func TestScheduledFuncs(t *testing.T) {
	m := newTestModule(t)

	jobs := m.Service().ScheduledFuncs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "emoji-sweep", jobs[0].Name)
	assert.Equal(t, "@every 30m", jobs[0].Schedule)
	assert.NoError(t, jobs[0].Fn(), "sweeping an empty cache succeeds")
}

func TestDeleteUnknownEmoji(t *testing.T) {
	m := newTestModule(t)

	embed := m.delete(context.Background(), "<:ghost:12345>")
	assert.Equal(t, "❌ Not cached", embed.Title)
}

func TestSweepCommand(t *testing.T) {
	m := newTestModule(t)

	embed := m.sweep(context.Background())
	assert.Equal(t, "Sweep complete", embed.Title)
	assert.Contains(t, embed.Description, "**Records checked:** 0")
}

func TestSweepEmbedWarnsOnLooseEnds(t *testing.T) {
	clean := sweepEmbed(emojicache.SweepReport{Checked: 3, Purged: []string{"1"}})
	assert.Equal(t, "Sweep complete", clean.Title)
	assert.Equal(t, utils.Colors.Ok(), clean.Color)

	orphans := sweepEmbed(emojicache.SweepReport{Orphans: []emojicache.Orphan{{GuildID: "A", EmojiID: "9"}}})
	assert.Equal(t, utils.Colors.Warning(), orphans.Color)

	unreachable := sweepEmbed(emojicache.SweepReport{Unreachable: []string{"B"}})
	assert.Equal(t, utils.Colors.Warning(), unreachable.Color)
}

func TestCanUse(t *testing.T) {
	cfg := config.NewMockConfig(map[string]interface{}{"super_admins": []string{"42"}})
	m := New(&types.Dependencies{Config: cfg})

	member := func(id string, perms int64) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{User: &discordgo.User{ID: id}, Permissions: perms},
		}}
	}
	super := member("42", 0)
	admin := member("7", discordgo.PermissionAdministrator)
	regular := member("8", discordgo.PermissionSendMessages)

	for _, sub := range []string{"stats", "avatar", "delete", "sweep"} {
		assert.True(t, m.canUse(super, sub), sub)
		assert.False(t, m.canUse(regular, sub), sub)
	}
	assert.True(t, m.canUse(admin, "stats"))
	assert.True(t, m.canUse(admin, "avatar"))
	assert.False(t, m.canUse(admin, "delete"))
	assert.False(t, m.canUse(admin, "sweep"))

	assert.False(t, m.canUse(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}, "stats"))
}
