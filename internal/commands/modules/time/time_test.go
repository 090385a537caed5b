package time

import (
	"context"
	"path/filepath"
	"testing"
	gotime "time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ditto/internal/commands/types"
	"ditto/internal/config"
	"ditto/internal/database"
)

func newTestModule(t *testing.T) *TimeModule {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "time.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return New(&types.Dependencies{Config: config.NewMockConfig(nil), DB: db})
}

func TestUserLocation(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	assert.Equal(t, gotime.UTC, m.userLocation(ctx, nil))
	assert.Equal(t, gotime.UTC, m.userLocation(ctx, &discordgo.User{ID: "1"}), "no stored timezone")

	require.NoError(t, m.db.SetUserTimezone(ctx, "1", "Europe/Berlin"))
	assert.Equal(t, "Europe/Berlin", m.userLocation(ctx, &discordgo.User{ID: "1"}).String())

	require.NoError(t, m.db.SetUserTimezone(ctx, "2", "Not/AZone"))
	assert.Equal(t, gotime.UTC, m.userLocation(ctx, &discordgo.User{ID: "2"}), "invalid stored zone falls back")
}

func TestFullEmbedListsEveryFormat(t *testing.T) {
	parsed := gotime.Unix(1700000000, 0)
	embed := fullEmbed("next tuesday", parsed, gotime.UTC)

	require.Len(t, embed.Fields, 3)
	assert.Contains(t, embed.Fields[1].Value, "next tuesday")
	assert.Contains(t, embed.Fields[1].Value, "UTC")
	for _, f := range formatOrder {
		assert.Contains(t, embed.Fields[2].Value, f.name)
	}
	assert.Contains(t, embed.Fields[2].Value, "<t:1700000000:R>")
}

func TestRegister(t *testing.T) {
	m := newTestModule(t)
	cmds := make(map[string]*types.Command)
	m.Register(cmds, nil)

	require.Contains(t, cmds, "time")
	assert.Len(t, cmds["time"].ApplicationCommand.Options, 2)
}

func TestResolveTime(t *testing.T) {
	berlin, err := gotime.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	now := gotime.Date(2024, 3, 1, 12, 0, 0, 0, gotime.UTC)

	got, err := resolveTime("<t:1700000000:F>", berlin, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), got.Unix())
	assert.Equal(t, berlin, got.Location())

	got, err = resolveTime("2024-03-04 15:30", berlin, now)
	require.NoError(t, err)
	assert.True(t, got.Equal(gotime.Date(2024, 3, 4, 14, 30, 0, 0, gotime.UTC)), "got %s", got)
}
