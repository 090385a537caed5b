package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cfg := NewMockConfig(map[string]interface{}{})
	require.Error(t, cfg.Validate(), "missing bot token should fail")

	cfg = NewMockConfig(map[string]interface{}{"bot_token": "test_token"})
	require.NoError(t, cfg.Validate())

	cfg = NewMockConfig(map[string]interface{}{
		"bot_token":        "test_token",
		"emoji.leave_free": -1,
	})
	require.Error(t, cfg.Validate())
}

func TestEmojiDefaults(t *testing.T) {
	cfg := NewMockConfig(map[string]interface{}{})

	assert.Equal(t, 1, cfg.GetEmojiLeaveFree())
	assert.Equal(t, "❓", cfg.GetEmojiNotFound())
	assert.False(t, cfg.GetEmojiSweepOrphans())
	assert.Equal(t, 10, cfg.GetEmojiCreateRatePerMinute())
	assert.Equal(t, "@hourly", cfg.GetEmojiSweepSchedule())

	guilds, err := cfg.GetEmojiGuilds()
	require.NoError(t, err)
	assert.Empty(t, guilds)
}

func TestGetEmojiGuilds(t *testing.T) {
	cfg := NewMockConfig(map[string]interface{}{
		"emoji.guilds": []map[string]interface{}{
			{"id": "111", "capacity": 50},
			{"id": "222"},
		},
	})

	guilds, err := cfg.GetEmojiGuilds()
	require.NoError(t, err)
	require.Len(t, guilds, 2)
	assert.Equal(t, EmojiGuild{ID: "111", Capacity: 50}, guilds[0])
	assert.Equal(t, EmojiGuild{ID: "222", Capacity: 0}, guilds[1])
}

func TestGetEmojiGuildsRejectsDuplicates(t *testing.T) {
	cfg := NewMockConfig(map[string]interface{}{
		"emoji.guilds": []map[string]interface{}{
			{"id": "111"},
			{"id": "111"},
		},
	})

	_, err := cfg.GetEmojiGuilds()
	require.Error(t, err)
}
