package config

import (
	"fmt"
)

// EmojiGuild is one guild of the emoji cache pool. A zero Capacity means the
// limit is derived from the guild's boost tier at runtime.
type EmojiGuild struct {
	ID       string `mapstructure:"id"`
	Capacity int    `mapstructure:"capacity"`
}

func (c *Config) GetBotToken() string {
	return c.v.GetString("bot_token")
}

func (c *Config) GetDatabasePath() string {
	return c.v.GetString("database_path")
}

func (c *Config) GetLogDir() string {
	return c.v.GetString("log_dir")
}

// GetLogChannelID returns the channel that receives bot log embeds (sweep reports etc.)
func (c *Config) GetLogChannelID() string {
	return c.v.GetString("log_channel_id")
}

func (c *Config) GetSuperAdmins() []string {
	superAdmins := c.v.GetStringSlice("super_admins")
	if len(superAdmins) == 0 {
		return nil
	}
	return superAdmins
}

// Emoji cache
// -----

// GetEmojiGuilds returns the configured emoji cache pool
func (c *Config) GetEmojiGuilds() ([]EmojiGuild, error) {
	var guilds []EmojiGuild
	if err := c.v.UnmarshalKey("emoji.guilds", &guilds); err != nil {
		return nil, fmt.Errorf("invalid emoji.guilds: %w", err)
	}

	seen := make(map[string]struct{}, len(guilds))
	for _, g := range guilds {
		if g.ID == "" {
			return nil, fmt.Errorf("invalid emoji.guilds: entry without id")
		}
		if g.Capacity < 0 {
			return nil, fmt.Errorf("invalid emoji.guilds: negative capacity for %s", g.ID)
		}
		if _, dup := seen[g.ID]; dup {
			return nil, fmt.Errorf("invalid emoji.guilds: duplicate guild %s", g.ID)
		}
		seen[g.ID] = struct{}{}
	}
	return guilds, nil
}

// GetEmojiLeaveFree returns how many slots each pool guild keeps in reserve
func (c *Config) GetEmojiLeaveFree() int {
	return c.v.GetInt("emoji.leave_free")
}

// GetEmojiNotFound returns the emoji shown when no avatar emoji can be resolved
func (c *Config) GetEmojiNotFound() string {
	return c.v.GetString("emoji.not_found")
}

func (c *Config) GetEmojiSweepOrphans() bool {
	return c.v.GetBool("emoji.sweep_orphans")
}

func (c *Config) GetEmojiSweepSchedule() string {
	return c.v.GetString("emoji.sweep_schedule")
}

// GetEmojiCreateRatePerMinute bounds how fast new emoji are uploaded (default 10)
func (c *Config) GetEmojiCreateRatePerMinute() int {
	rate := c.v.GetInt("emoji.create_rate_per_minute")
	if rate <= 0 {
		return 10
	}
	return rate
}

func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
	if err := c.v.WriteConfig(); err != nil {
		c.Logger.Warnf("failed to write config for key %s: %v", key, err)
	}
}

// GetString returns the string value for a given config key
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}
