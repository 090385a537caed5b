package emojicache

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Host is the platform that stores emoji for the cache's pool guilds.
type Host interface {
	// Emojis lists the custom emoji currently in guildID
	Emojis(ctx context.Context, guildID string) ([]*discordgo.Emoji, error)

	// EmojiLimit returns how many static emoji guildID may hold
	EmojiLimit(ctx context.Context, guildID string) (int, error)

	// CreateEmoji uploads a PNG as a new emoji in guildID
	CreateEmoji(ctx context.Context, guildID, name string, image []byte) (*discordgo.Emoji, error)

	// Emoji resolves a live emoji. It returns (nil, nil) when the emoji no
	// longer exists.
	Emoji(ctx context.Context, guildID, emojiID string) (*discordgo.Emoji, error)

	// DeleteEmoji removes an emoji. Deleting one that is already gone is not
	// an error.
	DeleteEmoji(ctx context.Context, guildID, emojiID string) error
}

// Guild is the slot accounting for one pool guild
type Guild struct {
	ID       string
	Capacity int
	Used     int
}

// Free returns the number of unused static emoji slots
func (g Guild) Free() int {
	return g.Capacity - g.Used
}

// countStatic counts the emoji that occupy a static slot
func countStatic(emojis []*discordgo.Emoji) int {
	n := 0
	for _, e := range emojis {
		if e != nil && !e.Animated {
			n++
		}
	}
	return n
}
