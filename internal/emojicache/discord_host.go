package emojicache

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Static emoji slots per boost tier
var tierEmojiLimits = map[discordgo.PremiumTier]int{
	discordgo.PremiumTierNone: 50,
	discordgo.PremiumTier1:    100,
	discordgo.PremiumTier2:    150,
	discordgo.PremiumTier3:    250,
}

const moreEmojiLimit = 200

var _ Host = (*DiscordHost)(nil)

// DiscordHost stores cache emoji in real guilds through a discordgo session.
// Slot counts are read over REST rather than from the gateway state, which
// lags behind our own uploads and deletions.
type DiscordHost struct {
	session *discordgo.Session
}

// NewDiscordHost creates a host over s
func NewDiscordHost(s *discordgo.Session) *DiscordHost {
	return &DiscordHost{session: s}
}

func (h *DiscordHost) Emojis(ctx context.Context, guildID string) ([]*discordgo.Emoji, error) {
	return h.session.GuildEmojis(guildID, discordgo.WithContext(ctx))
}

func (h *DiscordHost) EmojiLimit(ctx context.Context, guildID string) (int, error) {
	guild, err := h.session.State.Guild(guildID)
	if err != nil {
		guild, err = h.session.Guild(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return 0, fmt.Errorf("failed to get guild %s: %w", guildID, err)
		}
	}
	return emojiLimit(guild), nil
}

func (h *DiscordHost) CreateEmoji(ctx context.Context, guildID, name string, image []byte) (*discordgo.Emoji, error) {
	return h.session.GuildEmojiCreate(guildID, &discordgo.EmojiParams{
		Name:  name,
		Image: "data:image/png;base64," + base64.StdEncoding.EncodeToString(image),
	}, discordgo.WithContext(ctx))
}

func (h *DiscordHost) Emoji(ctx context.Context, guildID, emojiID string) (*discordgo.Emoji, error) {
	emoji, err := h.session.GuildEmoji(guildID, emojiID, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return emoji, nil
}

func (h *DiscordHost) DeleteEmoji(ctx context.Context, guildID, emojiID string) error {
	err := h.session.GuildEmojiDelete(guildID, emojiID, discordgo.WithContext(ctx))
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func emojiLimit(g *discordgo.Guild) int {
	limit, ok := tierEmojiLimits[g.PremiumTier]
	if !ok {
		limit = tierEmojiLimits[discordgo.PremiumTierNone]
	}
	for _, f := range g.Features {
		if f == "MORE_EMOJI" && limit < moreEmojiLimit {
			limit = moreEmojiLimit
		}
	}
	return limit
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return false
	}
	return restErr.Response.StatusCode == http.StatusNotFound
}
