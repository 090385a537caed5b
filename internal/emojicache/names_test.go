package emojicache

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestEmojiName(t *testing.T) {
	tests := []struct {
		name string
		user *discordgo.User
		want string
	}{
		{
			name: "legacy discriminator",
			user: &discordgo.User{ID: "80088516616269824", Username: "Danny", Discriminator: "0007"},
			want: "Danny0007",
		},
		{
			name: "pomelo username uses id suffix",
			user: &discordgo.User{ID: "80088516616269824", Username: "danny.dev", Discriminator: "0"},
			want: "dannydev9824",
		},
		{
			name: "invalid characters stripped",
			user: &discordgo.User{ID: "1", Username: "ünï cödé!", Discriminator: "1234"},
			want: "ncd1234",
		},
		{
			name: "too short is padded",
			user: &discordgo.User{ID: "7", Username: "☃", Discriminator: "0"},
			want: "7_",
		},
		{
			name: "long names truncated before suffix",
			user: &discordgo.User{ID: "42", Username: strings.Repeat("a", 40), Discriminator: "9999"},
			want: strings.Repeat("a", 28) + "9999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EmojiName(tt.user)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), maxEmojiName)
			assert.GreaterOrEqual(t, len(got), minEmojiName)
		})
	}
}

func TestParseEmoji(t *testing.T) {
	e := ParseEmoji("<:notfound:123456789>")
	assert.Equal(t, "123456789", e.ID)
	assert.Equal(t, "notfound", e.Name)
	assert.False(t, e.Animated)
	assert.Equal(t, "<:notfound:123456789>", e.MessageFormat())

	e = ParseEmoji("<a:spin:42>")
	assert.True(t, e.Animated)
	assert.Equal(t, "42", e.ID)

	e = ParseEmoji("❓")
	assert.Empty(t, e.ID)
	assert.Equal(t, "❓", e.MessageFormat())
}
