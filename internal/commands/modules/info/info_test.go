package info

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ditto/internal/commands/types"
	"ditto/internal/config"
)

func fieldValue(t *testing.T, embed *discordgo.MessageEmbed, name string) string {
	t.Helper()
	for _, f := range embed.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	t.Fatalf("embed has no field %q", name)
	return ""
}

func hasField(embed *discordgo.MessageEmbed, name string) bool {
	for _, f := range embed.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func TestCreatedAt(t *testing.T) {
	got, ok := createdAt("175928847299117063")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2016, 4, 30, 11, 18, 25, 796_000_000, time.UTC)), "got %s", got.UTC())

	_, ok = createdAt("not-a-snowflake")
	assert.False(t, ok)
}

func TestObjectEmbedUnknownCreation(t *testing.T) {
	embed := objectEmbed("thing", "abc")
	assert.Equal(t, "Unknown", fieldValue(t, embed, "Created At:"))
	assert.Equal(t, "abc", fieldValue(t, embed, "ID:"))
}

func TestUserEmbed(t *testing.T) {
	u := &discordgo.User{ID: "80088516616269824", Username: "danny", Discriminator: "0"}
	avatarEmoji := &discordgo.Emoji{ID: "555", Name: "danny9824"}
	joined := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	member := &discordgo.Member{User: u, Nick: "Dan", JoinedAt: joined, Roles: []string{"1", "2"}}

	embed := userEmbed(u, member, avatarEmoji, 0x123456)
	assert.Equal(t, "<:danny9824:555> danny", embed.Description)
	assert.Equal(t, 0x123456, embed.Color)
	assert.Equal(t, "No", fieldValue(t, embed, "Is Bot:"))
	assert.Equal(t, "Dan", fieldValue(t, embed, "Nickname:"))
	assert.Equal(t, "<@&1>, <@&2>", fieldValue(t, embed, "Roles:"))
	assert.Contains(t, fieldValue(t, embed, "Joined Server:"), "<t:1577934245:F>")

	plain := userEmbed(u, nil, nil, 0)
	assert.Equal(t, "danny", plain.Description)
	assert.False(t, hasField(plain, "Roles:"))
}

func TestServerEmbed(t *testing.T) {
	g := &discordgo.Guild{
		ID:          "175928847299117063",
		Name:        "Ditto Land",
		OwnerID:     "42",
		MemberCount: 1234,
		Roles: []*discordgo.Role{
			{ID: "r2", Position: 2},
			{ID: "everyone", Position: 0},
			{ID: "r1", Position: 1},
		},
		Emojis: []*discordgo.Emoji{
			{ID: "e1"},
			{ID: "e2", Animated: true},
		},
		Features:                 []discordgo.GuildFeature{"ANIMATED_ICON", "COMMUNITY"},
		PremiumSubscriptionCount: 3,
	}
	channels := []*discordgo.Channel{
		{ID: "c1", Type: discordgo.ChannelTypeGuildCategory},
		{ID: "c2", Type: discordgo.ChannelTypeGuildText},
		{ID: "c3", Type: discordgo.ChannelTypeGuildVoice},
	}

	embed := serverEmbed(g, channels)
	assert.Equal(t, "<@42>", fieldValue(t, embed, "Owner:"))
	assert.Equal(t, "1234", fieldValue(t, embed, "Members:"))
	assert.Equal(t, "<@&r1>, <@&r2>", fieldValue(t, embed, "Roles:"), "@everyone is skipped")
	assert.Equal(t, "2\nStatic: <:_:e1>\nAnimated: <a:_:e2>", fieldValue(t, embed, "Emoji:"))
	assert.Contains(t, fieldValue(t, embed, "Channels:"), "- Text: <#c2>")
	assert.Contains(t, fieldValue(t, embed, "Channels:"), "- Vocal: 1")
	assert.Equal(t, "```\nAnimated Icon Community\n\n```", fieldValue(t, embed, "Features:"))
	assert.Equal(t, "3", fieldValue(t, embed, "Nitro Boosters:"))
}

func TestRoleEmbed(t *testing.T) {
	r := &discordgo.Role{ID: "175928847299117063", Name: "Mods", Color: 0xff0000, Hoist: true, Permissions: 8}

	embed := roleEmbed(r, "Ditto Land", []*discordgo.Member{})
	assert.Equal(t, 0xff0000, embed.Color)
	assert.Equal(t, "#ff0000", fieldValue(t, embed, "Colour:"))
	assert.Equal(t, "Yes", fieldValue(t, embed, "Displayed Separately:"))
	assert.Equal(t, "No", fieldValue(t, embed, "Is Mentionable:"))
	assert.Equal(t, "None", fieldValue(t, embed, "Members:"))
	assert.Contains(t, fieldValue(t, embed, "Permissions:"), "#8)")

	unknown := roleEmbed(&discordgo.Role{ID: "1", Name: "Plain"}, "Ditto Land", nil)
	assert.False(t, hasField(unknown, "Members:"))
	assert.Equal(t, "None", fieldValue(t, unknown, "Colour:"))
}

func TestChannelEmbed(t *testing.T) {
	text := &discordgo.Channel{ID: "1", Name: "general", Type: discordgo.ChannelTypeGuildText, ParentID: "9", RateLimitPerUser: 5}
	embed := channelEmbed(text, "Ditto Land", nil)
	assert.Equal(t, "<#9>", fieldValue(t, embed, "Category"))
	assert.Equal(t, "None Set", fieldValue(t, embed, "Topic"))
	assert.Equal(t, "5 seconds", fieldValue(t, embed, "Slowmode Delay"))
	assert.Equal(t, "No", fieldValue(t, embed, "Is NSFW:"))

	voice := &discordgo.Channel{ID: "2", Name: "vc", Type: discordgo.ChannelTypeGuildVoice, Bitrate: 65536, UserLimit: 4}
	embed = channelEmbed(voice, "Ditto Land", nil)
	assert.Equal(t, "64Kbps", fieldValue(t, embed, "Bitrate"))
	assert.Equal(t, "4", fieldValue(t, embed, "User Limit"))
	assert.False(t, hasField(embed, "Topic"))

	category := &discordgo.Channel{ID: "9", Name: "chat", Type: discordgo.ChannelTypeGuildCategory}
	embed = channelEmbed(category, "Ditto Land", []*discordgo.Channel{text})
	assert.Equal(t, "1\n<#1>", fieldValue(t, embed, "Channels:"))
	assert.False(t, hasField(embed, "Category"))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Vanity Url", titleCase("VANITY_URL"))
	assert.Equal(t, "News", titleCase("NEWS"))
}

func newStateSession(t *testing.T, g *discordgo.Guild) *discordgo.Session {
	t.Helper()
	s := &discordgo.Session{State: discordgo.NewState()}
	require.NoError(t, s.State.GuildAdd(g))
	return s
}

func TestEmojiInfo(t *testing.T) {
	g := &discordgo.Guild{
		ID:   "100",
		Name: "Ditto Land",
		Emojis: []*discordgo.Emoji{
			{ID: "175928847299117063", Name: "blobwave"},
			{ID: "175928847299117064", Name: "party", Animated: true},
		},
	}
	s := newStateSession(t, g)
	m := New(&types.Dependencies{Config: config.NewMockConfig(nil)})
	ctx := context.Background()

	embed, err := m.emojiInfo(ctx, s, "100", "<:blobwave:175928847299117063>")
	require.NoError(t, err)
	assert.Equal(t, "Ditto Land", fieldValue(t, embed, "Server:"))
	assert.Equal(t, "No", fieldValue(t, embed, "Animated:"))

	embed, err = m.emojiInfo(ctx, s, "100", ":Party:")
	require.NoError(t, err)
	assert.Equal(t, "Yes", fieldValue(t, embed, "Animated:"))
	assert.Equal(t, discordgo.EndpointEmojiAnimated("175928847299117064"), embed.Thumbnail.URL)

	embed, err = m.emojiInfo(ctx, s, "100", "<a:elsewhere:175928847299117099>")
	require.NoError(t, err, "emoji from other servers are described from the markup")
	assert.False(t, hasField(embed, "Server:"))

	_, err = m.emojiInfo(ctx, s, "100", "🙂")
	assert.EqualError(t, err, "Cannot retrieve information on Unicode emoji.")

	_, err = m.emojiInfo(ctx, s, "100", "nope")
	assert.EqualError(t, err, "Could not find emoji: nope")
}

func TestServerInfoFromState(t *testing.T) {
	g := &discordgo.Guild{
		ID:       "100",
		Name:     "Ditto Land",
		Channels: []*discordgo.Channel{{ID: "c1", GuildID: "100", Type: discordgo.ChannelTypeGuildText}},
	}
	s := newStateSession(t, g)
	m := New(&types.Dependencies{Config: config.NewMockConfig(nil)})

	embed, err := m.serverInfo(context.Background(), s, "100")
	require.NoError(t, err)
	assert.Equal(t, "Information on Ditto Land:", embed.Author.Name)

	_, err = m.serverInfo(context.Background(), s, "")
	assert.EqualError(t, err, "This command only works in a server.")
}

func TestRegister(t *testing.T) {
	m := New(&types.Dependencies{Config: config.NewMockConfig(nil)})
	cmds := make(map[string]*types.Command)
	m.Register(cmds, nil)

	require.Contains(t, cmds, "info")
	names := []string{}
	for _, opt := range cmds["info"].ApplicationCommand.Options {
		names = append(names, opt.Name)
	}
	assert.Equal(t, []string{"user", "server", "role", "channel", "colour", "emoji"}, names)
}
