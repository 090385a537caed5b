package info

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"ditto/internal/utils"
)

// createdAt decodes the creation time embedded in a Discord ID
func createdAt(id string) (time.Time, bool) {
	sf, err := snowflake.Parse(id)
	if err != nil || sf == 0 {
		return time.Time{}, false
	}
	return sf.Time(), true
}

func readableTimestamp(t time.Time) string {
	return fmt.Sprintf("%s (%s)", utils.DiscordTimestamp(t, "F"), utils.DiscordTimestamp(t, "R"))
}

// objectEmbed starts every info embed with the object's ID and creation time
func objectEmbed(name, id string) *discordgo.MessageEmbed {
	embed := utils.NewEmbed()
	embed.Author = &discordgo.MessageEmbedAuthor{Name: fmt.Sprintf("Information on %s:", name)}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "ID:", Value: id})

	created := "Unknown"
	if t, ok := createdAt(id); ok {
		created = readableTimestamp(t)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Created At:", Value: created})
	return embed
}

func addField(embed *discordgo.MessageEmbed, name, value string, inline bool) {
	if value == "" {
		value = utils.ZWSP
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline})
}

func roleMention(id string) string    { return "<@&" + id + ">" }
func channelMention(id string) string { return "<#" + id + ">" }
func memberMention(m *discordgo.Member) string {
	return m.User.Mention()
}

func emojiMarkup(e *discordgo.Emoji) string {
	if e.Animated {
		return fmt.Sprintf("<a:_:%s>", e.ID)
	}
	return fmt.Sprintf("<:_:%s>", e.ID)
}

func emojiURL(e *discordgo.Emoji) string {
	if e.Animated {
		return discordgo.EndpointEmojiAnimated(e.ID)
	}
	return discordgo.EndpointEmoji(e.ID)
}

// userEmbed describes a user, and their membership when member is not nil.
// avatarEmoji is the user's cached avatar emoji, if one could be fetched.
func userEmbed(u *discordgo.User, member *discordgo.Member, avatarEmoji *discordgo.Emoji, colour int) *discordgo.MessageEmbed {
	name := u.Username
	if avatarEmoji != nil {
		name = avatarEmoji.MessageFormat() + " " + name
	}

	embed := objectEmbed(u.String(), u.ID)
	embed.Description = name
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: u.AvatarURL("256")}
	if colour != 0 {
		embed.Color = colour
	}
	addField(embed, "Is Bot:", utils.YesNo(u.Bot), true)

	if member == nil {
		return embed
	}

	if !member.JoinedAt.IsZero() {
		addField(embed, "Joined Server:", readableTimestamp(member.JoinedAt), false)
	}
	if member.Nick != "" {
		addField(embed, "Nickname:", member.Nick, true)
	}
	if member.PremiumSince != nil {
		addField(embed, "Nitro Boosting Since:", readableTimestamp(*member.PremiumSince), false)
	}
	addField(embed, "Roles:", utils.SummariseList(member.Roles, roleMention, 5, false), false)
	return embed
}

// serverEmbed describes a guild. channels may come from the state or REST.
func serverEmbed(g *discordgo.Guild, channels []*discordgo.Channel) *discordgo.MessageEmbed {
	embed := objectEmbed(g.Name, g.ID)
	if icon := g.IconURL("256"); icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: icon}
	}

	if g.OwnerID != "" {
		addField(embed, "Owner:", "<@"+g.OwnerID+">", true)
	}

	members := g.MemberCount
	if members == 0 {
		members = g.ApproximateMemberCount
	}
	addField(embed, "Members:", fmt.Sprint(members), true)

	var categories, text, voice, stage []*discordgo.Channel
	for _, c := range channels {
		switch c.Type {
		case discordgo.ChannelTypeGuildCategory:
			categories = append(categories, c)
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews, discordgo.ChannelTypeGuildForum:
			text = append(text, c)
		case discordgo.ChannelTypeGuildVoice:
			voice = append(voice, c)
		case discordgo.ChannelTypeGuildStageVoice:
			stage = append(stage, c)
		}
	}
	mention := func(c *discordgo.Channel) string { return channelMention(c.ID) }
	addField(embed, "Channels:", fmt.Sprintf(
		"%d\n- Categories: %s\n- Text: %s\n- Vocal: %d\n  - Voice: %s\n  - Stage: %s",
		len(channels),
		utils.SummariseList(categories, mention, 4, false),
		utils.SummariseList(text, mention, 4, false),
		len(voice)+len(stage),
		utils.SummariseList(voice, mention, 4, false),
		utils.SummariseList(stage, mention, 4, false),
	), false)

	roles := append([]*discordgo.Role(nil), g.Roles...)
	sort.SliceStable(roles, func(a, b int) bool { return roles[a].Position < roles[b].Position })
	addField(embed, "Roles:", utils.SummariseList(roles, func(r *discordgo.Role) string { return roleMention(r.ID) }, 5, true), false)

	var static, animated []*discordgo.Emoji
	for _, e := range g.Emojis {
		if e.Animated {
			animated = append(animated, e)
		} else {
			static = append(static, e)
		}
	}
	addField(embed, "Emoji:", fmt.Sprintf("%d\nStatic: %s\nAnimated: %s",
		len(g.Emojis),
		utils.SummariseList(static, emojiMarkup, 4, false),
		utils.SummariseList(animated, emojiMarkup, 4, false),
	), false)

	addField(embed, "Nitro Boosters:", fmt.Sprint(g.PremiumSubscriptionCount), true)

	if len(g.Features) > 0 {
		features := make([]string, 0, len(g.Features))
		for _, f := range g.Features {
			features = append(features, titleCase(string(f)))
		}
		sort.Strings(features)
		addField(embed, "Features:", utils.Codeblock(utils.AsColumns(features, 2), ""), false)
	}
	return embed
}

// roleEmbed describes a role. members is nil when the member list could not
// be read.
func roleEmbed(r *discordgo.Role, guildName string, members []*discordgo.Member) *discordgo.MessageEmbed {
	embed := objectEmbed(r.Name, r.ID)
	addField(embed, "Server:", guildName, true)
	if r.Color != 0 {
		embed.Color = r.Color
	}

	addField(embed, "Permissions:", fmt.Sprintf("[Permissions list](https://discordapi.com/permissions.html#%d)", r.Permissions), true)
	addField(embed, "Displayed Separately:", utils.YesNo(r.Hoist), true)
	addField(embed, "Is Mentionable:", utils.YesNo(r.Mentionable), true)

	colour := "None"
	if r.Color != 0 {
		colour = fmt.Sprintf("#%06x", r.Color)
	}
	addField(embed, "Colour:", colour, true)

	if members != nil {
		addField(embed, "Members:", utils.SummariseList(members, memberMention, 10, false), false)
	}
	return embed
}

// channelEmbed describes a guild channel. children lists the channels in a
// category and is ignored for other types.
func channelEmbed(c *discordgo.Channel, guildName string, children []*discordgo.Channel) *discordgo.MessageEmbed {
	embed := objectEmbed("#"+c.Name, c.ID)
	addField(embed, "Server:", guildName, true)

	if !c.IsThread() {
		addField(embed, "Position", fmt.Sprint(c.Position), true)
	}
	if c.Type != discordgo.ChannelTypeGuildCategory {
		category := "None"
		if c.ParentID != "" {
			category = channelMention(c.ParentID)
		}
		addField(embed, "Category", category, true)
	}

	switch c.Type {
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		addField(embed, "Bitrate", fmt.Sprintf("%dKbps", c.Bitrate/1024), true)
		addField(embed, "User Limit", fmt.Sprint(c.UserLimit), true)
	case discordgo.ChannelTypeGuildCategory:
		mention := func(ch *discordgo.Channel) string { return channelMention(ch.ID) }
		addField(embed, "Channels:", fmt.Sprintf("%d\n%s", len(children), utils.SummariseList(children, mention, 10, false)), false)
	default:
		addField(embed, "Is NSFW:", utils.YesNo(c.NSFW), true)
	}

	switch c.Type {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews, discordgo.ChannelTypeGuildForum:
		topic := c.Topic
		if topic == "" {
			topic = "None Set"
		}
		addField(embed, "Topic", topic, false)

		slowmode := "Disabled"
		if c.RateLimitPerUser > 0 {
			slowmode = fmt.Sprintf("%d seconds", c.RateLimitPerUser)
		}
		addField(embed, "Slowmode Delay", slowmode, true)
	}
	return embed
}

// emojiEmbed describes a custom emoji. guildName is empty when the emoji is
// not from a guild the bot can see.
func emojiEmbed(e *discordgo.Emoji, guildName string) *discordgo.MessageEmbed {
	embed := objectEmbed(":"+e.Name+":", e.ID)
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: emojiURL(e)}
	if guildName != "" {
		addField(embed, "Server:", guildName, true)
	}
	addField(embed, "Animated:", utils.YesNo(e.Animated), true)
	return embed
}

// titleCase turns a guild feature like ANIMATED_ICON into "Animated Icon"
func titleCase(feature string) string {
	words := strings.Split(strings.ToLower(feature), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
