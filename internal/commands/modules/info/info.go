package info

import (
	"bytes"
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"ditto/internal/avatar"
	"ditto/internal/commands/types"
	"ditto/internal/config"
	"ditto/internal/emojicache"
	"ditto/internal/utils"
)

var emojiIDPattern = regexp.MustCompile(`^\d{15,21}$`)

// problem is an error whose text is shown to the user as-is
type problem string

func (p problem) Error() string { return string(p) }

// Module implements the CommandModule interface for the info command
type Module struct {
	config     *config.Config
	emojiCache *emojicache.Cache
	httpClient *http.Client
}

// New creates a new info module
func New(deps *types.Dependencies) *Module {
	return &Module{
		config:     deps.Config,
		emojiCache: deps.EmojiCache,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func privateOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "private",
		Description: "Whether to invoke this command privately",
	}
}

// Register adds the info command to the command map
func (m *Module) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	guildOnly := &[]discordgo.InteractionContextType{discordgo.InteractionContextGuild}

	cmds["info"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "info",
			Description: "Get information on something",
			Contexts:    guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "user",
					Description: "Get information on a user",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to get information on, defaults to you",
						},
						privateOption(),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "server",
					Description: "Get information on the current server",
					Options:     []*discordgo.ApplicationCommandOption{privateOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "role",
					Description: "Get information on a role",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "The role to get information on",
							Required:    true,
						},
						privateOption(),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "channel",
					Description: "Get information on a channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "channel",
							Description: "The channel to get information on",
							Required:    true,
						},
						privateOption(),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "colour",
					Description: "Get information on a colour",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "value",
							Description: "A hex code, rgb(r, g, b) or a colour name",
							Required:    true,
						},
						privateOption(),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "emoji",
					Description: "Get information on a custom emoji",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "emoji",
							Description: "The emoji itself, its ID, or its name in this server",
							Required:    true,
						},
						privateOption(),
					},
				},
			},
		},
		HandlerFunc: m.handleInfo,
	}
}

func (m *Module) handleInfo(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		_ = utils.RespondError(s, i, "No subcommand provided.")
		return
	}

	sub := options[0]
	opts := utils.OptionMap(sub.Options)
	private := false
	if opt, ok := opts["private"]; ok {
		private = opt.BoolValue()
	}

	// Lookups can hit REST and the emoji cache, so always defer
	_ = utils.Defer(s, i, private)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sub.Name == "colour" {
		m.handleColour(s, i, opts["value"].StringValue())
		return
	}

	var (
		embed *discordgo.MessageEmbed
		err   error
	)
	switch sub.Name {
	case "user":
		embed, err = m.userInfo(ctx, s, i, opts)
	case "server":
		embed, err = m.serverInfo(ctx, s, i.GuildID)
	case "role":
		embed, err = m.roleInfo(ctx, s, i.GuildID, opts["role"].RoleValue(s, i.GuildID))
	case "channel":
		embed, err = m.channelInfo(ctx, s, opts["channel"].ChannelValue(s))
	case "emoji":
		embed, err = m.emojiInfo(ctx, s, i.GuildID, opts["emoji"].StringValue())
	default:
		err = problem("Unknown subcommand.")
	}

	if err != nil {
		_ = utils.EditEmbed(s, i, utils.CommandErrorEmbed(i, err.Error()))
		return
	}
	_ = utils.EditEmbed(s, i, embed)
}

// handleColour answers with the colour's embed and a swatch attachment
func (m *Module) handleColour(s *discordgo.Session, i *discordgo.InteractionCreate, value string) {
	embed, file, err := m.colourInfo(value)
	if err != nil {
		_ = utils.EditEmbed(s, i, utils.CommandErrorEmbed(i, err.Error()))
		return
	}

	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
		Files:  []*discordgo.File{file},
	})
	if err != nil {
		m.config.Logger.Errorf("Error sending colour info: %v", err)
	}
}

func (m *Module) colourInfo(value string) (*discordgo.MessageEmbed, *discordgo.File, error) {
	c, err := parseColour(value)
	if err != nil {
		return nil, nil, err
	}
	swatch, err := colourSwatch(c)
	if err != nil {
		m.config.Logger.Errorf("Error rendering swatch for %s: %v", hexString(c), err)
		return nil, nil, problem("Could not render that colour.")
	}
	file := &discordgo.File{
		Name:        swatchFilename(c),
		ContentType: "image/png",
		Reader:      bytes.NewReader(swatch),
	}
	return colourEmbed(c), file, nil
}

func (m *Module) userInfo(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) (*discordgo.MessageEmbed, error) {
	user := utils.InvokingUser(i)
	if opt, ok := opts["user"]; ok {
		user = opt.UserValue(s)
	}
	if user == nil {
		return nil, problem("You did not specify a user.")
	}

	var member *discordgo.Member
	if i.GuildID != "" {
		if mem, err := s.State.Member(i.GuildID, user.ID); err == nil {
			member = mem
		} else if mem, err := s.GuildMember(i.GuildID, user.ID, discordgo.WithContext(ctx)); err == nil {
			member = mem
		}
		if member != nil && member.User != nil {
			user = member.User
		}
	}

	var avatarEmoji *discordgo.Emoji
	if m.emojiCache != nil {
		e, err := m.emojiCache.FetchUserEmoji(ctx, user)
		if err != nil {
			m.config.Logger.Warn("could not fetch avatar emoji", "user", user.ID, "err", err)
		} else if e != nil && e.ID != "" {
			avatarEmoji = e
		}
	}

	return userEmbed(user, member, avatarEmoji, m.avatarColour(ctx, user)), nil
}

// avatarColour returns the dominant colour of the user's avatar, or 0
func (m *Module) avatarColour(ctx context.Context, u *discordgo.User) int {
	img, err := avatar.Download(ctx, m.httpClient, avatar.URL(u, 64))
	if err != nil {
		m.config.Logger.Debug("could not download avatar", "user", u.ID, "err", err)
		return 0
	}
	return avatar.DominantColour(img)
}

func (m *Module) guild(ctx context.Context, s *discordgo.Session, guildID string) (*discordgo.Guild, error) {
	if guildID == "" {
		return nil, problem("This command only works in a server.")
	}
	if g, err := s.State.Guild(guildID); err == nil {
		return g, nil
	}
	g, err := s.GuildWithCounts(guildID, discordgo.WithContext(ctx))
	if err != nil {
		m.config.Logger.Errorf("Error fetching guild %s: %v", guildID, err)
		return nil, problem("Could not load this server.")
	}
	return g, nil
}

func (m *Module) guildChannels(ctx context.Context, s *discordgo.Session, g *discordgo.Guild) []*discordgo.Channel {
	if len(g.Channels) > 0 {
		return g.Channels
	}
	channels, err := s.GuildChannels(g.ID, discordgo.WithContext(ctx))
	if err != nil {
		m.config.Logger.Warnf("Error fetching channels for %s: %v", g.ID, err)
		return nil
	}
	return channels
}

func (m *Module) serverInfo(ctx context.Context, s *discordgo.Session, guildID string) (*discordgo.MessageEmbed, error) {
	g, err := m.guild(ctx, s, guildID)
	if err != nil {
		return nil, err
	}
	return serverEmbed(g, m.guildChannels(ctx, s, g)), nil
}

func (m *Module) roleInfo(ctx context.Context, s *discordgo.Session, guildID string, role *discordgo.Role) (*discordgo.MessageEmbed, error) {
	if role == nil {
		return nil, problem("Could not find that role.")
	}
	g, err := m.guild(ctx, s, guildID)
	if err != nil {
		return nil, err
	}

	// Listing members needs the privileged members intent; leave the field
	// out if it is not granted.
	var holders []*discordgo.Member
	if members, err := utils.GetAllGuildMembers(s, guildID, discordgo.WithContext(ctx)); err == nil {
		holders = utils.MembersWithRole(members, role.ID)
		if holders == nil {
			holders = []*discordgo.Member{}
		}
	} else {
		m.config.Logger.Debug("could not list members for role info", "guild", guildID, "err", err)
	}

	return roleEmbed(role, g.Name, holders), nil
}

func (m *Module) channelInfo(ctx context.Context, s *discordgo.Session, channel *discordgo.Channel) (*discordgo.MessageEmbed, error) {
	if channel == nil {
		return nil, problem("Could not find that channel.")
	}
	g, err := m.guild(ctx, s, channel.GuildID)
	if err != nil {
		return nil, err
	}

	var children []*discordgo.Channel
	if channel.Type == discordgo.ChannelTypeGuildCategory {
		for _, c := range m.guildChannels(ctx, s, g) {
			if c.ParentID == channel.ID {
				children = append(children, c)
			}
		}
	}
	return channelEmbed(channel, g.Name, children), nil
}

func (m *Module) emojiInfo(ctx context.Context, s *discordgo.Session, guildID, value string) (*discordgo.MessageEmbed, error) {
	value = strings.TrimSpace(value)
	parsed := emojicache.ParseEmoji(value)

	var emojiID string
	switch {
	case parsed.ID != "":
		emojiID = parsed.ID
	case emojiIDPattern.MatchString(value):
		emojiID = value
	}

	g, _ := m.guild(ctx, s, guildID)
	if g != nil {
		emojis := g.Emojis
		if len(emojis) == 0 {
			emojis, _ = s.GuildEmojis(guildID, discordgo.WithContext(ctx))
		}
		for _, e := range emojis {
			if (emojiID != "" && e.ID == emojiID) || (emojiID == "" && strings.EqualFold(e.Name, strings.Trim(value, ":"))) {
				return emojiEmbed(e, g.Name), nil
			}
		}
	}

	// Emoji from other servers can still be described from the markup alone
	if parsed.ID != "" {
		return emojiEmbed(parsed, ""), nil
	}
	if emojiID != "" {
		return emojiEmbed(&discordgo.Emoji{ID: emojiID, Name: "_"}, ""), nil
	}
	if value != "" && !strings.ContainsAny(value, ":<>") && !isWord(value) {
		return nil, problem("Cannot retrieve information on Unicode emoji.")
	}
	return nil, problem("Could not find emoji: " + value)
}

func isWord(s string) bool {
	for _, r := range s {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// Service returns nil as this module has no services requiring initialization
func (m *Module) Service() types.ModuleService {
	return nil
}
