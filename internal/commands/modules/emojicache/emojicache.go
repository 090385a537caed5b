package emojicache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/bwmarrin/discordgo"

	"ditto/internal/commands/types"
	"ditto/internal/config"
	"ditto/internal/emojicache"
	"ditto/internal/utils"
)

// Module implements the CommandModule interface for the emojicache admin command
type Module struct {
	config  *config.Config
	cache   *emojicache.Cache
	service *Service
}

// New creates a new emojicache module
func New(deps *types.Dependencies) *Module {
	return &Module{
		config:  deps.Config,
		cache:   deps.EmojiCache,
		service: NewService(deps.Config, deps.EmojiCache),
	}
}

// Register adds the emojicache command to the command map
func (m *Module) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	var adminPerms int64 = discordgo.PermissionAdministrator

	cmds["emojicache"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:                     "emojicache",
			Description:              "Manage the avatar emoji cache",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stats",
					Description: "Show slot usage across the emoji pool",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "avatar",
					Description: "Fetch (or create) a user's avatar emoji",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user whose avatar emoji to show",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "delete",
					Description: "Delete a cached emoji",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "emoji",
							Description: "The emoji or its ID",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "sweep",
					Description: "Reconcile cache records with the pool guilds now",
				},
			},
		},
		HandlerFunc: m.handleEmojiCache,
	}
}

func (m *Module) handleEmojiCache(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		_ = utils.RespondError(s, i, "No subcommand provided.")
		return
	}

	sub := options[0]
	if !m.canUse(i, sub.Name) {
		_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "❌ You do not have permission to use this command.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		return
	}

	_ = utils.Defer(s, i, true)

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	opts := utils.OptionMap(sub.Options)

	var embed *discordgo.MessageEmbed
	switch sub.Name {
	case "stats":
		embed = m.stats(ctx)
	case "avatar":
		embed = m.avatar(ctx, opts["user"].UserValue(s))
	case "delete":
		embed = m.delete(ctx, opts["emoji"].StringValue())
	case "sweep":
		embed = m.sweep(ctx)
	default:
		embed = utils.NewErrorEmbed("Unknown subcommand", "")
	}

	_ = utils.EditEmbed(s, i, embed)
}

func (m *Module) stats(ctx context.Context) *discordgo.MessageEmbed {
	stats, err := m.cache.Stats(ctx)
	if err != nil {
		m.config.Logger.Errorf("Error reading emoji cache stats: %v", err)
		return utils.NewErrorEmbed("Stats unavailable", err.Error())
	}
	return statsEmbed(stats)
}

func statsEmbed(stats emojicache.Stats) *discordgo.MessageEmbed {
	embed := utils.NewEmbed()
	embed.Title = "Emoji Cache"
	embed.Description = heredoc.Docf(`
		**Cached emoji:** %d
		**Users with an avatar emoji:** %d
		**Free slots:** %d
	`, stats.Records, stats.Bindings, stats.Free())

	if len(stats.Guilds) == 0 {
		embed.Description += "\nNo pool guild is reachable."
		return embed
	}

	rows := make([]string, 0, len(stats.Guilds))
	for _, g := range stats.Guilds {
		rows = append(rows, fmt.Sprintf("%s  %d/%d used, %d free", g.ID, g.Used, g.Capacity, g.Free()))
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Pool guilds",
		Value: utils.Codeblock(strings.Join(rows, "\n"), ""),
	})
	return embed
}

func (m *Module) avatar(ctx context.Context, u *discordgo.User) *discordgo.MessageEmbed {
	if u == nil {
		return utils.NewErrorEmbed("No user", "Could not resolve that user.")
	}

	start := time.Now()
	e, err := m.cache.FetchUserEmoji(ctx, u)
	if err != nil {
		m.config.Logger.Errorf("Error fetching avatar emoji for %s: %v", u.ID, err)
		return errorEmbed(err)
	}

	return utils.NewOKEmbed(
		fmt.Sprintf("Avatar emoji for %s", u.Username),
		heredoc.Docf(`
			%s
			**Emoji ID:** %s
			**Name:** %s
			_Resolved in %s_
		`, e.MessageFormat(), e.ID, e.Name, time.Since(start).Round(time.Millisecond)),
	)
}

func (m *Module) delete(ctx context.Context, value string) *discordgo.MessageEmbed {
	emojiID := strings.TrimSpace(value)
	if parsed := emojicache.ParseEmoji(emojiID); parsed.ID != "" {
		emojiID = parsed.ID
	}

	if err := m.cache.DeleteEmoji(ctx, emojiID); err != nil {
		return errorEmbed(err)
	}
	return utils.NewOKEmbed("Emoji deleted", fmt.Sprintf("Removed `%s` from the cache.", emojiID))
}

// canUse gates the subcommands. Server admins may look but only super admins
// can delete or sweep.
func (m *Module) canUse(i *discordgo.InteractionCreate, sub string) bool {
	user := utils.InvokingUser(i)
	if user == nil {
		return false
	}
	if utils.IsSuperAdmin(user.ID, m.config) {
		return true
	}
	switch sub {
	case "stats", "avatar":
		return utils.HasAdminPermissions(i)
	}
	return false
}

func (m *Module) sweep(ctx context.Context) *discordgo.MessageEmbed {
	report, err := m.service.RunSweep(ctx)
	if err != nil {
		return utils.NewErrorEmbed("Sweep failed", err.Error())
	}
	return sweepEmbed(report)
}

// sweepEmbed flags reports that need a human to look at them
func sweepEmbed(report emojicache.SweepReport) *discordgo.MessageEmbed {
	embed := utils.NewOKEmbed("Sweep complete", FormatSweepReport(report))
	if len(report.Orphans) > 0 || len(report.Unreachable) > 0 {
		embed.Color = utils.Colors.Warning()
	}
	return embed
}

// errorEmbed explains a cache error to an admin
func errorEmbed(err error) *discordgo.MessageEmbed {
	var partial *emojicache.PartialError
	switch {
	case errors.Is(err, emojicache.ErrNotCached):
		return utils.NewErrorEmbed("Not cached", "That emoji is not in the cache.")
	case errors.Is(err, emojicache.ErrDesynced):
		return utils.NewErrorEmbed("Desynced", "The emoji was already gone from its guild; its record has been removed.")
	case errors.Is(err, emojicache.ErrInconsistent):
		return utils.NewErrorEmbed("Pool full", "Every pool guild is full and nothing could be evicted. Check for emoji the cache does not own.")
	case errors.Is(err, emojicache.ErrNoPool):
		return utils.NewErrorEmbed("No pool", "No emoji pool guilds are configured.")
	case errors.As(err, &partial):
		return utils.NewErrorEmbed("Partially created", fmt.Sprintf(
			"Emoji `%s` was uploaded to guild `%s` but could not be recorded. The next sweep will report it.",
			partial.EmojiID, partial.GuildID))
	default:
		return utils.NewErrorEmbed("Emoji cache error", err.Error())
	}
}

// Service returns the sweep service
func (m *Module) Service() types.ModuleService {
	return m.service
}

// SweepService exposes the sweep for the CLI
func (m *Module) SweepService() *Service {
	return m.service
}
