package time

import (
	"context"
	"fmt"
	"strings"
	gotime "time"

	"github.com/bwmarrin/discordgo"

	"ditto/internal/commands/types"
	"ditto/internal/config"
	"ditto/internal/database"
	"ditto/internal/utils"
)

var formatOrder = []struct {
	name  string
	style string
}{
	{"Default", ""},
	{"Short Time", "t"},
	{"Long Time", "T"},
	{"Short Date", "d"},
	{"Long Date", "D"},
	{"Short Date/Time", "f"},
	{"Long Date/Time", "F"},
	{"Relative Time", "R"},
}

// TimeModule implements the CommandModule interface for the time command
type TimeModule struct {
	config *config.Config
	db     *database.DB
	now    func() gotime.Time
}

// New creates a new time module
func New(deps *types.Dependencies) *TimeModule {
	return &TimeModule{
		config: deps.Config,
		db:     deps.DB,
		now:    gotime.Now,
	}
}

// Register adds the time command to the command map
func (m *TimeModule) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	cmds["time"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "time",
			Description: "Turn a date/time into a Discord timestamp",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "datetime",
					Description: "Natural language date/time or a unix timestamp, read in your /timezone",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "full",
					Description: "Show all timestamp format options",
					Required:    false,
				},
			},
		},
		HandlerFunc: m.handleTime,
	}
}

// handleTime handles the /time command
func (m *TimeModule) handleTime(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Acknowledge the interaction immediately
	_ = utils.Defer(s, i, false)

	opts := utils.OptionMap(i.ApplicationCommandData().Options)

	dateOpt, ok := opts["datetime"]
	if !ok || strings.TrimSpace(dateOpt.StringValue()) == "" {
		_ = utils.EditEmbed(s, i, utils.NewErrorEmbed("Missing Parameter", "Please provide a date/time to parse."))
		return
	}
	dateString := dateOpt.StringValue()

	fullOutput := false
	if opt, ok := opts["full"]; ok {
		fullOutput = opt.BoolValue()
	}

	loc := m.userLocation(context.Background(), utils.InvokingUser(i))

	parsed, err := resolveTime(dateString, loc, m.now())
	if err != nil {
		embed := utils.NewErrorEmbed("Parse Error", fmt.Sprintf("Failed to parse date/time: `%s`", dateString))
		embed.Fields = []*discordgo.MessageEmbedField{
			{
				Name: "📋 Examples",
				Value: "• `tomorrow at 5pm`\n" +
					"• `in 3 hours`\n" +
					"• `15:04 MDT`\n" +
					"• `2006-01-02 15:04:05 EST`\n" +
					"• `January 2, 2006 3:04 PM PDT`",
			},
		}
		_ = utils.EditEmbed(s, i, embed)
		return
	}

	if !fullOutput {
		msgBody := fmt.Sprintf("\"`%s`\" is %s at %s\n",
			dateString,
			utils.DiscordTimestamp(parsed, "R"),
			utils.DiscordTimestamp(parsed, "F"))
		_, _ = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Content: utils.StringPtr(msgBody),
		})
		return
	}

	_ = utils.EditEmbed(s, i, fullEmbed(dateString, parsed, loc))
}

// resolveTime reads pasted timestamps as-is and everything else as natural
// language in loc.
func resolveTime(input string, loc *gotime.Location, now gotime.Time) (gotime.Time, error) {
	if t, ok := utils.ParseUnixTimestamp(input); ok {
		return t.In(loc), nil
	}
	return utils.ParseTime(input, loc, now)
}

// userLocation returns the invoking user's stored timezone, or UTC
func (m *TimeModule) userLocation(ctx context.Context, u *discordgo.User) *gotime.Location {
	if u == nil || m.db == nil {
		return gotime.UTC
	}

	tz, err := m.db.GetUserTimezone(ctx, u.ID)
	if err != nil {
		m.config.Logger.Warnf("Error loading timezone for %s: %v", u.ID, err)
		return gotime.UTC
	}
	if tz == "" {
		return gotime.UTC
	}

	loc, err := gotime.LoadLocation(tz)
	if err != nil {
		m.config.Logger.Warnf("Stored timezone %q for %s is invalid: %v", tz, u.ID, err)
		return gotime.UTC
	}
	return loc
}

func fullEmbed(dateString string, parsed gotime.Time, loc *gotime.Location) *discordgo.MessageEmbed {
	embed := utils.NewEmbed()
	embed.Fields = append(embed.Fields, []*discordgo.MessageEmbedField{
		{
			Name: "",
			Value: fmt.Sprintf("🕰️ %s is %s\n",
				utils.DiscordTimestamp(parsed, "F"),
				utils.DiscordTimestamp(parsed, "R")),
		},
		{
			Name:  "",
			Value: fmt.Sprintf("_Converted from `%s` (%s)_", dateString, loc),
		},
	}...)

	var formatsList strings.Builder
	for _, f := range formatOrder {
		ts := utils.DiscordTimestamp(parsed, f.style)
		formatsList.WriteString(fmt.Sprintf("• **%s**: `%s` → %s\n", f.name, ts, ts))
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "📋 Available Discord Timestamp Formats",
		Value: formatsList.String(),
	})
	return embed
}

// Service returns nil as this module has no services requiring initialization
func (m *TimeModule) Service() types.ModuleService {
	return nil
}
