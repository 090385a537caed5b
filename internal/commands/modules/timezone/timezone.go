package timezone

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/bwmarrin/discordgo"

	"ditto/internal/commands/types"
	"ditto/internal/config"
	"ditto/internal/database"
	"ditto/internal/utils"
)

// Module implements the CommandModule interface for the timezone command
type Module struct {
	config *config.Config
	db     *database.DB
	now    func() time.Time
}

// New creates a new timezone module
func New(deps *types.Dependencies) *Module {
	return &Module{
		config: deps.Config,
		db:     deps.DB,
		now:    time.Now,
	}
}

// Register adds the timezone command to the command map
func (m *Module) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	cmds["timezone"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "timezone",
			Description: "User timezone management",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "get",
					Description: "Get the current time for a user or timezone",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionString,
							Name:         "timezone",
							Description:  "The timezone to get the current time for",
							Autocomplete: true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to get the current time for",
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "private",
							Description: "Whether to invoke this command privately (default true)",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set your timezone",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionString,
							Name:         "timezone",
							Description:  "An IANA timezone such as Europe/London",
							Required:     true,
							Autocomplete: true,
						},
					},
				},
			},
		},
		HandlerFunc: m.handleTimezone,
	}
}

func (m *Module) handleTimezone(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		_ = utils.RespondError(s, i, "No subcommand provided.")
		return
	}

	sub := options[0]
	opts := utils.OptionMap(sub.Options)

	switch sub.Name {
	case "get":
		m.handleGet(s, i, opts)
	case "set":
		m.handleSet(s, i, opts)
	default:
		_ = utils.RespondError(s, i, "Unknown subcommand.")
	}
}

func (m *Module) handleGet(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	private := true
	if opt, ok := opts["private"]; ok {
		private = opt.BoolValue()
	}

	var user *discordgo.User
	if opt, ok := opts["user"]; ok {
		user = opt.UserValue(s)
	}

	embed, problem := m.getEmbed(context.Background(), opts["timezone"], user, utils.InvokingUser(i))
	if problem != "" {
		_ = utils.RespondError(s, i, problem)
		return
	}

	_ = utils.RespondEmbed(s, i, embed, private)
}

// getEmbed builds the reply for /timezone get. A non-empty problem is shown
// to the user as an error instead.
func (m *Module) getEmbed(ctx context.Context, tzOpt *discordgo.ApplicationCommandInteractionDataOption, user, invoker *discordgo.User) (*discordgo.MessageEmbed, string) {
	if tzOpt != nil {
		if user != nil {
			return nil, "You can't specify both a timezone and a user."
		}

		loc, err := LoadLocation(tzOpt.StringValue())
		if err != nil {
			return nil, fmt.Sprintf("Unknown timezone `%s`.", tzOpt.StringValue())
		}

		embed := utils.NewEmbed()
		embed.Title = utils.HumanFriendlyTimestamp(m.now().In(loc))
		embed.Author = &discordgo.MessageEmbedAuthor{Name: fmt.Sprintf("Time in %s", loc)}
		return embed, ""
	}

	if user == nil {
		user = invoker
	}
	if user == nil {
		return nil, "Could not work out who to look up."
	}

	tz, err := m.db.GetUserTimezone(ctx, user.ID)
	if err != nil {
		m.config.Logger.Errorf("Error loading timezone for %s: %v", user.ID, err)
		return nil, "Failed to load the timezone, please try again later."
	}
	if tz == "" {
		return nil, fmt.Sprintf("%s does not have a time zone set.", user.Mention())
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		m.config.Logger.Warnf("Stored timezone %q for %s is invalid: %v", tz, user.ID, err)
		return nil, fmt.Sprintf("%s has an invalid time zone stored, ask them to set it again.", user.Mention())
	}

	local := m.now().In(loc)
	embed := utils.NewEmbed()
	embed.Title = utils.HumanFriendlyTimestamp(local)
	embed.Author = &discordgo.MessageEmbedAuthor{
		Name:    fmt.Sprintf("Time for %s", displayName(user)),
		IconURL: user.AvatarURL("64"),
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%s (%s)", loc, utils.UTCOffset(local))}
	return embed, ""
}

func (m *Module) handleSet(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	user := utils.InvokingUser(i)
	opt, ok := opts["timezone"]
	if !ok || user == nil {
		_ = utils.RespondError(s, i, "Please provide a timezone.")
		return
	}

	embed, problem := m.setTimezone(context.Background(), user, opt.StringValue())
	if problem != "" {
		_ = utils.RespondError(s, i, problem)
		return
	}

	_ = utils.RespondEmbed(s, i, embed, true)
}

func (m *Module) setTimezone(ctx context.Context, user *discordgo.User, name string) (*discordgo.MessageEmbed, string) {
	loc, err := LoadLocation(name)
	if err != nil {
		return nil, fmt.Sprintf("Unknown timezone `%s`.", name)
	}

	if err := m.db.SetUserTimezone(ctx, user.ID, loc.String()); err != nil {
		m.config.Logger.Errorf("Error storing timezone for %s: %v", user.ID, err)
		return nil, "Failed to save your timezone, please try again later."
	}

	embed := utils.NewOKEmbed(
		fmt.Sprintf("Local Time: %s", utils.HumanFriendlyTimestamp(m.now().In(loc))),
		heredoc.Docf(`
			Your timezone is now **%s**.
			Times you give to /time will be read in this zone.
		`, loc),
	)
	embed.Author = &discordgo.MessageEmbedAuthor{Name: fmt.Sprintf("Timezone set to %s", loc)}
	return embed, ""
}

// HandleAutocomplete suggests timezone names for the timezone option
func (m *Module) HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != "timezone" || len(data.Options) == 0 {
		return
	}

	var typed string
	for _, opt := range data.Options[0].Options {
		if opt.Name == "timezone" && opt.Focused {
			typed = opt.StringValue()
		}
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 25)
	for _, name := range Suggest(typed, 25) {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}

	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
}

// LoadLocation resolves a user supplied timezone name. Matching against the
// common zone list is case-insensitive; anything else goes to the tz database
// as typed. "Local" is refused since it means the bot host's zone.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return nil, fmt.Errorf("invalid timezone %q", name)
	}

	for _, zone := range commonZones {
		if strings.EqualFold(zone, name) {
			name = zone
			break
		}
	}
	return time.LoadLocation(name)
}

// Suggest returns up to limit common zone names containing typed, with
// prefix matches first.
func Suggest(typed string, limit int) []string {
	typed = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(typed), " ", "_"))

	var prefix, contains []string
	for _, zone := range commonZones {
		lower := strings.ToLower(zone)
		switch {
		case strings.HasPrefix(lower, typed):
			prefix = append(prefix, zone)
		case strings.Contains(lower, typed):
			contains = append(contains, zone)
		}
	}
	sort.Strings(prefix)
	sort.Strings(contains)

	out := append(prefix, contains...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Service returns nil as this module has no services requiring initialization
func (m *Module) Service() types.ModuleService {
	return nil
}
