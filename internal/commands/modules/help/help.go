package help

import (
	"github.com/bwmarrin/discordgo"

	"ditto/internal/commands/types"
)

// HelpModule implements the CommandModule interface for the help command
type HelpModule struct {
	cmds map[string]*types.Command
}

// New creates a new help module
func New() *HelpModule {
	return &HelpModule{}
}

// Register adds the help command to the command map. The map is kept so
// the listing also covers modules registered after this one.
func (m *HelpModule) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	m.cmds = cmds
	cmds["help"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "help",
			Description: "Show all available commands",
		},
		HandlerFunc: m.handleHelp,
	}
}

// handleHelp handles the help slash command
func (m *HelpModule) handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{helpCommandsEmbed(m.cmds)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// Service returns nil as this module has no services requiring initialization
func (m *HelpModule) Service() types.ModuleService {
	return nil
}
