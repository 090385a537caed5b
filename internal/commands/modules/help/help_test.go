package help

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ditto/internal/commands/types"
)

func TestHelpListsRegisteredCommands(t *testing.T) {
	var adminPerms int64 = discordgo.PermissionAdministrator
	cmds := map[string]*types.Command{
		"ping": {ApplicationCommand: &discordgo.ApplicationCommand{Name: "ping", Description: "Check if the bot is responsive"}},
		"emojicache": {ApplicationCommand: &discordgo.ApplicationCommand{
			Name:                     "emojicache",
			Description:              "Manage the emoji cache",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "stats", Description: "Show slot usage"},
			},
		}},
		"secret": {Development: true, ApplicationCommand: &discordgo.ApplicationCommand{Name: "secret"}},
	}
	New().Register(cmds, &types.Dependencies{})

	embed := helpCommandsEmbed(cmds)

	var names []string
	for _, f := range embed.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"🤖 Available Commands:", "/help", "/ping", "🛠️ Admin Commands:", "/emojicache"}, names)

	last := embed.Fields[len(embed.Fields)-1]
	require.Equal(t, "/emojicache", last.Name)
	assert.Contains(t, last.Value, "• `/emojicache stats` - Show slot usage")
}
