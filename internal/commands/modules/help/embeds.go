package help

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"ditto/internal/commands/types"
	"ditto/internal/utils"
)

// helpCommandsEmbed lists every registered command, admin commands last
func helpCommandsEmbed(cmds map[string]*types.Command) *discordgo.MessageEmbed {
	names := make([]string, 0, len(cmds))
	for name, c := range cmds {
		if c.Development {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var public, admin []*discordgo.MessageEmbedField
	for _, name := range names {
		ac := cmds[name].ApplicationCommand
		field := &discordgo.MessageEmbedField{
			Name:  "/" + ac.Name,
			Value: commandUsage(ac),
		}
		if ac.DefaultMemberPermissions != nil {
			admin = append(admin, field)
		} else {
			public = append(public, field)
		}
	}

	fields := []*discordgo.MessageEmbedField{{Name: "🤖 Available Commands:", Value: utils.ZWSP}}
	fields = append(fields, public...)
	if len(admin) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "🛠️ Admin Commands:", Value: utils.ZWSP})
		fields = append(fields, admin...)
	}

	return &discordgo.MessageEmbed{
		Title:       "Ditto - Help",
		Description: "Looks things up and shows them off.",
		Color:       utils.Colors.Info(),
		Fields:      fields,
	}
}

// commandUsage renders the description followed by one bullet per subcommand
func commandUsage(ac *discordgo.ApplicationCommand) string {
	var b strings.Builder
	b.WriteString(ac.Description)
	for _, opt := range ac.Options {
		if opt.Type != discordgo.ApplicationCommandOptionSubCommand {
			continue
		}
		fmt.Fprintf(&b, "\n• `/%s %s` - %s", ac.Name, opt.Name, opt.Description)
	}
	return b.String()
}
