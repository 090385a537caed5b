package utils

import (
	"github.com/bwmarrin/discordgo"
)

// NewEmbed creates a new embed with the default color
func NewEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color: Colors.Default(),
	}
}

// NewOKEmbed creates a new success embed with the given title and description
func NewOKEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       Colors.Ok(),
	}
}

// NewErrorEmbed creates a new error embed with the given title and description
func NewErrorEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "❌ " + title,
		Description: description,
		Color:       Colors.Error(),
	}
}

// CommandErrorEmbed titles an error after the command that raised it
func CommandErrorEmbed(i *discordgo.InteractionCreate, description string) *discordgo.MessageEmbed {
	name := "command"
	if i.Type == discordgo.InteractionApplicationCommand {
		name = i.ApplicationCommandData().Name
	}
	return NewErrorEmbed("Error with command "+name, description)
}

// RespondEmbed replies to the interaction with a single embed
func RespondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, private bool) error {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if private {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// RespondError replies privately with an error embed
func RespondError(s *discordgo.Session, i *discordgo.InteractionCreate, description string) error {
	return RespondEmbed(s, i, CommandErrorEmbed(i, description), true)
}

// Defer acknowledges the interaction so the reply can be edited in later
func Defer(s *discordgo.Session, i *discordgo.InteractionCreate, private bool) error {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if private {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return s.InteractionRespond(i.Interaction, resp)
}

// EditEmbed replaces a deferred reply with embed
func EditEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	return err
}

// OptionMap indexes slash command options by name
func OptionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// InvokingUser returns the user behind an interaction in guilds and DMs alike
func InvokingUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
