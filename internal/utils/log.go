package utils

import (
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"

	"ditto/internal/config"
)

// LogToChannel posts a message to the configured log channel
func LogToChannel(cfg *config.Config, s *discordgo.Session, title, m string) error {
	id := cfg.GetLogChannelID()
	if id == "" {
		return errors.New("unable to log to channel: log_channel_id is not set")
	}

	logEmbed := &discordgo.MessageEmbed{
		Title:       title,
		Description: m,
		Color:       Colors.Info(),
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	_, err := s.ChannelMessageSendEmbed(id, logEmbed)
	return err
}
