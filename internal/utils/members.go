package utils

import (
	"github.com/bwmarrin/discordgo"
)

// GetAllGuildMembers fetches all members from a guild (handles pagination)
func GetAllGuildMembers(s *discordgo.Session, guildID string, options ...discordgo.RequestOption) ([]*discordgo.Member, error) {
	var allMembers []*discordgo.Member
	after := ""

	for {
		members, err := s.GuildMembers(guildID, after, 1000, options...)
		if err != nil {
			return nil, err
		}

		if len(members) == 0 {
			break
		}

		allMembers = append(allMembers, members...)
		if len(members) < 1000 {
			break
		}
		after = members[len(members)-1].User.ID
	}

	return allMembers, nil
}

// MembersWithRole filters members down to those holding roleID
func MembersWithRole(members []*discordgo.Member, roleID string) []*discordgo.Member {
	var out []*discordgo.Member
	for _, m := range members {
		for _, r := range m.Roles {
			if r == roleID {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
