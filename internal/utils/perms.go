package utils

import (
	"slices"

	"github.com/bwmarrin/discordgo"

	"ditto/internal/config"
)

// HasAdminPermissions checks if the invoking member has administrator
// permissions in the channel the interaction came from
func HasAdminPermissions(i *discordgo.InteractionCreate) bool {
	if i.Member == nil || i.Member.User == nil {
		return false
	}

	// Discord resolves the member's channel permissions into the interaction
	return i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

// IsSuperAdmin reports whether userID is listed in super_admins
func IsSuperAdmin(userID string, cfg *config.Config) bool {
	return userID != "" && slices.Contains(cfg.GetSuperAdmins(), userID)
}
