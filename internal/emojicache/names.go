package emojicache

import (
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	maxEmojiName   = 32
	maxNameBase    = 28
	minEmojiName   = 2
	idSuffixDigits = 4
)

var (
	invalidNameChars = regexp.MustCompile(`[^A-Za-z0-9_]`)
	customEmojiRe    = regexp.MustCompile(`^<(a?):([A-Za-z0-9_]{2,32}):(\d+)>$`)
)

// EmojiName derives a valid emoji name from a user: the first 28 characters of
// the username stripped to [A-Za-z0-9_], followed by the discriminator, or the
// last digits of the user ID for accounts without one.
func EmojiName(u *discordgo.User) string {
	base := []rune(u.Username)
	if len(base) > maxNameBase {
		base = base[:maxNameBase]
	}
	name := invalidNameChars.ReplaceAllString(string(base), "")

	suffix := u.Discriminator
	if suffix == "" || suffix == "0" {
		suffix = u.ID
		if len(suffix) > idSuffixDigits {
			suffix = suffix[len(suffix)-idSuffixDigits:]
		}
	}
	name += invalidNameChars.ReplaceAllString(suffix, "")

	if len(name) < minEmojiName {
		name += strings.Repeat("_", minEmojiName-len(name))
	}
	if len(name) > maxEmojiName {
		name = name[:maxEmojiName]
	}
	return name
}

// ParseEmoji turns a configured emoji into a discordgo.Emoji. Custom emoji use
// message format (<:name:id> or <a:name:id>); anything else is taken as a
// unicode emoji.
func ParseEmoji(s string) *discordgo.Emoji {
	s = strings.TrimSpace(s)
	if m := customEmojiRe.FindStringSubmatch(s); m != nil {
		return &discordgo.Emoji{
			Animated: m[1] == "a",
			Name:     m[2],
			ID:       m[3],
		}
	}
	return &discordgo.Emoji{Name: s}
}
