package info

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/image/colornames"

	"ditto/internal/avatar"
)

const swatchSize = 128

var rgbPattern = regexp.MustCompile(`^rgb\s*\(\s*([0-9.]+%?)\s*,\s*([0-9.]+%?)\s*,\s*([0-9.]+%?)\s*\)$`)

// Discord's own palette, checked before the CSS names
var discordColours = map[string]int{
	"blurple":       0x5865f2,
	"og_blurple":    0x7289da,
	"greyple":       0x99aab5,
	"dark_theme":    0x313338,
	"fuchsia":       0xeb459e,
	"yellow":        0xfee75c,
	"brand_green":   0x57f287,
	"brand_red":     0xed4245,
	"teal":          0x1abc9c,
	"dark_teal":     0x11806a,
	"green":         0x2ecc71,
	"dark_green":    0x1f8b4c,
	"blue":          0x3498db,
	"dark_blue":     0x206694,
	"purple":        0x9b59b6,
	"dark_purple":   0x71368a,
	"magenta":       0xe91e63,
	"dark_magenta":  0xad1457,
	"gold":          0xf1c40f,
	"dark_gold":     0xc27c0e,
	"orange":        0xe67e22,
	"dark_orange":   0xa84300,
	"red":           0xe74c3c,
	"dark_red":      0x992d22,
	"lighter_grey":  0x95a5a6,
	"lighter_gray":  0x95a5a6,
	"dark_grey":     0x607d8b,
	"dark_gray":     0x607d8b,
	"light_grey":    0x979c9f,
	"light_gray":    0x979c9f,
	"darker_grey":   0x546e7a,
	"darker_gray":   0x546e7a,
	"default":       0x000000,
	"dark_embed":    0x2b2d31,
	"light_embed":   0xeeeff1,
	"ash_theme":     0x2e2e34,
	"onyx_theme":    0x070709,
	"light_theme":   0xfbfbfb,
	"pink":          0xeb459f,
	"dark_pink":     0xad1457,
	"brand_yellow":  0xfee75c,
	"brand_fuchsia": 0xeb459e,
}

// parseColour reads a colour as hex (#fff, #a1b2c3, 0xa1b2c3), CSS rgb(),
// or a name. It returns the 24-bit value.
func parseColour(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, problem("You did not specify a colour.")
	}

	if hex, ok := strings.CutPrefix(value, "#"); ok {
		return parseHexColour(hex, value)
	}

	lower := strings.ToLower(value)
	if hex, ok := strings.CutPrefix(lower, "0x"); ok {
		return parseHexColour(hex, value)
	}
	if strings.HasPrefix(lower, "rgb") {
		return parseRGBColour(lower, value)
	}

	name := strings.ReplaceAll(lower, " ", "_")
	if c, ok := discordColours[name]; ok {
		return c, nil
	}
	if c, ok := colornames.Map[strings.ReplaceAll(name, "_", "")]; ok {
		return int(c.R)<<16 | int(c.G)<<8 | int(c.B), nil
	}
	return 0, problem("Could not find colour for value: " + value)
}

func parseHexColour(hex, original string) (int, error) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 0 || len(hex) > 6 {
		return 0, problem("Could not find colour for value: " + original)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, problem("Could not find colour for value: " + original)
	}
	return int(v), nil
}

func parseRGBColour(lower, original string) (int, error) {
	m := rgbPattern.FindStringSubmatch(lower)
	if m == nil {
		return 0, problem("Could not find colour for value: " + original)
	}

	value := 0
	for _, part := range m[1:] {
		channel, err := parseRGBChannel(part)
		if err != nil {
			return 0, problem("Could not find colour for value: " + original)
		}
		value = value<<8 | channel
	}
	return value, nil
}

// parseRGBChannel reads 0-255 or a 0-100% percentage
func parseRGBChannel(s string) (int, error) {
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(pct, 64)
		if err != nil || f < 0 || f > 100 {
			return 0, fmt.Errorf("bad percentage %q", s)
		}
		return int(f / 100 * 255), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 255 {
		return 0, fmt.Errorf("bad channel %q", s)
	}
	return n, nil
}

func hexString(c int) string {
	return fmt.Sprintf("#%06x", c)
}

// colourSwatch renders a solid square of c as PNG
func colourSwatch(c int) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, swatchSize, swatchSize))
	fill := color.NRGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xff}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)
	return avatar.EncodePNG(img)
}

func swatchFilename(c int) string {
	return fmt.Sprintf("%06x.png", c)
}

func colourEmbed(c int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:  c,
		Author: &discordgo.MessageEmbedAuthor{Name: "Information on: " + hexString(c)},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Hex:", Value: hexString(c), Inline: true},
			{Name: "RGB:", Value: fmt.Sprintf("%d, %d, %d", c>>16&0xff, c>>8&0xff, c&0xff), Inline: true},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: "attachment://" + swatchFilename(c)},
	}
}
