// Package regionalindicator turns text into regional indicator emoji.
package regionalindicator

import (
	"strings"
	"unicode"

	"github.com/brensch/selfbot/discord"
)

// separator keeps adjacent indicators from merging into flags.
const separator = "\u200b"

const keycap = "\ufe0f\u20e3"

var symbols = map[rune]string{
	'!': "❗",
	'?': "❓",
	'#': "#" + keycap,
	'*': "*" + keycap,
}

type request struct {
	Text string `discord:"rest,description:text to convert"`
}

// New returns the setup of the regional_indicator extension.
func New() discord.Setup {
	return func(b *discord.Bot) error {
		return b.AddCommand(discord.NewCommand("ri", "Converts text into regional indicators", func(ctx *discord.Context, req request) error {
			_, err := ctx.Reply(Convert(req.Text))
			return err
		}).WithAliases("regional", "indicator"))
	}
}

// Convert maps ASCII letters to regional indicator symbols and digits to
// keycaps. Spaces are widened and anything else is kept unchanged.
func Convert(text string) string {
	var parts []string
	for _, r := range text {
		lower := unicode.ToLower(r)
		switch {
		case lower >= 'a' && lower <= 'z':
			parts = append(parts, string(rune(0x1F1E6+lower-'a')))
		case r >= '0' && r <= '9':
			parts = append(parts, string(r)+keycap)
		case r == ' ':
			parts = append(parts, "  ")
		default:
			if s, ok := symbols[r]; ok {
				parts = append(parts, s)
			} else {
				parts = append(parts, string(r))
			}
		}
	}
	return strings.Join(parts, separator)
}
