// Package slashes provides the classic text faces as commands.
package slashes

import (
	"strings"

	"github.com/brensch/selfbot/discord"
)

// Faces maps each command to the text it appends. The shrug keeps its
// escaped backslash so markdown renders the arm.
var Faces = []struct {
	Name string
	Face string
}{
	{"shrug", `¯\\_(ツ)_/¯`},
	{"tableflip", "(╯°□°）╯︵ ┻━┻"},
	{"unflip", "┬─┬ ノ( ゜-゜ノ)"},
	{"lenny", "( ͡° ͜ʖ ͡°)"},
}

type request struct {
	Text string `discord:"optional,rest,description:message to send with the face"`
}

// New returns the setup of the slashes extension.
func New() discord.Setup {
	return func(b *discord.Bot) error {
		for _, f := range Faces {
			face := f.Face
			cmd := discord.NewCommand(f.Name, "Appends "+face+" to your message", func(ctx *discord.Context, req request) error {
				_, err := ctx.Reply(Apply(req.Text, face))
				return err
			})
			if err := b.AddCommand(cmd); err != nil {
				return err
			}
		}
		return nil
	}
}

// Apply appends face to text.
func Apply(text, face string) string {
	return strings.TrimSpace(text + " " + face)
}
