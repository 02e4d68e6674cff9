// Package cogtest runs extensions against an in-memory session.
package cogtest

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/brensch/selfbot/discord"
	"github.com/brensch/selfbot/discord/discordtest"
	sblog "github.com/brensch/selfbot/log"
)

// Harness is a ready self-bot with one extension loaded.
type Harness struct {
	Bot     *discord.Bot
	Session *discordtest.Session
	Logs    *bytes.Buffer
	Stdout  *bytes.Buffer
}

// New loads setup as extension name on a self-bot logged in as "me" with
// the prefix ".".
func New(t *testing.T, name string, setup discord.Setup) *Harness {
	t.Helper()

	logs := &bytes.Buffer{}
	ch := sblog.NewChannel("selfbot", slog.LevelDebug)
	ch.AddHandler(sblog.NewWriterHandler(logs, nil))
	t.Cleanup(func() { ch.Close() })

	stdout := &bytes.Buffer{}
	session := discordtest.NewSession()
	b := discord.NewBot(discord.BotConfig{
		Prefixes: []string{"."},
		SelfBot:  true,
		HideHelp: true,
	},
		discord.WithSession(session),
		discord.WithLogger(ch.Logger()),
		discord.WithOutput(stdout, &bytes.Buffer{}),
	)
	b.HandleReady(&discordgo.User{ID: "me", Username: "selfbot"})

	if err := b.LoadExtension(name, setup); err != nil {
		t.Fatalf("failed to load %s: %v", name, err)
	}
	return &Harness{Bot: b, Session: session, Logs: logs, Stdout: stdout}
}

// Run sends content as the logged-in user in the guild channel "general".
func (h *Harness) Run(content string) {
	h.Bot.HandleMessage(&discordgo.Message{
		ID:        "m1",
		ChannelID: "general",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: "me"},
	})
}

// Reply returns the last edit of the invoking message.
func (h *Harness) Reply() string {
	return h.Session.LastEdit()
}
