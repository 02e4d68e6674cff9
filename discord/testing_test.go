package discord

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/brensch/selfbot/discord/discordtest"
	sblog "github.com/brensch/selfbot/log"
)

// testBot is a self-bot logged in as user "me" with its session set to a
// fake and its command log captured in memory.
type testBot struct {
	*Bot
	session *discordtest.Session
	logs    *bytes.Buffer
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
}

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestBot(t *testing.T, opts ...Option) *testBot {
	t.Helper()

	logs := &bytes.Buffer{}
	ch := sblog.NewChannel("selfbot", slog.LevelDebug)
	ch.AddHandler(sblog.NewWriterHandler(logs, nil))
	t.Cleanup(func() { ch.Close() })

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	session := discordtest.NewSession()

	base := []Option{
		WithLogger(ch.Logger()),
		WithOutput(stdout, stderr),
		WithClock(func() time.Time { return fixedNow }),
		WithDialer(func(string, bool) (Session, error) { return session, nil }),
		WithSession(session),
	}
	b := NewBot(BotConfig{
		Prefixes: []string{".", "/", "me."},
		SelfBot:  true,
		HideHelp: true,
	}, append(base, opts...)...)

	b.onReady(nil, &discordgo.Ready{User: &discordgo.User{ID: "me", Username: "selfbot"}})
	stdout.Reset()

	return &testBot{Bot: b, session: session, logs: logs, stdout: stdout, stderr: stderr}
}

func message(channelID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "m1",
		ChannelID: channelID,
		Content:   content,
		Author:    &discordgo.User{ID: "me"},
	}
}
