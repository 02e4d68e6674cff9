package meta

import (
	"strings"
	"testing"
	"time"

	"github.com/brensch/selfbot/cogs/internal/cogtest"
	"github.com/brensch/selfbot/discord"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 seconds"},
		{-time.Second, "0 seconds"},
		{time.Second, "1 second"},
		{61 * time.Second, "1 minute, 1 second"},
		{26*time.Hour + 3*time.Minute, "1 day, 2 hours, 3 minutes"},
		{49*time.Hour + 4*time.Second, "2 days, 1 hour, 4 seconds"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUptimeCommand(t *testing.T) {
	h := cogtest.New(t, "meta", New("0 0 * * * *"))

	h.Run(".uptime")
	if got := h.Reply(); !strings.HasPrefix(got, "Uptime: **") || !strings.Contains(got, "online since") {
		t.Errorf("unexpected uptime reply %q", got)
	}

	if !strings.Contains(h.Logs.String(), "#general (Test Server): .uptime") {
		t.Errorf("invocation not logged: %q", h.Logs.String())
	}
}

func TestPingAndStats(t *testing.T) {
	h := cogtest.New(t, "meta", New(""))

	h.Run(".ping")
	if got := h.Reply(); !strings.HasPrefix(got, "Pong! `") || strings.Contains(got, "average") {
		t.Errorf("unexpected ping reply %q", got)
	}
	if got := len(h.Session.Edits()); got != 2 {
		t.Errorf("expected 2 edits for a single ping, got %d", got)
	}

	h.Run(".stats")
	if got := h.Reply(); !strings.Contains(got, "**Memory:**") || !strings.Contains(got, "**Commands:** 5") {
		t.Errorf("unexpected stats reply %q", got)
	}

	h.Run(".info")
	sent := h.Session.SentMessages()
	if len(sent) != 1 || sent[0].Embed == nil || sent[0].Embed.Fields[1].Value != "meta" {
		t.Fatalf("unexpected about output %+v", sent)
	}
}

func TestHeartbeatSchedule(t *testing.T) {
	h := cogtest.New(t, "meta", New("0 0 * * * *"))

	schedules := h.Bot.Schedules()
	if len(schedules) != 1 || schedules[0].GetName() != "heartbeat" {
		t.Fatalf("unexpected schedules %v", schedules)
	}
	out, err := schedules[0].Execute()
	if err != nil || !strings.HasPrefix(out, "Uptime: **") {
		t.Errorf("unexpected heartbeat (%q, %v)", out, err)
	}

	none := cogtest.New(t, "meta", New(""))
	if len(none.Bot.Schedules()) != 0 {
		t.Error("heartbeat registered although disabled")
	}
}

func TestInvalidHeartbeatFailsLoad(t *testing.T) {
	b := discord.NewBot(discord.BotConfig{Prefixes: []string{"."}})
	if err := b.LoadExtension("meta", New("every hour")); err == nil {
		t.Fatal("expected invalid heartbeat to fail the extension")
	}
	if b.Command("uptime") != nil {
		t.Error("commands of the failed extension were kept")
	}
}

func TestPingCount(t *testing.T) {
	h := cogtest.New(t, "meta", New(""))

	h.Run(".ping 3")
	if got := h.Reply(); !strings.HasSuffix(got, "(average of 3)") {
		t.Errorf("unexpected ping reply %q", got)
	}
	if got := len(h.Session.Edits()); got != 4 {
		t.Errorf("expected 4 edits, got %d", got)
	}

	h.Run(".ping 100")
	if got := h.Reply(); !strings.HasSuffix(got, "(average of 5)") {
		t.Errorf("count not capped: %q", got)
	}

	h.Run(".ping lots")
	if !strings.Contains(h.Logs.String(), "Command error in ping:") {
		t.Errorf("bad count not reported: %q", h.Logs.String())
	}
}
