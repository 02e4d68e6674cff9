package slashes

import (
	"testing"

	"github.com/brensch/selfbot/cogs/internal/cogtest"
)

func TestCommands(t *testing.T) {
	h := cogtest.New(t, "slashes", New())

	tests := []struct {
		content, want string
	}{
		{".shrug", `¯\\_(ツ)_/¯`},
		{".tableflip so done", "so done (╯°□°）╯︵ ┻━┻"},
		{".unflip", "┬─┬ ノ( ゜-゜ノ)"},
		{".lenny  hello there ", "hello there ( ͡° ͜ʖ ͡°)"},
	}
	for _, tt := range tests {
		h.Run(tt.content)
		if got := h.Reply(); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.content, got, tt.want)
		}
	}

	if len(h.Bot.Commands()) != len(Faces)+1 {
		t.Errorf("expected %d commands, got %d", len(Faces)+1, len(h.Bot.Commands()))
	}
}
