package regionalindicator

import (
	"testing"

	"github.com/brensch/selfbot/cogs/internal/cogtest"
)

func TestConvert(t *testing.T) {
	const zw = "\u200b"
	tests := []struct {
		in, want string
	}{
		{"ab", "\U0001F1E6" + zw + "\U0001F1E7"},
		{"Hi", "\U0001F1ED" + zw + "\U0001F1EE"},
		{"a 1", "\U0001F1E6" + zw + "  " + zw + "1\ufe0f\u20e3"},
		{"ok!?", "\U0001F1F4" + zw + "\U0001F1F0" + zw + "\u2757" + zw + "\u2753"},
		{"\u00e9", "\u00e9"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Convert(tt.in); got != tt.want {
			t.Errorf("Convert(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCommand(t *testing.T) {
	h := cogtest.New(t, "regional_indicator", New())

	const goIndicators = "\U0001F1EC\u200b\U0001F1F4"

	h.Run(".ri go")
	if got := h.Reply(); got != goIndicators {
		t.Errorf("unexpected reply %q", got)
	}

	h.Run(".regional")
	if h.Reply() != goIndicators {
		t.Errorf("missing argument should not edit the message")
	}
}
