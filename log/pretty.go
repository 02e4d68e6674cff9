package log

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/fatih/color"
)

type PrettyHandlerOptions struct {
	SlogOpts slog.HandlerOptions
	// Optional timezone to use for logging. If nil, local timezone is used.
	TimeZone *time.Location
}

// PrettyHandler renders records for a terminal: a bracketed timestamp, a
// colored level, the message and any attributes as a dim JSON object.
type PrettyHandler struct {
	l        *log.Logger
	level    slog.Leveler
	timeZone *time.Location
	attrs    []slog.Attr
	group    string
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.level != nil {
		min = h.level.Level()
	}
	return level >= min
}

func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	level := r.Level.String()

	switch r.Level {
	case slog.LevelDebug:
		level = color.MagentaString(level)
	case slog.LevelInfo:
		level = color.BlueString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	}

	fields := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	add := func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		if errVal, ok := a.Value.Any().(error); ok {
			fields[key] = errVal.Error()
		} else {
			fields[key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)

	var err error
	var b []byte
	if len(fields) > 0 {
		b, err = json.Marshal(fields)
		if err != nil {
			return err
		}
	}

	// Convert time to specified timezone if set
	logTime := r.Time
	if h.timeZone != nil {
		logTime = logTime.In(h.timeZone)
	}

	// Format: [2023-04-15 15:05:05.000 -0700 PDT]
	timeStr := logTime.Format("[2006-01-02 15:04:05.000 -0700 MST]")
	msg := color.CyanString(r.Message)

	h.l.Println(timeStr, level, msg, color.HiBlackString(string(b)))

	return nil
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

// Flush is a no-op: every record is written through immediately.
func (h *PrettyHandler) Flush() error { return nil }

// Close is a no-op; the handler never owns its writer.
func (h *PrettyHandler) Close() error { return nil }

func NewPrettyHandler(
	out io.Writer,
	opts PrettyHandlerOptions,
) *PrettyHandler {
	return &PrettyHandler{
		l:        log.New(out, "", 0),
		level:    opts.SlogOpts.Level,
		timeZone: opts.TimeZone,
	}
}
