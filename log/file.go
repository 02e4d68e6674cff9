package log

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// TimeLayout matches the asctime format of the log file, e.g.
// "2025-03-14 09:26:53,589".
const TimeLayout = "2006-01-02 15:04:05,000"

type FileHandlerOptions struct {
	// Level is the minimum level written. Defaults to slog.LevelDebug.
	Level slog.Leveler
	// Module is used for the module column when the call site is unknown.
	Module string
}

// sink is the writer shared by a FileHandler and its WithAttrs/WithGroup
// derivatives.
type sink struct {
	mu     sync.Mutex
	w      *bufio.Writer
	c      io.Closer
	closed bool
}

// FileHandler writes one line per record in the format
//
//	2006-01-02 15:04:05,000 [LEVEL] module - message key=value
//
// where module is the source file of the call site without its extension.
type FileHandler struct {
	s      *sink
	level  slog.Leveler
	module string
	attrs  string
	group  string
}

// NewFileHandler creates (or truncates) the file at path and returns a
// handler writing to it. The file is closed by Close.
func NewFileHandler(path string, opts *FileHandlerOptions) (*FileHandler, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	h := NewWriterHandler(f, opts)
	h.s.c = f
	return h, nil
}

// NewWriterHandler returns a handler writing to w. The writer is never
// closed by the handler, which makes it suitable for in-memory sinks.
func NewWriterHandler(w io.Writer, opts *FileHandlerOptions) *FileHandler {
	if opts == nil {
		opts = &FileHandlerOptions{}
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelDebug
	}
	return &FileHandler{
		s:      &sink{w: bufio.NewWriter(w)},
		level:  level,
		module: opts.Module,
	}
}

func (h *FileHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *FileHandler) Handle(_ context.Context, r slog.Record) error {
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}

	var b strings.Builder
	b.WriteString(t.Format(TimeLayout))
	b.WriteString(" [")
	b.WriteString(LevelName(r.Level))
	b.WriteString("] ")
	b.WriteString(sourceModule(r.PC, h.module))
	b.WriteString(" - ")
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.group, a)
		return true
	})
	b.WriteByte('\n')

	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.s.closed {
		return os.ErrClosed
	}
	if _, err := h.s.w.WriteString(b.String()); err != nil {
		return err
	}
	return h.s.w.Flush()
}

func (h *FileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		writeAttr(&b, h.group, a)
	}
	clone := *h
	clone.attrs = b.String()
	return &clone
}

func (h *FileHandler) WithGroup(name string) slog.Handler {
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

// Flush writes any buffered data to the underlying writer.
func (h *FileHandler) Flush() error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.s.closed {
		return nil
	}
	return h.s.w.Flush()
}

// Close flushes and, when the handler opened the file itself, closes it.
// Subsequent records are rejected with os.ErrClosed.
func (h *FileHandler) Close() error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.s.closed {
		return nil
	}
	h.s.closed = true
	err := h.s.w.Flush()
	if h.s.c != nil {
		if cerr := h.s.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// LevelName returns the upper-case level label used in the log file.
func LevelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARNING"
	default:
		return "ERROR"
	}
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	b.WriteByte(' ')
	if group != "" {
		b.WriteString(group)
		b.WriteByte('.')
	}
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(a.Value.Resolve().String())
}

func sourceModule(pc uintptr, fallback string) string {
	if pc == 0 {
		return fallback
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	f, _ := frames.Next()
	if f.File == "" {
		return fallback
	}
	return strings.TrimSuffix(filepath.Base(f.File), ".go")
}
