package log

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Handler is a slog.Handler that owns an output and can be flushed and
// released explicitly.
type Handler interface {
	slog.Handler
	Flush() error
	Close() error
}

// Channel is a named logging channel. Records logged through Logger are
// delivered to every handler currently attached, so detaching a handler
// takes effect for loggers created earlier too.
type Channel struct {
	name  string
	level slog.Leveler

	mu       sync.RWMutex
	handlers []Handler
}

// NewChannel returns a channel with no handlers attached.
func NewChannel(name string, level slog.Leveler) *Channel {
	if level == nil {
		level = slog.LevelDebug
	}
	return &Channel{name: name, level: level}
}

// Setup creates the application channel: a debug-level channel writing to
// a freshly truncated file at path.
func Setup(name, path string) (*Channel, error) {
	h, err := NewFileHandler(path, &FileHandlerOptions{
		Level:  slog.LevelDebug,
		Module: name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up %s logger: %w", name, err)
	}
	c := NewChannel(name, slog.LevelDebug)
	c.AddHandler(h)
	return c, nil
}

func (c *Channel) Name() string { return c.name }

// Logger returns a logger bound to the channel.
func (c *Channel) Logger() *slog.Logger {
	return slog.New(&channelHandler{c: c})
}

func (c *Channel) AddHandler(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

// RemoveHandler detaches h without closing it.
func (c *Channel) RemoveHandler(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = slices.DeleteFunc(c.handlers, func(x Handler) bool { return x == h })
}

// Handlers returns a snapshot of the attached handlers.
func (c *Channel) Handlers() []Handler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.handlers)
}

// Close flushes, closes and detaches every attached handler. The channel
// stays usable; records logged afterwards are dropped until a handler is
// attached again.
func (c *Channel) Close() error {
	var errs []error
	for _, h := range c.Handlers() {
		if err := h.Flush(); err != nil {
			errs = append(errs, err)
		}
		if err := h.Close(); err != nil {
			errs = append(errs, err)
		}
		c.RemoveHandler(h)
	}
	return errors.Join(errs...)
}

// channelHandler fans records out to the channel's handlers. Attributes
// and groups are replayed onto each handler at Handle time.
type channelHandler struct {
	c   *Channel
	ops []func(slog.Handler) slog.Handler
}

func (h *channelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.c.level.Level() {
		return false
	}
	for _, hh := range h.c.Handlers() {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *channelHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, hh := range h.c.Handlers() {
		if !hh.Enabled(ctx, r.Level) {
			continue
		}
		var target slog.Handler = hh
		for _, op := range h.ops {
			target = op(target)
		}
		if err := target.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *channelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(hh slog.Handler) slog.Handler { return hh.WithAttrs(attrs) })
}

func (h *channelHandler) WithGroup(name string) slog.Handler {
	return h.with(func(hh slog.Handler) slog.Handler { return hh.WithGroup(name) })
}

func (h *channelHandler) with(op func(slog.Handler) slog.Handler) *channelHandler {
	return &channelHandler{
		c:   h.c,
		ops: append(slices.Clip(h.ops), op),
	}
}

// Wrap adapts a handler that writes through and owns nothing, such as a
// console handler, so it can be attached to a Channel.
func Wrap(h slog.Handler) Handler {
	return writeThrough{h}
}

type writeThrough struct {
	slog.Handler
}

func (writeThrough) Flush() error { return nil }
func (writeThrough) Close() error { return nil }
