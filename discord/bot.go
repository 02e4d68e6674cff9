package discord

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// BotConfig contains configuration for the bot.
type BotConfig struct {
	// Prefixes are tried in order; the first match wins.
	Prefixes []string
	// SelfBot restricts commands to messages written by the logged-in user.
	SelfBot bool
	// HideHelp keeps the help command out of its own listing.
	HideHelp bool
	// NotifyChannelID receives schedule output. Empty means log only.
	NotifyChannelID string
}

// Bot routes prefixed messages to registered commands and reports the
// command lifecycle through Hooks.
type Bot struct {
	config BotConfig
	log    *slog.Logger
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
	dial   Dialer
	hooks  Hooks

	uptime atomic.Pointer[time.Time]
	user   atomic.Pointer[discordgo.User]

	mu      sync.RWMutex
	session Session
	// scheduleManager is set while Run has schedules running.
	scheduleManager *scheduleManager
	commands        []ownedCommand
	schedules       []ownedSchedule
	extensions      []string
	loading         string
}

type ownedCommand struct {
	Command
	extension string
}

type ownedSchedule struct {
	Schedule
	extension string
}

type Option func(*Bot)

// WithLogger sets the logger command records are written to.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) { b.log = l }
}

// WithOutput sets the console streams used for the ready banner,
// extension failures and error traces.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(b *Bot) {
		b.stdout = stdout
		b.stderr = stderr
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Bot) { b.now = now }
}

func WithDialer(d Dialer) Option {
	return func(b *Bot) { b.dial = d }
}

// WithSession attaches a session the caller owns and drives through
// HandleReady and HandleMessage instead of Run.
func WithSession(s Session) Option {
	return func(b *Bot) { b.session = s }
}

// WithHooks replaces the bot's own lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(b *Bot) { b.hooks = h }
}

// NewBot creates a bot with the built-in help command registered. It does
// not connect; see Run.
func NewBot(cfg BotConfig, opts ...Option) *Bot {
	b := &Bot{
		config: cfg,
		log:    slog.Default(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
		dial:   DialDiscord,
	}
	b.hooks = b
	for _, opt := range opts {
		opt(b)
	}

	if err := b.AddCommand(b.helpCommand()); err != nil {
		// Nothing else is registered yet.
		panic(err)
	}

	return b
}

func (b *Bot) Config() BotConfig { return b.config }

func (b *Bot) Logger() *slog.Logger { return b.log }

// Uptime returns the time of the first ready event, if there was one.
func (b *Bot) Uptime() (time.Time, bool) {
	t := b.uptime.Load()
	if t == nil {
		return time.Time{}, false
	}
	return *t, true
}

// User returns the logged-in user, or nil before the first ready event.
func (b *Bot) User() *discordgo.User {
	return b.user.Load()
}

// Session returns the current session, or nil when not running.
func (b *Bot) Session() Session {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.session
}

// Run connects with token and blocks until ctx is done, then closes the
// session. isBot must be false for user account tokens.
func (b *Bot) Run(ctx context.Context, token string, isBot bool) error {
	s, err := b.dial(token, isBot)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b.mu.Lock()
	b.session = s
	b.mu.Unlock()

	s.AddHandler(b.onReady)
	s.AddHandler(b.onMessageCreate)

	if err := s.Open(); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	if err := b.startSchedules(); err != nil {
		slog.Error("failed to start schedule manager", "error", err)
		b.Close()
		return err
	}

	slog.Info("bot is running", "commands", len(b.Commands()), "extensions", b.Extensions())
	<-ctx.Done()

	return b.Close()
}

// startSchedules starts the registered schedules unless the bot was closed
// since Run connected.
func (b *Bot) startSchedules() error {
	schedules := b.Schedules()
	if len(schedules) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return nil
	}
	sm := newScheduleManager(b, schedules)
	if err := sm.start(); err != nil {
		return err
	}
	b.scheduleManager = sm
	return nil
}

// Close stops the schedules and closes the session.
func (b *Bot) Close() error {
	slog.Info("shutting down bot")

	b.mu.Lock()
	sm, s := b.scheduleManager, b.session
	b.scheduleManager, b.session = nil, nil
	b.mu.Unlock()

	if sm != nil {
		sm.stop()
	}

	if s == nil {
		return nil
	}
	return s.Close()
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.HandleReady(r.User)
}

// HandleReady records the logged-in user and reports the ready event.
func (b *Bot) HandleReady(user *discordgo.User) {
	if user != nil {
		b.user.Store(user)
	}
	b.hooks.OnReady(user)
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	b.HandleMessage(m.Message)
}

// HandleMessage runs the command msg invokes, if any.
func (b *Bot) HandleMessage(msg *discordgo.Message) {
	if msg == nil || msg.Author == nil {
		return
	}
	if b.config.SelfBot {
		me := b.user.Load()
		if me == nil || msg.Author.ID != me.ID {
			return
		}
	} else if msg.Author.Bot {
		return
	}

	prefix, rest, ok := b.matchPrefix(msg.Content)
	if !ok {
		return
	}
	name, raw := splitInvocation(rest)
	if name == "" {
		return
	}
	cmd := b.Command(name)
	if cmd == nil {
		return
	}

	session := b.Session()
	channel, guild := resolveDestination(session, msg)

	ctx := &Context{
		Bot:         b,
		Session:     session,
		Message:     msg,
		Channel:     channel,
		Guild:       guild,
		Prefix:      prefix,
		InvokedWith: name,
		Command:     cmd,
		Args:        tokenValues(tokenize(raw)),
		RawArgs:     raw,
	}

	b.hooks.OnCommand(ctx)
	if err := b.invoke(ctx); err != nil {
		b.hooks.OnCommandError(ctx, err)
	}
}

func (b *Bot) matchPrefix(content string) (prefix, rest string, ok bool) {
	for _, p := range b.config.Prefixes {
		if p != "" && strings.HasPrefix(content, p) {
			return p, content[len(p):], true
		}
	}
	return "", "", false
}

// splitInvocation separates the command name from its argument text. The
// name must follow the prefix directly.
func splitInvocation(s string) (name, raw string) {
	if s == "" {
		return "", ""
	}
	if r, _ := utf8.DecodeRuneInString(s); unicode.IsSpace(r) {
		return "", ""
	}
	i := strings.IndexAny(s, " \t\r\n")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func resolveDestination(s Session, msg *discordgo.Message) (*discordgo.Channel, *discordgo.Guild) {
	var channel *discordgo.Channel
	if s != nil {
		if c, err := s.Channel(msg.ChannelID); err == nil {
			channel = c
		}
	}
	if channel == nil {
		channel = &discordgo.Channel{ID: msg.ChannelID, Name: msg.ChannelID, GuildID: msg.GuildID, Type: discordgo.ChannelTypeGuildText}
		if msg.GuildID == "" {
			channel.Type = discordgo.ChannelTypeDM
		}
	}

	guildID := channel.GuildID
	if guildID == "" {
		guildID = msg.GuildID
	}
	if guildID == "" || isPrivate(channel) {
		return channel, nil
	}
	if s != nil {
		if g, err := s.Guild(guildID); err == nil {
			return channel, g
		}
	}
	return channel, &discordgo.Guild{ID: guildID, Name: guildID}
}

// AddCommand registers cmd. During extension setup the command is owned by
// the extension being loaded.
func (b *Bot) AddCommand(cmd Command) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := append([]string{cmd.Name()}, cmd.Aliases()...)
	for _, existing := range b.commands {
		for _, n := range names {
			if matchesName(existing.Command, n) {
				return fmt.Errorf("command or alias %q is already registered", n)
			}
		}
	}
	b.commands = append(b.commands, ownedCommand{Command: cmd, extension: b.loading})
	return nil
}

// Command looks up a command by name or alias.
func (b *Bot) Command(name string) Command {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.commands {
		if matchesName(c.Command, name) {
			return c.Command
		}
	}
	return nil
}

// Commands returns the registered commands in registration order.
func (b *Bot) Commands() []Command {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Command, 0, len(b.commands))
	for _, c := range b.commands {
		out = append(out, c.Command)
	}
	return out
}

// ExtensionOf returns the extension that registered the command called
// name; built-in commands return "".
func (b *Bot) ExtensionOf(name string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.commands {
		if c.Name() == name {
			return c.extension
		}
	}
	return ""
}

func matchesName(c Command, name string) bool {
	if c.Name() == name {
		return true
	}
	return slices.Contains(c.Aliases(), name)
}
