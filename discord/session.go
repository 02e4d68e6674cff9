package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Session is the part of the gateway client the bot depends on.
// *discordgo.Session satisfies it.
type Session interface {
	Open() error
	Close() error
	AddHandler(handler interface{}) func()
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
}

// Dialer builds a session for a token. isBot marks a bot account; user
// account tokens are sent as-is.
type Dialer func(token string, isBot bool) (Session, error)

// DialDiscord is the default Dialer backed by discordgo.
func DialDiscord(token string, isBot bool) (Session, error) {
	if isBot {
		token = "Bot " + token
	}
	dg, err := discordgo.New(token)
	if err != nil {
		return nil, err
	}

	dg.LogLevel = discordgo.LogInformational
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	return &stateSession{Session: dg}, nil
}

// stateSession answers channel and guild lookups from the state cache
// before falling back to the REST API.
type stateSession struct {
	*discordgo.Session
}

func (s *stateSession) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if s.State != nil {
		if c, err := s.State.Channel(channelID); err == nil {
			return c, nil
		}
	}
	return s.Session.Channel(channelID, options...)
}

func (s *stateSession) Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error) {
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			return g, nil
		}
	}
	return s.Session.Guild(guildID, options...)
}

// BridgeLogger routes discordgo's package-level logger into l.
func BridgeLogger(l *slog.Logger) {
	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		level := slog.LevelDebug
		switch msgL {
		case discordgo.LogError:
			level = slog.LevelError
		case discordgo.LogWarning:
			level = slog.LevelWarn
		case discordgo.LogInformational:
			level = slog.LevelInfo
		}
		l.Log(context.Background(), level, fmt.Sprintf(format, a...))
	}
}
