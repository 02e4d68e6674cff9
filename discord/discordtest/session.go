// Package discordtest provides an in-memory gateway session for tests.
package discordtest

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Sent is a message sent or edited through a Session.
type Sent struct {
	ChannelID string
	MessageID string
	Content   string
	Embed     *discordgo.MessageEmbed
}

// Session records every call and answers channel and guild lookups from
// its maps. It satisfies discord.Session.
type Session struct {
	Channels map[string]*discordgo.Channel
	Guilds   map[string]*discordgo.Guild
	// OpenErr is returned by Open.
	OpenErr error

	mu       sync.Mutex
	handlers []interface{}
	sent     []Sent
	edits    []Sent
	opened   bool
	closed   bool
}

// NewSession returns a session knowing a direct message channel "dm", a
// group channel "group" and the channel "general" in guild "g1" named
// "Test Server".
func NewSession() *Session {
	return &Session{
		Channels: map[string]*discordgo.Channel{
			"dm":      {ID: "dm", Type: discordgo.ChannelTypeDM},
			"group":   {ID: "group", Type: discordgo.ChannelTypeGroupDM},
			"general": {ID: "general", Name: "general", GuildID: "g1", Type: discordgo.ChannelTypeGuildText},
		},
		Guilds: map[string]*discordgo.Guild{
			"g1": {ID: "g1", Name: "Test Server"},
		},
	}
}

func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = true
	return s.OpenErr
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Session) AddHandler(handler interface{}) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
	return func() {}
}

func (s *Session) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Sent{ChannelID: channelID, Content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (s *Session) ChannelMessageEdit(channelID, messageID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, Sent{ChannelID: channelID, MessageID: messageID, Content: content})
	return &discordgo.Message{ID: messageID, ChannelID: channelID, Content: content}, nil
}

func (s *Session) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Sent{ChannelID: channelID, Embed: embed})
	return &discordgo.Message{ChannelID: channelID, Embeds: []*discordgo.MessageEmbed{embed}}, nil
}

func (s *Session) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if c, ok := s.Channels[channelID]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown channel %s", channelID)
}

func (s *Session) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	if g, ok := s.Guilds[guildID]; ok {
		return g, nil
	}
	return nil, fmt.Errorf("unknown guild %s", guildID)
}

// SentMessages returns the messages sent so far.
func (s *Session) SentMessages() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Sent(nil), s.sent...)
}

// Edits returns the message edits made so far.
func (s *Session) Edits() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Sent(nil), s.edits...)
}

// LastEdit returns the content of the most recent edit, or "".
func (s *Session) LastEdit() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.edits) == 0 {
		return ""
	}
	return s.edits[len(s.edits)-1].Content
}

func (s *Session) Handlers() []interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]interface{}(nil), s.handlers...)
}

func (s *Session) Opened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
