package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Context carries one command invocation.
type Context struct {
	Bot     *Bot
	Session Session
	Message *discordgo.Message
	Channel *discordgo.Channel
	// Guild is nil for private channels.
	Guild *discordgo.Guild

	Prefix      string
	InvokedWith string
	Command     Command
	// Args are the whitespace separated arguments, with double quotes
	// grouping words.
	Args []string
	// RawArgs is the message text after the command name.
	RawArgs string
}

func (c *Context) IsPrivate() bool {
	return c.Channel == nil || isPrivate(c.Channel)
}

// Destination returns the label used when logging the invocation.
func (c *Context) Destination() string {
	return Destination(c.Channel, c.Guild)
}

// Send posts content to the invoking channel.
func (c *Context) Send(content string) (*discordgo.Message, error) {
	return c.Session.ChannelMessageSend(c.Message.ChannelID, content)
}

func (c *Context) SendEmbed(embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return c.Session.ChannelMessageSendEmbed(c.Message.ChannelID, embed)
}

// Edit replaces the content of the invoking message. A self-bot can only
// edit messages it wrote, which is every message it reacts to.
func (c *Context) Edit(content string) (*discordgo.Message, error) {
	return c.Session.ChannelMessageEdit(c.Message.ChannelID, c.Message.ID, content)
}

// Reply edits the invoking message in self-bot mode and sends a new
// message otherwise.
func (c *Context) Reply(content string) (*discordgo.Message, error) {
	if c.Bot != nil && c.Bot.config.SelfBot {
		return c.Edit(content)
	}
	return c.Send(content)
}
