package discord

import (
	"fmt"
	"strings"

	"emperror.dev/errors"
	"github.com/bwmarrin/discordgo"
)

// PrivateMessage is the destination label of direct and group messages.
const PrivateMessage = "Private Message"

// Hooks observes the bot's lifecycle. Implementations must not block:
// they run inline with message dispatch.
type Hooks interface {
	// OnReady is called when the gateway handshake completes.
	OnReady(user *discordgo.User)
	// OnCommand is called for every recognised command before it runs.
	OnCommand(ctx *Context)
	// OnCommandError is called when a command fails or panics.
	OnCommandError(ctx *Context, err *CommandError)
}

// CommandError wraps the error a command returned, or the value it
// panicked with.
type CommandError struct {
	Command string
	// Err is the original error.
	Err error

	trace error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Trace returns the original error annotated with the stack trace captured
// when the command failed. Format it with %+v.
func (e *CommandError) Trace() error {
	if e.trace == nil {
		return e.Err
	}
	return e.trace
}

// PanicError is the error recorded for a recovered panic.
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (b *Bot) invoke(ctx *Context) (cerr *CommandError) {
	defer func() {
		if r := recover(); r != nil {
			err := &PanicError{Value: r}
			cerr = &CommandError{Command: ctx.Command.Name(), Err: err, trace: errors.WithStack(err)}
		}
	}()

	if err := ctx.Command.Invoke(ctx); err != nil {
		return &CommandError{Command: ctx.Command.Name(), Err: err, trace: errors.WithStackIf(err)}
	}
	return nil
}

// OnReady prints the identity banner and records the uptime of the first
// ready event. Later ready events leave the uptime untouched.
func (b *Bot) OnReady(user *discordgo.User) {
	fmt.Fprintln(b.stdout, "Logged in as")
	if user != nil {
		fmt.Fprintln(b.stdout, user.Username)
		fmt.Fprintln(b.stdout, user.ID)
	}
	fmt.Fprintln(b.stdout, "------")

	now := b.now().UTC()
	b.uptime.CompareAndSwap(nil, &now)
}

// OnCommand logs where the command was invoked and the message text.
func (b *Bot) OnCommand(ctx *Context) {
	b.log.Info(fmt.Sprintf("%s: %s", ctx.Destination(), ctx.Message.Content))
}

// OnCommandError logs the failure and prints its stack trace to stderr.
func (b *Bot) OnCommandError(ctx *Context, err *CommandError) {
	b.log.Error(fmt.Sprintf("Command error in %s:", err.Command))
	fmt.Fprintf(b.stderr, "%+v\n", err.Trace())
	b.log.Error(fmt.Sprintf("%s: %v", ErrorType(err.Err), err.Err))
}

// Destination describes where a command was invoked: "Private Message"
// for direct and group messages, "#channel (guild)" otherwise.
func Destination(channel *discordgo.Channel, guild *discordgo.Guild) string {
	if channel == nil || isPrivate(channel) {
		return PrivateMessage
	}
	guildName := ""
	if guild != nil {
		guildName = guild.Name
	}
	return fmt.Sprintf("#%s (%s)", channel.Name, guildName)
}

func isPrivate(c *discordgo.Channel) bool {
	return c.Type == discordgo.ChannelTypeDM || c.Type == discordgo.ChannelTypeGroupDM
}

// ErrorType names the dynamic type of err, e.g. "discord.MissingArgumentError".
func ErrorType(err error) string {
	if err == nil {
		return "<nil>"
	}
	return strings.TrimLeft(fmt.Sprintf("%T", err), "*")
}
