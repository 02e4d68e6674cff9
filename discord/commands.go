package discord

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Request is a blank interface for the command request definitions.
type Request interface{}

// NoArgs is the request of commands that take no arguments.
type NoArgs struct{}

// Command is a prefixed text command.
type Command interface {
	Name() string
	Aliases() []string
	Help() string
	// Usage describes the arguments, e.g. "<text...> [count]".
	Usage() string
	Hidden() bool
	Invoke(ctx *Context) error
}

// MissingArgumentError reports a required argument that was not given.
type MissingArgumentError struct {
	Argument string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s is a required argument that is missing", e.Argument)
}

// GenericCommand decodes the invocation's arguments into T and calls
// Handler with it.
type GenericCommand[T Request] struct {
	CommandName    string
	CommandAliases []string
	Description    string
	IsHidden       bool
	// Handler is the function to execute for the command.
	Handler func(ctx *Context, req T) error
}

// NewCommand is a generic constructor for a command whose arguments are
// described by the request struct T. Positional arguments are assigned to
// the exported fields of T in declaration order and converted with
// mapstructure. The "discord" struct tag controls each field:
//
//   - optional:    the argument may be omitted.
//   - rest:        the field takes the remaining text verbatim.
//   - description: text shown by help.
//   - default:     value assigned if the field is still zero after decoding.
func NewCommand[T Request](name, description string, handler func(ctx *Context, req T) error) *GenericCommand[T] {
	return &GenericCommand[T]{
		CommandName: name,
		Description: description,
		Handler:     handler,
	}
}

// WithAliases adds alternative names.
func (c *GenericCommand[T]) WithAliases(aliases ...string) *GenericCommand[T] {
	c.CommandAliases = append(c.CommandAliases, aliases...)
	return c
}

// SetHidden keeps the command out of help listings.
func (c *GenericCommand[T]) SetHidden(hidden bool) *GenericCommand[T] {
	c.IsHidden = hidden
	return c
}

func (c *GenericCommand[T]) Name() string      { return c.CommandName }
func (c *GenericCommand[T]) Aliases() []string { return c.CommandAliases }
func (c *GenericCommand[T]) Help() string      { return c.Description }
func (c *GenericCommand[T]) Hidden() bool      { return c.IsHidden }

func (c *GenericCommand[T]) Usage() string {
	var req T
	return structToUsage(req)
}

func (c *GenericCommand[T]) Invoke(ctx *Context) error {
	req, err := decodeArgs[T](ctx.RawArgs)
	if err != nil {
		return err
	}
	return c.Handler(ctx, req)
}

// decodeArgs builds a T from the raw argument text.
func decodeArgs[T Request](raw string) (T, error) {
	var req T
	t := reflect.TypeOf(req)
	if t == nil || t.Kind() != reflect.Struct {
		return req, nil
	}

	tokens := tokenize(raw)
	values := make(map[string]interface{})
	pos := 0
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tags := parseDiscordTag(field.Tag.Get("discord"))
		_, optional := tags["optional"]
		_, rest := tags["rest"]

		if pos >= len(tokens) {
			if !optional {
				return req, &MissingArgumentError{Argument: strings.ToLower(field.Name)}
			}
			continue
		}

		if rest {
			values[field.Name] = strings.TrimSpace(raw[tokens[pos].start:])
			pos = len(tokens)
			continue
		}
		values[field.Name] = tokens[pos].value
		pos++
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &req,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return req, err
	}
	if err := decoder.Decode(values); err != nil {
		return req, fmt.Errorf("bad argument: %w", err)
	}

	if err := setDefaults(&req, values); err != nil {
		return req, err
	}
	return req, nil
}

type helpRequest struct {
	Command string `discord:"optional,description:command to describe"`
}

func (b *Bot) helpCommand() Command {
	return NewCommand("help", "Shows this message", func(ctx *Context, req helpRequest) error {
		var out string
		if req.Command != "" {
			cmd := b.Command(req.Command)
			if cmd == nil || cmd.Hidden() {
				return fmt.Errorf("no command called %q found", req.Command)
			}
			out = commandHelp(ctx.Prefix, cmd)
		} else {
			out = b.helpListing(ctx.Prefix)
		}
		_, err := ctx.Send("```\n" + out + "```")
		return err
	}).SetHidden(b.config.HideHelp)
}

func commandHelp(prefix string, cmd Command) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s%s", prefix, cmd.Name())
	if usage := cmd.Usage(); usage != "" {
		fmt.Fprintf(&sb, " %s", usage)
	}
	sb.WriteString("\n")
	if len(cmd.Aliases()) > 0 {
		fmt.Fprintf(&sb, "Aliases: %s\n", strings.Join(cmd.Aliases(), ", "))
	}
	if cmd.Help() != "" {
		fmt.Fprintf(&sb, "\n%s\n", cmd.Help())
	}
	return sb.String()
}

// helpListing groups visible commands by the extension that registered them.
func (b *Bot) helpListing(prefix string) string {
	groups := make(map[string][]Command)
	width := 0
	for _, cmd := range b.Commands() {
		if cmd.Hidden() {
			continue
		}
		ext := b.ExtensionOf(cmd.Name())
		if ext == "" {
			ext = "No Category"
		}
		groups[ext] = append(groups[ext], cmd)
		if len(cmd.Name()) > width {
			width = len(cmd.Name())
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "%s:\n", name)
		for _, cmd := range groups[name] {
			fmt.Fprintf(&sb, "  %-*s %s\n", width, cmd.Name(), cmd.Help())
		}
	}
	fmt.Fprintf(&sb, "\nType %shelp command for more info on a command.\n", prefix)
	return sb.String()
}
