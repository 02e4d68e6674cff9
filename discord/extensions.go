package discord

import (
	"fmt"
	"slices"
)

// Setup registers an extension's commands and schedules on the bot.
type Setup func(b *Bot) error

// Registry maps extension names to their setup functions.
type Registry map[string]Setup

type ExtensionNotFoundError struct {
	Name string
}

func (e *ExtensionNotFoundError) Error() string {
	return fmt.Sprintf("extension %q is not registered", e.Name)
}

type ExtensionAlreadyLoadedError struct {
	Name string
}

func (e *ExtensionAlreadyLoadedError) Error() string {
	return fmt.Sprintf("extension %q is already loaded", e.Name)
}

// LoadAll loads names from registry in order. A failing extension is
// reported on the bot's stdout and skipped. It returns the names that
// loaded.
func LoadAll(b *Bot, registry Registry, names []string) []string {
	var loaded []string
	for _, name := range names {
		var err error
		if setup, ok := registry[name]; ok {
			err = b.LoadExtension(name, setup)
		} else {
			err = &ExtensionNotFoundError{Name: name}
		}
		if err != nil {
			fmt.Fprintf(b.stdout, "Failed to load extension %s\n%s: %v\n", name, ErrorType(err), err)
			continue
		}
		loaded = append(loaded, name)
	}
	return loaded
}

// LoadExtension runs setup. If setup fails or panics, every command and
// schedule it registered is removed again.
func (b *Bot) LoadExtension(name string, setup Setup) (err error) {
	b.mu.Lock()
	if slices.Contains(b.extensions, name) {
		b.mu.Unlock()
		return &ExtensionAlreadyLoadedError{Name: name}
	}
	b.loading = name
	b.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}

		b.mu.Lock()
		b.loading = ""
		b.mu.Unlock()

		if err != nil {
			b.removeOwned(name)
			return
		}

		b.mu.Lock()
		b.extensions = append(b.extensions, name)
		b.mu.Unlock()
	}()

	return setup(b)
}

// UnloadExtension removes the extension and everything it registered.
func (b *Bot) UnloadExtension(name string) error {
	b.mu.Lock()
	if !slices.Contains(b.extensions, name) {
		b.mu.Unlock()
		return &ExtensionNotFoundError{Name: name}
	}
	b.extensions = slices.DeleteFunc(b.extensions, func(e string) bool { return e == name })
	b.mu.Unlock()

	b.removeOwned(name)
	return nil
}

// Extensions returns the loaded extension names in load order.
func (b *Bot) Extensions() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.extensions)
}

func (b *Bot) removeOwned(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands = slices.DeleteFunc(b.commands, func(c ownedCommand) bool { return c.extension == name })
	b.schedules = slices.DeleteFunc(b.schedules, func(s ownedSchedule) bool { return s.extension == name })
}
