// Package cogs assembles the bot's extensions into a registry.
package cogs

import (
	"github.com/brensch/selfbot/cogs/meta"
	"github.com/brensch/selfbot/cogs/regionalindicator"
	"github.com/brensch/selfbot/cogs/repl"
	"github.com/brensch/selfbot/cogs/search"
	"github.com/brensch/selfbot/cogs/slashes"
	"github.com/brensch/selfbot/db"
	"github.com/brensch/selfbot/discord"
)

// Deps are the collaborators extensions are built with.
type Deps struct {
	DB     *db.Client
	Search *search.Client
	// Heartbeat is the cron expression of the meta heartbeat.
	Heartbeat string
}

// Registry returns every known extension by name.
func Registry(deps Deps) discord.Registry {
	return discord.Registry{
		"meta":               meta.New(deps.Heartbeat),
		"regional_indicator": regionalindicator.New(),
		"repl":               repl.New(deps.DB),
		"search":             search.New(deps.Search),
		"slashes":            slashes.New(),
	}
}
