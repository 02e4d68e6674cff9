package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brensch/selfbot/cogs"
	"github.com/brensch/selfbot/cogs/search"
	"github.com/brensch/selfbot/config"
	"github.com/brensch/selfbot/db"
	"github.com/brensch/selfbot/discord"
	"github.com/brensch/selfbot/log"
)

// initialExtensions are loaded in this order on startup.
var initialExtensions = []string{
	"meta",
	"regional_indicator",
	"repl",
	"search",
	"slashes",
}

var prefixes = []string{".", "/", "me."}

// app carries what the process wiring needs from its surroundings.
type app struct {
	stdout, stderr io.Writer
	dial           discord.Dialer
	configs        []string

	// logs is the application channel, kept for inspection after run.
	logs *log.Channel
}

func main() {
	// Configure pretty colored logging.
	opts := log.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}
	slog.SetDefault(slog.New(log.NewPrettyHandler(os.Stdout, opts)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		dial:    discord.DialDiscord,
		configs: config.DefaultLocations,
	}
	if err := a.run(ctx); err != nil {
		slog.Error("selfbot stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

// run wires the bot and blocks until ctx is done. The application log
// channel is torn down before it returns.
func (a *app) run(ctx context.Context) error {
	slog.Info("Self-bot starting")

	cfg, err := config.LoadFrom(a.configs)
	if err != nil {
		return err
	}
	slog.Info("Configuration loaded successfully")

	logs, err := log.Setup("selfbot", cfg.Logging.File)
	if err != nil {
		return err
	}
	a.logs = logs
	defer func() {
		if err := logs.Close(); err != nil {
			slog.Error("failed to close log channel", "error", err)
		}
	}()

	// discordgo's own chatter goes to a coarser console channel.
	framework := log.NewChannel("discord", slog.LevelInfo)
	framework.AddHandler(log.NewPrettyHandler(a.stderr, log.PrettyHandlerOptions{}))
	defer framework.Close()
	discord.BridgeLogger(framework.Logger())

	creds, err := config.LoadCredentials(cfg.Credentials.Path)
	if err != nil {
		return err
	}

	dbClient, err := db.NewClient(cfg.Database.Directory)
	if err != nil {
		return err
	}
	if err := dbClient.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Stop(); err != nil {
			slog.Error("failed to stop database", "error", err)
		}
	}()

	bot := discord.NewBot(discord.BotConfig{
		Prefixes:        prefixes,
		SelfBot:         true,
		HideHelp:        true,
		NotifyChannelID: cfg.Schedules.NotifyChannelID,
	},
		discord.WithLogger(logs.Logger()),
		discord.WithOutput(a.stdout, a.stderr),
		discord.WithDialer(a.dial),
	)

	registry := cogs.Registry(cogs.Deps{
		DB:        dbClient,
		Search:    search.NewClient(cfg.Search.Endpoint, cfg.Search.Results, cfg.Search.Timeout),
		Heartbeat: cfg.Schedules.Heartbeat,
	})
	loaded := discord.LoadAll(bot, registry, initialExtensions)
	slog.Info("Extensions loaded", "loaded", loaded)

	return bot.Run(ctx, creds.Token, false)
}
