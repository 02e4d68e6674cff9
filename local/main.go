package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"

	"github.com/brensch/selfbot/cogs"
	"github.com/brensch/selfbot/cogs/search"
	"github.com/brensch/selfbot/config"
	"github.com/brensch/selfbot/db"
	"github.com/brensch/selfbot/discord"
	"github.com/brensch/selfbot/log"
)

func main() {
	// Configure pretty colored logging with tint.
	handler := tint.NewHandler(colorable.NewColorableStdout(), &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "15:04:05.000",
		AddSource:  true,
	})
	slog.SetDefault(slog.New(handler))

	slog.Info("Self-bot starting (local)")

	// Get the user token from the environment.
	token := os.Getenv("USERTOKEN")
	if token == "" {
		slog.Error("USERTOKEN environment variable not set")
		os.Exit(1)
	}

	cfg := config.Default()

	// Command log goes to the console as well as the file.
	logs, err := log.Setup("selfbot", cfg.Logging.File)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logs.Close()
	logs.AddHandler(log.Wrap(handler))

	framework := log.NewChannel("discord", slog.LevelInfo)
	framework.AddHandler(log.Wrap(tint.NewHandler(colorable.NewColorableStderr(), &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: "15:04:05.000",
	})))
	defer framework.Close()
	discord.BridgeLogger(framework.Logger())

	// In-memory database; nothing is kept between runs.
	dbClient, err := db.NewClient("")
	if err != nil {
		slog.Error("failed to create database", "error", err)
		os.Exit(1)
	}
	defer dbClient.Stop()

	bot := discord.NewBot(discord.BotConfig{
		Prefixes: []string{".", "/", "me."},
		SelfBot:  true,
		HideHelp: true,
	}, discord.WithLogger(logs.Logger()))

	registry := cogs.Registry(cogs.Deps{
		DB:     dbClient,
		Search: search.NewClient(cfg.Search.Endpoint, cfg.Search.Results, cfg.Search.Timeout),
		// Every minute, so the heartbeat shows up while developing.
		Heartbeat: "0 * * * * *",
	})
	discord.LoadAll(bot, registry, []string{"meta", "regional_indicator", "repl", "search", "slashes"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("Bot is now running")
	if err := bot.Run(ctx, token, false); err != nil {
		slog.Error("bot stopped", "error", err)
	}
	slog.Info("Shutting down bot...")
}
