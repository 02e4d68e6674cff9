package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brensch/selfbot/config"
	"github.com/brensch/selfbot/discord"
	"github.com/brensch/selfbot/discord/discordtest"
)

func writeConfig(t *testing.T, dir, credentials string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	body := "credentials:\n  path: " + credentials + "\n" +
		"logging:\n  file: " + filepath.Join(dir, "logging.log") + "\n" +
		"search:\n  endpoint: http://127.0.0.1:1/\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestRunMissingCredentialsNeverDials(t *testing.T) {
	dir := t.TempDir()
	dialed := false
	a := &app{
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
		configs: []string{writeConfig(t, dir, filepath.Join(dir, "missing.json"))},
		dial: func(string, bool) (discord.Session, error) {
			dialed = true
			return discordtest.NewSession(), nil
		},
	}

	err := a.run(context.Background())

	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if dialed {
		t.Error("dialer called despite missing credentials")
	}
	if got := len(a.logs.Handlers()); got != 0 {
		t.Errorf("expected no handlers after run, got %d", got)
	}
}

func TestRunLoadsExtensionsAndTearsDown(t *testing.T) {
	dir := t.TempDir()
	creds := filepath.Join(dir, "credentials.json")
	if err := os.WriteFile(creds, []byte(`{"token": "user-token"}`), 0600); err != nil {
		t.Fatalf("failed to write credentials: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := discordtest.NewSession()
	var gotToken string
	var gotIsBot bool
	stdout := &bytes.Buffer{}
	a := &app{
		stdout:  stdout,
		stderr:  &bytes.Buffer{},
		configs: []string{writeConfig(t, dir, creds)},
		dial: func(token string, isBot bool) (discord.Session, error) {
			gotToken, gotIsBot = token, isBot
			// Shut down as soon as the connection is up.
			cancel()
			return session, nil
		},
	}

	if err := a.run(ctx); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if gotToken != "user-token" || gotIsBot {
		t.Errorf("dialer got (%q, %v)", gotToken, gotIsBot)
	}
	if stdout.Len() != 0 {
		t.Errorf("extension failures reported: %q", stdout.String())
	}
	if !session.Opened() || !session.Closed() {
		t.Errorf("session opened=%v closed=%v", session.Opened(), session.Closed())
	}
	if got := len(a.logs.Handlers()); got != 0 {
		t.Errorf("expected no handlers after run, got %d", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "logging.log")); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}
