package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom([]string{filepath.Join(t.TempDir(), "missing.yaml")})
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Credentials.Path != "credentials.json" {
		t.Errorf("expected credentials.json, got %q", cfg.Credentials.Path)
	}
	if cfg.Logging.File != "logging.log" {
		t.Errorf("expected logging.log, got %q", cfg.Logging.File)
	}
	if cfg.Search.Results != 3 {
		t.Errorf("expected 3 search results, got %d", cfg.Search.Results)
	}
	if cfg.Search.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.Search.Timeout)
	}
	if cfg.Schedules.Heartbeat != "0 0 * * * *" {
		t.Errorf("unexpected heartbeat %q", cfg.Schedules.Heartbeat)
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
logging:
  file: /tmp/selfbot.log
search:
  results: 5
  timeout: 2s
schedules:
  notify_channel_id: "111"
`)
	t.Setenv("APP_SCHEDULES_NOTIFY_CHANNEL_ID", "222")
	t.Setenv("APP_DATABASE_DIRECTORY", "/var/lib/selfbot")

	cfg, err := LoadFrom([]string{path})
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Logging.File != "/tmp/selfbot.log" {
		t.Errorf("file value not applied, got %q", cfg.Logging.File)
	}
	if cfg.Search.Results != 5 || cfg.Search.Timeout != 2*time.Second {
		t.Errorf("unexpected search config %+v", cfg.Search)
	}
	if cfg.Schedules.NotifyChannelID != "222" {
		t.Errorf("environment should override file, got %q", cfg.Schedules.NotifyChannelID)
	}
	if cfg.Database.Directory != "/var/lib/selfbot" {
		t.Errorf("unexpected database directory %q", cfg.Database.Directory)
	}
}

func TestLoadFromRejectsInvalidResults(t *testing.T) {
	path := writeFile(t, "config.yaml", "search:\n  results: 0\n")
	if _, err := LoadFrom([]string{path}); err == nil {
		t.Fatal("expected error for zero search results")
	}
}

func TestLoadCredentials(t *testing.T) {
	path := writeFile(t, "credentials.json", `{"token": "mfa.secret", "google_api_key": "abc"}`)

	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials failed: %v", err)
	}
	if creds.Token != "mfa.secret" {
		t.Errorf("expected token mfa.secret, got %q", creds.Token)
	}
	if creds.Extra["google_api_key"] != "abc" {
		t.Errorf("expected extra key to be kept, got %v", creds.Extra)
	}
	if _, ok := creds.Extra["token"]; ok {
		t.Errorf("token should not be duplicated into Extra")
	}
}

func TestLoadCredentialsErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "credentials.json") },
		},
		{
			name: "invalid json",
			path: func(t *testing.T) string { return writeFile(t, "credentials.json", `{"token": `) },
		},
		{
			name: "missing token",
			path: func(t *testing.T) string { return writeFile(t, "credentials.json", `{"other": "value"}`) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCredentials(tt.path(t))
			if err == nil {
				t.Fatal("expected an error")
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigurationError, got %T: %v", err, err)
			}
		})
	}
}
