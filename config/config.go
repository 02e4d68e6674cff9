package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds the ambient configuration of the self-bot. Bot behaviour
// (prefixes, extensions) is fixed in the entry point.
type AppConfig struct {
	Credentials struct {
		Path string `koanf:"path" yaml:"path"`
	} `koanf:"credentials" yaml:"credentials"`

	Logging struct {
		File string `koanf:"file" yaml:"file"`
	} `koanf:"logging" yaml:"logging"`

	Database struct {
		// Directory holds the DuckDB file. Empty means in-memory.
		Directory string `koanf:"directory" yaml:"directory"`
	} `koanf:"database" yaml:"database"`

	Search struct {
		Endpoint string        `koanf:"endpoint" yaml:"endpoint"`
		Results  int           `koanf:"results" yaml:"results"`
		Timeout  time.Duration `koanf:"timeout" yaml:"timeout"`
	} `koanf:"search" yaml:"search"`

	Schedules struct {
		Heartbeat       string `koanf:"heartbeat" yaml:"heartbeat"`
		NotifyChannelID string `koanf:"notify_channel_id" yaml:"notify_channel_id"`
	} `koanf:"schedules" yaml:"schedules"`
}

// DefaultLocations are searched in order; the first existing file wins.
var DefaultLocations = []string{
	"/etc/selfbot/config.yaml",        // Standard system location
	"/config/config.yaml",             // Docker mounted volume location
	filepath.Join(".", "config.yaml"), // Local file in current directory
}

var defaults = map[string]interface{}{
	"credentials.path":    "credentials.json",
	"logging.file":        "logging.log",
	"database.directory":  "",
	"search.endpoint":     "https://html.duckduckgo.com/html/",
	"search.results":      3,
	"search.timeout":      "10s",
	"schedules.heartbeat": "0 0 * * * *",
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *AppConfig {
	cfg, err := LoadFrom(nil)
	if err != nil {
		// The defaults are static; failing to decode them is a programming error.
		panic(err)
	}
	return cfg
}

// LoadFrom loads configuration with the following precedence, lowest first:
// built-in defaults, the first existing file in locations, APP_ environment
// variables.
func LoadFrom(locations []string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	configLoaded := false
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			slog.Info("Loading configuration file", "path", loc)
			if err := k.Load(file.Provider(loc), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config file %s: %w", loc, err)
			}
			configLoaded = true
			break
		}
	}

	if !configLoaded && len(locations) > 0 {
		slog.Debug("No config file found, using defaults",
			"searched_locations", locations)
	}

	// Format: APP_SCHEDULES_NOTIFY_CHANNEL_ID -> schedules.notify_channel_id
	callback := func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "app_")
		return strings.Replace(s, "_", ".", 1)
	}

	if err := k.Load(env.Provider("APP_", ".", callback), nil); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var cfg AppConfig
	decoderConfig := koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			WeaklyTypedInput: true,
			Result:           &cfg,
		},
	}

	if err := k.UnmarshalWithConf("", &cfg, decoderConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	slog.Debug("Configuration loaded",
		"credentials_path", cfg.Credentials.Path,
		"log_file", cfg.Logging.File,
		"database_directory", cfg.Database.Directory,
		"search_endpoint", cfg.Search.Endpoint,
		"heartbeat", cfg.Schedules.Heartbeat,
		"notify_channel_present", cfg.Schedules.NotifyChannelID != "")

	if cfg.Credentials.Path == "" {
		return nil, fmt.Errorf("credentials.path is required")
	}
	if cfg.Logging.File == "" {
		return nil, fmt.Errorf("logging.file is required")
	}
	if cfg.Search.Results <= 0 {
		return nil, fmt.Errorf("search.results must be positive, got %d", cfg.Search.Results)
	}

	return &cfg, nil
}
