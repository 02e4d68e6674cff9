package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Credentials is the content of the credentials file. It is read once at
// startup and never written back.
type Credentials struct {
	Token string `koanf:"token"`
	// Extra holds every other key of the file for extensions that need it.
	Extra map[string]interface{} `koanf:"-"`
}

// ConfigurationError reports a credentials file that is missing, unreadable
// or incomplete. Startup cannot continue past one.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// LoadCredentials parses the JSON credentials file at path.
func LoadCredentials(path string) (*Credentials, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}

	var creds Credentials
	if err := k.Unmarshal("", &creds); err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	if creds.Token == "" {
		return nil, &ConfigurationError{Path: path, Err: errors.New("token is required")}
	}

	creds.Extra = k.Raw()
	delete(creds.Extra, "token")

	return &creds, nil
}
