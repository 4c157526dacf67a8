// Package config loads user defaults from a TOML file.
package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Config holds defaults that command-line flags may override.
type Config struct {
	// Apply patches even when bytes conflict
	Force bool `mapstructure:"force"`

	Verbose bool `mapstructure:"verbose"`
	JSON    bool `mapstructure:"json"`
	NoColor bool `mapstructure:"no_color"`

	// Type and description given to freshly wrapped payloads
	DefaultType        string `mapstructure:"default_type"`
	DefaultDescription string `mapstructure:"default_description"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		DefaultType:        "none",
		DefaultDescription: "Unknown",
	}
}

// DefaultPath returns where the config file is looked up when no path is
// given explicitly.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "img4kit", "config.toml")
}

// Load reads the config file at path. A missing file isn't an error,
// defaults are returned instead. Invalid TOML, or keys of the wrong
// type, are.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("no config file", slog.String("path", path))
			return cfg, nil
		}
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	intermediate := make(map[string]interface{})
	_, err = toml.DecodeReader(f, &intermediate)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      cfg,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = decoder.Decode(intermediate)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}

	slog.Debug("loaded config", slog.String("path", path))
	return cfg, nil
}
