// Package config loads podcastr settings from YAML, the environment and
// command-line overrides.
package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const appName = "podcastr"

// Config represents the application configuration.
type Config struct {
	Feed     string         `yaml:"feed" validate:"required"`
	Locale   string         `yaml:"locale" default:"pt-BR" validate:"required"`
	Playback PlaybackConfig `yaml:"playback"`
	Log      LogConfig      `yaml:"log"`
	UI       UIConfig       `yaml:"ui"`
}

// PlaybackConfig represents queue and audio backend configuration.
type PlaybackConfig struct {
	IndexPolicy string `yaml:"index_policy" default:"unchecked" validate:"oneof=unchecked clamp wrap reject"`
	MPVBinary   string `yaml:"mpv_binary" default:"mpv" validate:"required"`
	MPVSocket   string `yaml:"mpv_socket"`
}

// LogConfig represents logger configuration. The terminal belongs to the UI,
// so logs go to a file unless told otherwise.
type LogConfig struct {
	Output string `yaml:"output" default:"file" validate:"oneof=file stdout stderr"`
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	File   string `yaml:"file"`
}

// UIConfig represents terminal UI configuration.
type UIConfig struct {
	SearchMinScore   int  `yaml:"search_min_score" default:"50" validate:"gte=0,lte=200"`
	SkipClearConfirm bool `yaml:"skip_clear_confirm"`
}

// Overrides carries command-line values; empty fields leave the config alone.
type Overrides struct {
	Feed        string
	Locale      string
	IndexPolicy string
	LogLevel    string
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, appName, "config.yaml")
}

// Load reads path (a missing file is allowed only when path is empty or the
// default), applies environment and command-line overrides, fills defaults
// and validates.
func Load(path string, overrides Overrides) (*Config, error) {
	var cfg Config

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	case os.IsNotExist(err) && path == DefaultPath():
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg.overrideFromEnv()
	cfg.apply(overrides)

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(filepath.Dir(DefaultPath()), appName+".log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with PODCASTR_* variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("PODCASTR_FEED"); v != "" {
		c.Feed = v
	}
	if v := os.Getenv("PODCASTR_LOCALE"); v != "" {
		c.Locale = v
	}
	if v := os.Getenv("PODCASTR_INDEX_POLICY"); v != "" {
		c.Playback.IndexPolicy = v
	}
	if v := os.Getenv("PODCASTR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PODCASTR_MPV"); v != "" {
		c.Playback.MPVBinary = v
	}
}

func (c *Config) apply(o Overrides) {
	if o.Feed != "" {
		c.Feed = o.Feed
	}
	if o.Locale != "" {
		c.Locale = o.Locale
	}
	if o.IndexPolicy != "" {
		c.Playback.IndexPolicy = o.IndexPolicy
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
