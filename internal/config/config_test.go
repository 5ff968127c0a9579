package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config dir at a temp dir and clears PODCASTR_* vars.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, name := range []string{"PODCASTR_FEED", "PODCASTR_LOCALE", "PODCASTR_INDEX_POLICY", "PODCASTR_LOG_LEVEL", "PODCASTR_MPV"} {
		t.Setenv(name, "")
	}
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_FileWithDefaults(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
feed: /feeds/show.xml
playback:
  index_policy: clamp
`)

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "/feeds/show.xml", cfg.Feed)
	assert.Equal(t, "pt-BR", cfg.Locale)
	assert.Equal(t, "clamp", cfg.Playback.IndexPolicy)
	assert.Equal(t, "mpv", cfg.Playback.MPVBinary)
	assert.Equal(t, "file", cfg.Log.Output)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, filepath.Join(dir, "podcastr", "podcastr.log"), cfg.Log.File)
	assert.Equal(t, 50, cfg.UI.SearchMinScore)
	assert.False(t, cfg.UI.SkipClearConfirm)
}

func TestLoad_MissingDefaultFileUsesOverrides(t *testing.T) {
	isolate(t)

	cfg, err := Load("", Overrides{Feed: "show.xml", Locale: "en"})
	require.NoError(t, err)
	assert.Equal(t, "show.xml", cfg.Feed)
	assert.Equal(t, "en", cfg.Locale)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "absent.yaml"), Overrides{Feed: "show.xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "feed: [unterminated")

	_, err := Load(path, Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
feed: from-file.xml
locale: es
log:
  level: warn
`)
	t.Setenv("PODCASTR_FEED", "from-env.xml")
	t.Setenv("PODCASTR_LOG_LEVEL", "debug")

	cfg, err := Load(path, Overrides{Feed: "from-flag.xml"})
	require.NoError(t, err)

	assert.Equal(t, "from-flag.xml", cfg.Feed, "flags beat env")
	assert.Equal(t, "debug", cfg.Log.Level, "env beats file")
	assert.Equal(t, "es", cfg.Locale)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Feed:   "show.xml",
			Locale: "pt",
			Playback: PlaybackConfig{
				IndexPolicy: "unchecked",
				MPVBinary:   "mpv",
			},
			Log: LogConfig{Output: "file", Level: "info"},
			UI:  UIConfig{SearchMinScore: 50},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"missing feed", func(c *Config) { c.Feed = "" }, true},
		{"missing locale", func(c *Config) { c.Locale = "" }, true},
		{"unknown index policy", func(c *Config) { c.Playback.IndexPolicy = "bounce" }, true},
		{"every index policy", func(c *Config) { c.Playback.IndexPolicy = "reject" }, false},
		{"unknown log output", func(c *Config) { c.Log.Output = "syslog" }, true},
		{"unknown log level", func(c *Config) { c.Log.Level = "trace" }, true},
		{"negative search score", func(c *Config) { c.UI.SearchMinScore = -1 }, true},
		{"missing mpv binary", func(c *Config) { c.Playback.MPVBinary = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
