package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	sky, err := cfg.Sky()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, sky[0], 0.01)
	assert.InDelta(t, 0.7, sky[1], 0.01)
	assert.InDelta(t, 1.0, sky[2], 0.01)
	assert.Equal(t, float32(1), sky[3])

	assert.Equal(t, 1500, int(cfg.Game.MoleVisible().Milliseconds()))
	assert.Equal(t, 300, int(cfg.Game.RespawnDelay().Milliseconds()))
	assert.Equal(t, 200, int(cfg.Game.ShakeDuration().Milliseconds()))
}

func TestParseNoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Parse(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, Default().FPS, cfg.FPS)
	assert.Equal(t, Default().Game, cfg.Game)
}

func TestParseFileThenFlags(t *testing.T) {
	path := writeConfig(t, `
fps = 30
particles = 120
log_level = "debug"

[game]
mole_visible_ms = 900
`)

	cfg, err := Parse([]string{"-config", path, "-fps", "45", "-wireframe"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.FPS, "flag beats file")
	assert.Equal(t, 120, cfg.Particles, "file beats default")
	assert.True(t, cfg.Wireframe)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 900, cfg.Game.MoleVisibleMS)
	assert.Equal(t, 300, cfg.Game.RespawnDelayMS, "untouched keys keep defaults")
	assert.Equal(t, path, cfg.Path)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParseExplicitMissingFile(t *testing.T) {
	_, err := Parse([]string{"-config", filepath.Join(t.TempDir(), "nope.toml")}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "read config")
}

func TestParseBadTOML(t *testing.T) {
	path := writeConfig(t, "fps = [")
	_, err := Parse([]string{"-config", path}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "parse config")
}

func TestParseRejectsArguments(t *testing.T) {
	path := writeConfig(t, "")
	_, err := Parse([]string{"-config", path, "extra"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"fps zero", func(c *Config) { c.FPS = 0 }, "fps"},
		{"fps too high", func(c *Config) { c.FPS = 1000 }, "fps"},
		{"bad background", func(c *Config) { c.Background = "blue" }, "background"},
		{"background channel", func(c *Config) { c.Background = "0,300,0" }, "background"},
		{"particles", func(c *Config) { c.Particles = 0 }, "particles"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"mole visible", func(c *Config) { c.Game.MoleVisibleMS = 0 }, "mole_visible_ms"},
		{"respawn", func(c *Config) { c.Game.RespawnDelayMS = -1 }, "respawn_delay_ms"},
		{"shake", func(c *Config) { c.Game.ShakeIntensity = -0.1 }, "shake_intensity"},
		{"snapshot frames", func(c *Config) { c.Snapshot = "out.png"; c.Frames = 0 }, "frames"},
		{"snapshot size", func(c *Config) { c.Snapshot = "out.png"; c.Width = 0 }, "snapshot size"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.FPS = 0
	cfg.Particles = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fps")
	assert.Contains(t, err.Error(), "particles")
}
