// Package config holds the whack settings: defaults, an optional TOML file,
// and command-line flags layered on top.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Game holds the timing and feel of a round.
type Game struct {
	MoleVisibleMS   int     `toml:"mole_visible_ms"`
	RespawnDelayMS  int     `toml:"respawn_delay_ms"`
	ShakeDurationMS int     `toml:"shake_duration_ms"`
	ShakeIntensity  float64 `toml:"shake_intensity"`
	HitScore        int     `toml:"hit_score"`
}

// MoleVisible is how long a mole stays up unhit.
func (g Game) MoleVisible() time.Duration {
	return time.Duration(g.MoleVisibleMS) * time.Millisecond
}

// RespawnDelay is the pause between a mole leaving and the next spawn.
func (g Game) RespawnDelay() time.Duration {
	return time.Duration(g.RespawnDelayMS) * time.Millisecond
}

// ShakeDuration is how long the camera shakes after a hit.
func (g Game) ShakeDuration() time.Duration {
	return time.Duration(g.ShakeDurationMS) * time.Millisecond
}

// Config is the full set of settings.
type Config struct {
	FPS        int    `toml:"fps"`
	Background string `toml:"background"` // sky colour as "R,G,B"
	Particles  int    `toml:"particles"`
	Audio      bool   `toml:"audio"`
	Wireframe  bool   `toml:"wireframe"`
	MoleModel  string `toml:"mole_model"`
	LogLevel   string `toml:"log_level"`
	Seed       uint64 `toml:"seed"` // 0 seeds from the clock
	Game       Game   `toml:"game"`

	// Command-line only.
	Path     string `toml:"-"`
	Snapshot string `toml:"-"`
	Frames   int    `toml:"-"`
	Width    int    `toml:"-"`
	Height   int    `toml:"-"`
	Scale    int    `toml:"-"`
}

// Default returns the stock game settings.
func Default() Config {
	return Config{
		FPS:        60,
		Background: "128,179,255",
		Particles:  50,
		Audio:      true,
		LogLevel:   "info",
		Game: Game{
			MoleVisibleMS:   1500,
			RespawnDelayMS:  300,
			ShakeDurationMS: 200,
			ShakeIntensity:  0.2,
			HitScore:        100,
		},
		Frames: 90,
		Width:  160,
		Height: 120,
		Scale:  4,
	}
}

// DefaultPath is where the config file is looked up when -config is not
// given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "whack", "config.toml")
}

// Load reads a TOML file over cfg. A missing file is an error only when
// required is set.
func Load(path string, cfg *Config, required bool) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Parse builds the configuration from defaults, the config file, and args
// (without the program name), in increasing precedence.
func Parse(args []string, stderr io.Writer) (Config, error) {
	cfg := Default()

	fset := flag.NewFlagSet("whack", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.Usage = func() {
		fmt.Fprintf(stderr, "whack - Terminal whack-a-mole\n\n")
		fmt.Fprintf(stderr, "Usage: whack [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fset.PrintDefaults()
		fmt.Fprintf(stderr, "\nControls:\n")
		fmt.Fprintf(stderr, "  Click       - Whack the mole\n")
		fmt.Fprintf(stderr, "  X           - Toggle wireframe\n")
		fmt.Fprintf(stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(stderr, "  Esc         - Quit\n")
	}

	// Flags write into a scratch copy; only the ones actually given are
	// applied after the file is loaded.
	flags := cfg
	path := fset.String("config", DefaultPath(), "Path to config file (TOML)")
	fset.IntVar(&flags.FPS, "fps", flags.FPS, "Target FPS")
	fset.StringVar(&flags.Background, "bg", flags.Background, "Sky color (R,G,B)")
	fset.IntVar(&flags.Particles, "particles", flags.Particles, "Particles per hit burst")
	fset.BoolVar(&flags.Audio, "audio", flags.Audio, "Play a sound on hit (falls back to the terminal bell)")
	fset.BoolVar(&flags.Wireframe, "wireframe", flags.Wireframe, "Start in wireframe (x-ray) mode")
	fset.StringVar(&flags.MoleModel, "mole", flags.MoleModel, "Replace the mole sphere with a GLB model")
	fset.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level (debug, info, warn, error)")
	fset.Uint64Var(&flags.Seed, "seed", flags.Seed, "Random seed (0 = time based)")
	fset.StringVar(&flags.Snapshot, "snapshot", "", "Render headless and write a PNG to this path instead of playing")
	fset.IntVar(&flags.Frames, "frames", flags.Frames, "Frames to simulate in snapshot mode")
	fset.IntVar(&flags.Width, "width", flags.Width, "Snapshot framebuffer width")
	fset.IntVar(&flags.Height, "height", flags.Height, "Snapshot framebuffer height")
	fset.IntVar(&flags.Scale, "scale", flags.Scale, "Snapshot upscale factor")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}
	if fset.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected argument %q", fset.Arg(0))
	}

	explicit := false
	fset.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})
	if err := Load(*path, &cfg, explicit); err != nil {
		return Config{}, err
	}
	cfg.Path = *path

	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "fps":
			cfg.FPS = flags.FPS
		case "bg":
			cfg.Background = flags.Background
		case "particles":
			cfg.Particles = flags.Particles
		case "audio":
			cfg.Audio = flags.Audio
		case "wireframe":
			cfg.Wireframe = flags.Wireframe
		case "mole":
			cfg.MoleModel = flags.MoleModel
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "seed":
			cfg.Seed = flags.Seed
		}
	})
	cfg.Snapshot = flags.Snapshot
	cfg.Frames = flags.Frames
	cfg.Width = flags.Width
	cfg.Height = flags.Height
	cfg.Scale = flags.Scale

	return cfg, cfg.Validate()
}

// Validate reports every out-of-range setting.
func (c Config) Validate() error {
	var errs []error
	if c.FPS < 1 || c.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps %d out of range [1, 240]", c.FPS))
	}
	if _, err := c.Sky(); err != nil {
		errs = append(errs, err)
	}
	if c.Particles < 1 || c.Particles > 5000 {
		errs = append(errs, fmt.Errorf("particles %d out of range [1, 5000]", c.Particles))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Game.MoleVisibleMS <= 0 {
		errs = append(errs, fmt.Errorf("game.mole_visible_ms must be positive, got %d", c.Game.MoleVisibleMS))
	}
	if c.Game.RespawnDelayMS < 0 {
		errs = append(errs, fmt.Errorf("game.respawn_delay_ms must not be negative, got %d", c.Game.RespawnDelayMS))
	}
	if c.Game.ShakeDurationMS < 0 {
		errs = append(errs, fmt.Errorf("game.shake_duration_ms must not be negative, got %d", c.Game.ShakeDurationMS))
	}
	if c.Game.ShakeIntensity < 0 {
		errs = append(errs, fmt.Errorf("game.shake_intensity must not be negative, got %g", c.Game.ShakeIntensity))
	}
	if c.Snapshot != "" {
		if c.Frames < 1 {
			errs = append(errs, fmt.Errorf("frames must be positive, got %d", c.Frames))
		}
		if c.Width < 1 || c.Height < 1 {
			errs = append(errs, fmt.Errorf("snapshot size %dx%d must be positive", c.Width, c.Height))
		}
		if c.Scale < 1 {
			errs = append(errs, fmt.Errorf("scale must be positive, got %d", c.Scale))
		}
	}
	return errors.Join(errs...)
}

// Sky parses Background into a clear colour with opaque alpha.
func (c Config) Sky() ([4]float32, error) {
	var r, g, b int
	n, err := fmt.Sscanf(strings.TrimSpace(c.Background), "%d,%d,%d", &r, &g, &b)
	if err != nil || n != 3 {
		return [4]float32{}, fmt.Errorf("background %q is not R,G,B", c.Background)
	}
	for _, v := range []int{r, g, b} {
		if v < 0 || v > 255 {
			return [4]float32{}, fmt.Errorf("background %q has a channel outside [0, 255]", c.Background)
		}
	}
	return [4]float32{float32(r) / 255, float32(g) / 255, float32(b) / 255, 1}, nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
