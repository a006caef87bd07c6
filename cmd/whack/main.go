// whack - Terminal whack-a-mole
// Click moles as they pop out of the lawn, rendered in 3D in your terminal.
//
// Controls:
//
//	Click       - Whack the mole
//	X           - Toggle wireframe mode (x-ray)
//	R           - Restart (score back to zero)
//	?           - Toggle HUD overlay (score, FPS, hit stats)
//	Esc/Q       - Quit
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/taigrr/whack/internal/config"
	"github.com/taigrr/whack/internal/game"
	"github.com/taigrr/whack/pkg/models"
)

func main() {
	cfg, err := config.Parse(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Snapshot != "" {
		logger := newLogger(cfg, os.Stderr)
		err = runSnapshot(cfg, logger)
	} else {
		// The terminal owns the screen while playing; log lines are held
		// back and printed once it is restored.
		var logs bytes.Buffer
		logger := newLogger(cfg, &logs)
		err = run(cfg, logger)
		os.Stderr.Write(logs.Bytes())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger returns a text logger tagged with a per-run session id.
func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("session", uuid.NewString())
}

// newRand seeds from cfg, or from the clock when the seed is zero.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// loadMole returns the configured mole mesh fitted to the picking sphere,
// or the zero MeshData for the default sphere.
func loadMole(path string, logger *slog.Logger) (models.MeshData, error) {
	if path == "" {
		return models.MeshData{}, nil
	}
	mesh, err := models.LoadGLB(path)
	if err != nil {
		return models.MeshData{}, fmt.Errorf("load mole model: %w", err)
	}
	if err := mesh.Validate(); err != nil {
		return models.MeshData{}, fmt.Errorf("load mole model: %w", err)
	}
	logger.Info("loaded mole model", "path", path, "vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())
	return mesh.Fit(models.MoleRadius), nil
}

// sceneOptions maps the configuration onto the scene.
func sceneOptions(cfg config.Config, mole models.MeshData, logger *slog.Logger) (game.Options, error) {
	sky, err := cfg.Sky()
	if err != nil {
		return game.Options{}, err
	}
	return game.Options{
		FPS:       cfg.FPS,
		Timing:    cfg.Game,
		Particles: cfg.Particles,
		Sky:       sky,
		Mole:      mole,
		Rand:      newRand(cfg.Seed),
		Logger:    logger,
	}, nil
}
