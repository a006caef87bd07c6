package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/taigrr/whack/internal/config"
	"github.com/taigrr/whack/internal/feedback"
	"github.com/taigrr/whack/internal/game"
	"github.com/taigrr/whack/pkg/render"
)

// autoplayEvery is how many frames the autoplayer waits between swings.
const autoplayEvery = 20

// runSnapshot plays cfg.Frames frames headless on a fixed clock, whacking
// the mole every autoplayEvery frames, and writes the last frame as a PNG.
func runSnapshot(cfg config.Config, logger *slog.Logger) error {
	mole, err := loadMole(cfg.MoleModel, logger)
	if err != nil {
		return err
	}
	opts, err := sceneOptions(cfg, mole, logger)
	if err != nil {
		return err
	}
	opts.Sink = feedback.Nop{}

	engine, err := render.Init(render.NewFramebuffer(cfg.Width, cfg.Height))
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	if cfg.Wireframe {
		engine.SetDrawMode(render.DrawWireframe)
	}

	scene := game.New(engine, opts)
	score := autoplay(scene, engine, cfg.Frames, time.Second/time.Duration(cfg.FPS))

	if err := engine.Framebuffer().SavePNG(cfg.Snapshot, cfg.Scale); err != nil {
		return err
	}
	logger.Info("snapshot written", "path", cfg.Snapshot, "frames", cfg.Frames, "score", score)
	return nil
}

// autoplay runs frames frames of tick each from a fixed epoch and returns
// the final score.
func autoplay(scene *game.Scene, engine *render.Engine, frames int, tick time.Duration) int {
	clicks := make(chan game.Click, 1)
	now := time.Unix(0, 0)
	scene.Start(now)

	for i := range frames {
		if i > 0 && i%autoplayEvery == 0 && scene.ActiveMole() >= 0 {
			ndc, visible := engine.Camera().WorldToNDC(scene.MoleCenter(scene.ActiveMole()))
			if visible {
				clicks <- game.Click{NX: ndc.X, NY: ndc.Y}
			}
		}
		scene.Frame(clicks, now)
		now = now.Add(tick)
	}
	return scene.Score()
}
