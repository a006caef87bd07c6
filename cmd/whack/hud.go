package main

import (
	"fmt"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/whack/internal/game"
	"github.com/taigrr/whack/pkg/render"
)

var (
	hudFg    = render.RGB(255, 255, 255)
	hudBg    = render.RGB(0, 0, 0)
	hudScore = render.RGB(255, 230, 50)
	hudDim   = render.RGB(150, 150, 150)
)

// HUD draws the score line and, when visible, FPS and round stats.
type HUD struct {
	Visible bool

	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a HUD with the score shown and the details hidden.
func NewHUD() *HUD {
	return &HUD{}
}

// UpdateFPS counts a frame drawn at now and refreshes the rate once a
// second.
func (h *HUD) UpdateFPS(now time.Time) {
	if h.fpsTime.IsZero() {
		h.fpsTime = now
	}
	h.fpsFrames++
	elapsed := now.Sub(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = now
	}
}

// FPS returns the last measured frame rate.
func (h *HUD) FPS() float64 { return h.fps }

// Draw writes the overlay on top of the rendered frame.
func (h *HUD) Draw(scr uv.Screen, scene *game.Scene, wireframe bool) {
	bounds := scr.Bounds()

	score := fmt.Sprintf(" Score: %d ", scene.Score())
	render.DrawText(scr, bounds.Min.X, bounds.Min.Y, score, hudScore, hudBg)

	if !h.Visible {
		hint := " ? help "
		render.DrawText(scr, bounds.Max.X-len(hint), bounds.Min.Y, hint, hudDim, hudBg)
		return
	}

	fps := fmt.Sprintf(" %.0f FPS ", h.fps)
	render.DrawText(scr, bounds.Max.X-len(fps), bounds.Min.Y, fps, hudFg, hudBg)

	stats := scene.Stats()
	check := "[ ]"
	if wireframe {
		check = "[x]"
	}
	line := fmt.Sprintf(" hits %d  misses %d  escaped %d  %s X-Ray  R restart  Esc quit ",
		stats.Hits, stats.Misses, stats.Escaped, check)
	if bounds.Dy() > 1 {
		render.DrawText(scr, bounds.Min.X, bounds.Max.Y-1, line, hudFg, hudBg)
	}
}
