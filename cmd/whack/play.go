package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/whack/internal/config"
	"github.com/taigrr/whack/internal/feedback"
	"github.com/taigrr/whack/internal/game"
	"github.com/taigrr/whack/pkg/pick"
	"github.com/taigrr/whack/pkg/render"
)

// command is a key action forwarded from the event goroutine.
type command int

const (
	cmdQuit command = iota
	cmdToggleWireframe
	cmdToggleHUD
	cmdRestart
)

// keyCommand maps a key press to a command.
func keyCommand(ev uv.KeyPressEvent) (command, bool) {
	switch {
	case ev.MatchString("escape", "ctrl+c", "q"):
		return cmdQuit, true
	case ev.MatchString("x"):
		return cmdToggleWireframe, true
	case ev.MatchString("?", "shift+/"):
		return cmdToggleHUD, true
	case ev.MatchString("r"):
		return cmdRestart, true
	}
	return 0, false
}

// cellToNDC converts a clicked terminal cell to NDC. Each cell covers two
// framebuffer rows; the click lands on the centre of the cell.
func cellToNDC(col, row, cols, rows int) game.Click {
	fbW, fbH := float64(cols), float64(rows*2)
	nx, ny := pick.NDC(float64(col)+0.5, float64(row*2)+1, fbW, fbH)
	return game.Click{NX: nx, NY: ny}
}

// forwardEvents converts terminal events into clicks, resizes and commands
// for the frame loop. It never touches the engine or scene.
func forwardEvents(ctx context.Context, events <-chan uv.Event, cols, rows int,
	clicks chan<- game.Click, resizes chan<- uv.Size, commands chan<- command,
) {
	for {
		var ev uv.Event
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			ev = e
		}

		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			cols, rows = ev.Width, ev.Height
			select {
			case resizes <- uv.Size(ev):
			case <-ctx.Done():
				return
			}
		case uv.MouseClickEvent:
			if ev.Button != uv.MouseLeft || cols <= 0 || rows <= 0 {
				continue
			}
			select {
			case clicks <- cellToNDC(ev.X, ev.Y, cols, rows):
			default:
				// Frame loop is behind; drop the click.
			}
		case uv.KeyPressEvent:
			cmd, ok := keyCommand(ev)
			if !ok {
				continue
			}
			select {
			case commands <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	mole, err := loadMole(cfg.MoleModel, logger)
	if err != nil {
		return err
	}
	opts, err := sceneOptions(cfg, mole, logger)
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()
	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	engine, err := render.Init(render.NewFramebuffer(cols, rows*2))
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	if cfg.Wireframe {
		engine.SetDrawMode(render.DrawWireframe)
	}

	sink, closeSink := feedback.New(cfg.Audio, os.Stdout, logger)
	defer closeSink()
	opts.Sink = sink

	scene := game.New(engine, opts)

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	if err := term.Resize(cols, rows); err != nil {
		logger.Warn("resize terminal", "err", err)
	}

	// Button-event mouse tracking with SGR coordinates.
	fmt.Fprint(os.Stdout, "\x1b[?1000h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h")

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1000l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			logger.Warn("shutdown terminal", "err", err)
		}
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	clicks := make(chan game.Click, 16)
	resizes := make(chan uv.Size, 4)
	commands := make(chan command, 16)
	go forwardEvents(ctx, term.Events(), cols, rows, clicks, resizes, commands)

	hud := NewHUD()
	wireframe := cfg.Wireframe
	targetDuration := time.Second / time.Duration(cfg.FPS)

	start := time.Now()
	scene.Start(start)
	logger.Info("game started", "cols", cols, "rows", rows, "fps", cfg.FPS)

	for {
		select {
		case <-ctx.Done():
			logger.Info("game over", "score", scene.Score(), "hits", scene.Stats().Hits,
				"misses", scene.Stats().Misses, "escaped", scene.Stats().Escaped,
				"played", time.Since(start).Round(time.Second))
			return nil
		default:
		}

		now := time.Now()

	drain:
		for {
			select {
			case size := <-resizes:
				cols, rows = size.Width, size.Height
				term.Erase()
				if err := term.Resize(cols, rows); err != nil {
					logger.Warn("resize terminal", "err", err)
				}
				scene.Resize(cols, rows*2)
				logger.Debug("resized", "cols", cols, "rows", rows)
			case cmd := <-commands:
				switch cmd {
				case cmdQuit:
					cancel()
				case cmdToggleWireframe:
					wireframe = !wireframe
					mode := render.DrawFill
					if wireframe {
						mode = render.DrawWireframe
					}
					engine.SetDrawMode(mode)
				case cmdToggleHUD:
					hud.Visible = !hud.Visible
				case cmdRestart:
					scene.Start(now)
					logger.Info("restarted")
				}
			default:
				break drain
			}
		}

		scene.Frame(clicks, now)

		engine.Framebuffer().Draw(term, term.Bounds())
		hud.UpdateFPS(now)
		hud.Draw(term, scene, wireframe)
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
