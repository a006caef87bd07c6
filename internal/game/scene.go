// Package game drives the whack-a-mole scene: nine holes, one mole at a
// time, scoring, camera shake and the hit burst.
//
// A Scene is owned by the frame loop goroutine. Input, timers and drawing
// all run there; other goroutines only hand clicks over through a channel
// drained by Drain.
package game

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/taigrr/whack/internal/config"
	"github.com/taigrr/whack/internal/feedback"
	"github.com/taigrr/whack/pkg/math3d"
	"github.com/taigrr/whack/pkg/models"
	"github.com/taigrr/whack/pkg/particles"
	"github.com/taigrr/whack/pkg/pick"
	"github.com/taigrr/whack/pkg/render"
)

// Board layout and camera.
const (
	GridSize    = 3
	HoleSpacing = 2.0
	holeLift    = 0.01 // keeps holes above the ground plane

	fovY = 45 * math.Pi / 180
	near = 0.1
	far  = 100
)

var (
	cameraPosition = math3d.V3(0, -2, -12)
	cameraRotation = math3d.V3(math.Pi/6, 0, 0)

	groundColor = [4]float32{0.2, 0.8, 0.2, 1}
	holeColor   = [4]float32{0.2, 0.2, 0.2, 0.2}
)

// Hole is one mole position on the ground plane.
type Hole struct {
	X, Z float64
}

// Click is a pointer press in normalized device coordinates, Y up.
type Click struct {
	NX, NY float64
}

// Stats counts the outcome of every round.
type Stats struct {
	Hits    int
	Misses  int // clicks that hit nothing
	Escaped int // moles that hid before being hit
}

// Options configures a Scene. Zero values take defaults.
type Options struct {
	FPS       int
	Timing    config.Game
	Particles int
	Sky       [4]float32
	Mole      models.MeshData
	Sink      feedback.Sink
	Rand      *rand.Rand
	Logger    *slog.Logger
}

// Scene is the whole game state.
type Scene struct {
	engine *render.Engine
	timing config.Game
	sky    [4]float32
	sink   feedback.Sink
	rng    *rand.Rand
	logger *slog.Logger

	holes  []Hole
	active int // hole with a live mole, -1 when none
	flash  int // hole showing the mole just hit, -1 when none
	score  int
	stats  Stats

	color *ColorTransition
	shake Shake
	sched Scheduler
	burst *particles.System

	ground     render.RenderObject
	hole       render.RenderObject
	mole       render.RenderObject
	moleColors []float32
}

// New uploads the scene geometry to e and returns an idle scene. Call Start
// to spawn the first mole.
func New(e *render.Engine, opts Options) *Scene {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Timing == (config.Game{}) {
		opts.Timing = config.Default().Game
	}
	if opts.Sky == ([4]float32{}) {
		opts.Sky = [4]float32{0.5, 0.7, 1.0, 1.0}
	}
	if opts.Mole.VertexCount() == 0 {
		opts.Mole = models.Mole()
	}
	if opts.Sink == nil {
		opts.Sink = feedback.Nop{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Scene{
		engine: e,
		timing: opts.Timing,
		sky:    opts.Sky,
		sink:   opts.Sink,
		rng:    opts.Rand,
		logger: opts.Logger,
		holes:  NewBoard(),
		active: -1,
		flash:  -1,
		color:  NewColorTransition(opts.FPS),
		burst:  particles.New(e, opts.Particles, particles.WithRand(opts.Rand)),
	}
	s.color.Set(moleColors[0])

	ground := models.Ground()
	s.ground = e.CreateRenderObject(ground.Positions, ground.Indices, models.SolidColors(ground.VertexCount(), groundColor))
	hole := models.Hole()
	s.hole = e.CreateRenderObject(hole.Positions, hole.Indices, models.SolidColors(hole.VertexCount(), holeColor))
	s.moleColors = models.SolidColors(opts.Mole.VertexCount(), s.moleColor())
	s.mole = e.CreateRenderObject(opts.Mole.Positions, opts.Mole.Indices, s.moleColors)

	s.setupCamera(0, 0)
	return s
}

// NewBoard returns the 3x3 grid of holes, HoleSpacing apart and centred on
// the origin, row by row.
func NewBoard() []Hole {
	holes := make([]Hole, 0, GridSize*GridSize)
	for i := range GridSize {
		for j := range GridSize {
			holes = append(holes, Hole{
				X: float64(j-1) * HoleSpacing,
				Z: float64(i-1) * HoleSpacing,
			})
		}
	}
	return holes
}

// Start resets the score and spawns the first mole.
func (s *Scene) Start(now time.Time) {
	s.score = 0
	s.stats = Stats{}
	s.sched.Reset()
	s.spawn(now)
}

// spawn raises a mole in a random hole with a random colour, and schedules
// its escape.
func (s *Scene) spawn(now time.Time) {
	s.active = s.rng.IntN(len(s.holes))
	s.flash = -1
	s.color.Set(moleColors[s.rng.IntN(len(moleColors))])

	s.sched.Cancel(EventHide)
	s.sched.Schedule(now.Add(s.timing.MoleVisible()), EventHide)
	s.logger.Debug("mole up", "hole", s.active)
}

// hide lets the current mole escape.
func (s *Scene) hide(now time.Time) {
	if s.active >= 0 {
		s.stats.Escaped++
		s.logger.Debug("mole escaped", "hole", s.active)
	}
	s.active = -1
	s.sched.Schedule(now.Add(s.timing.RespawnDelay()), EventSpawn)
}

// Click hit-tests the NDC point against the active mole using the
// projection and view of the last drawn frame. It reports whether the mole
// was hit.
func (s *Scene) Click(nx, ny float64, now time.Time) bool {
	if s.active < 0 {
		s.stats.Misses++
		return false
	}

	ray := pick.FromScreen(nx, ny, s.engine.ProjectionMatrix(), s.engine.ViewMatrix())
	center := s.MoleCenter(s.active)
	if !pick.IntersectSphere(ray, center, models.MoleRadius) {
		s.stats.Misses++
		return false
	}

	s.score += s.timing.HitScore
	s.stats.Hits++
	s.logger.Info("hit", "hole", s.active, "score", s.score)

	s.color.SetTarget(hitColor)
	s.flash = s.active
	s.active = -1
	s.sched.Cancel(EventHide)
	s.sched.Cancel(EventSpawn)

	s.burst.Emit(center)
	s.shake.Start(now, s.timing.ShakeDuration(), s.timing.ShakeIntensity)
	s.sink.Hit()

	s.sched.Schedule(now.Add(s.timing.RespawnDelay()), EventSpawn)
	return true
}

// Drain handles every click queued on inputs without blocking and returns
// how many there were.
func (s *Scene) Drain(inputs <-chan Click, now time.Time) int {
	n := 0
	for {
		select {
		case c, ok := <-inputs:
			if !ok {
				return n
			}
			s.Click(c.NX, c.NY, now)
			n++
		default:
			return n
		}
	}
}

// Update fires due events and advances the mole colour by one frame.
func (s *Scene) Update(now time.Time) {
	for _, kind := range s.sched.Due(now) {
		switch kind {
		case EventSpawn:
			s.spawn(now)
		case EventHide:
			s.hide(now)
		}
	}
	s.color.Update()
}

// Resize resizes the render target and refreshes the projection at once,
// so clicks handled before the next Draw use the new aspect ratio. The view
// of the last frame is kept.
func (s *Scene) Resize(width, height int) {
	s.engine.Resize(width, height)
	s.setupProjection()
}

// setupProjection fits the projection to the current framebuffer.
func (s *Scene) setupProjection() {
	w, h := s.engine.Framebuffer().Size()
	if err := s.engine.SetPerspective(fovY, float64(w)/float64(h), near, far); err != nil {
		s.logger.Warn("set perspective", "err", err)
	}
}

// setupCamera applies the projection for the current framebuffer and the
// camera placement with a shake offset.
func (s *Scene) setupCamera(dx, dy float64) {
	s.setupProjection()
	s.engine.SetCamera(cameraPosition.Add(math3d.V3(dx, dy, 0)), cameraRotation)
}

// Draw renders one frame: ground, holes, the visible mole and the particle
// burst. The particle system is stepped here, once per drawn frame.
func (s *Scene) Draw(now time.Time) {
	e := s.engine
	e.BeginFrame(s.sky)

	dx, dy := s.shake.Offset(now, s.rng)
	s.setupCamera(dx, dy)
	view := e.ViewMatrix()

	e.DrawObject(s.ground, view)

	visible := s.active
	if visible < 0 {
		visible = s.flash
	}
	for i, h := range s.holes {
		e.DrawObject(s.hole, view.Translated(math3d.V3(h.X, holeLift, h.Z)))
		if i != visible {
			continue
		}
		c := s.moleColor()
		for v := 0; v < len(s.moleColors); v += 4 {
			copy(s.moleColors[v:v+4], c[:])
		}
		e.UpdateBuffer(s.mole.Color, s.moleColors)
		e.DrawObject(s.mole, view.Translated(s.MoleCenter(i)))
	}

	s.burst.Update()
	s.burst.Render()
}

// Frame drains input, updates and draws.
func (s *Scene) Frame(inputs <-chan Click, now time.Time) {
	s.Drain(inputs, now)
	s.Update(now)
	s.Draw(now)
}

func (s *Scene) moleColor() [4]float32 {
	c := s.color.Current()
	return [4]float32{float32(c[0]), float32(c[1]), float32(c[2]), 1}
}

// MoleCenter returns the centre of the mole sphere over hole i.
func (s *Scene) MoleCenter(i int) math3d.Vec3 {
	h := s.holes[i]
	return math3d.V3(h.X, models.MoleRadius, h.Z)
}

// Score returns the current score.
func (s *Scene) Score() int { return s.score }

// Stats returns the round counters.
func (s *Scene) Stats() Stats { return s.stats }

// ActiveMole returns the hole index of the live mole, or -1.
func (s *Scene) ActiveMole() int { return s.active }

// Holes returns the board.
func (s *Scene) Holes() []Hole { return s.holes }

// Shaking reports whether the camera shake is running.
func (s *Scene) Shaking() bool { return s.shake.Active() }

// Bursting reports whether the hit particles are still alive.
func (s *Scene) Bursting() bool { return s.burst.Active() }

// MoleColor returns the mole colour being displayed.
func (s *Scene) MoleColor() [3]float64 { return s.color.Current() }

// Pending reports whether an event of kind is scheduled.
func (s *Scene) Pending(kind EventKind) bool { return s.sched.Pending(kind) }
