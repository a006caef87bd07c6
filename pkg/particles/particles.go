// Package particles simulates the burst of sparks shown when a mole is hit.
//
// A System cycles idle -> emitting -> decaying -> idle. Emit replaces every
// particle at once; Update advances one frame (velocities are per frame, not
// per second); Render draws each live particle as an additively blended
// quad sharing one render object.
package particles

import (
	"math"
	"math/rand/v2"

	"github.com/taigrr/whack/pkg/math3d"
	"github.com/taigrr/whack/pkg/render"
)

// Renderer is the part of the render engine a System draws through.
type Renderer interface {
	CreateRenderObject(positions []float32, indices []uint16, colors []float32) render.RenderObject
	UpdateBuffer(h render.BufferHandle, data []float32)
	DrawObject(obj render.RenderObject, modelView math3d.Mat4)
	SetBlend(mode render.BlendMode)
	ViewMatrix() math3d.Mat4
}

// DefaultCapacity is the particle count of one burst.
const DefaultCapacity = 200

// quadHalf is half the edge of the particle quad before scaling.
const quadHalf = 0.05

// Particle is one spark.
type Particle struct {
	Position math3d.Vec3
	Velocity math3d.Vec3
	Life     float64 // 1 at emission, dead at <= 0
	Scale    float64
	Color    [4]float32

	// RotationSpeed is sampled but not applied; particles are drawn
	// camera-aligned with translation and scale only.
	RotationSpeed float64
}

// Tier is one entry of the emission palette. A particle takes the first
// tier whose Threshold exceeds a uniform draw in [0, 1).
type Tier struct {
	Threshold float64
	Color     [4]float32
}

// Params tunes emission and decay. Speeds are in units per frame.
type Params struct {
	MinSpeed       float64
	SpeedRange     float64
	UpwardBase     float64
	UpwardRandom   float64
	ScaleMin       float64
	ScaleRange     float64
	Gravity        float64 // added to vertical velocity each frame
	LifeDecay      float64 // subtracted from life each frame
	ScaleDecay     float64 // scale multiplier each frame, < 1
	BaseAlpha      float32
	RotationJitter float64 // rotation speed is sampled in ±RotationJitter
	Palette        []Tier
}

// DefaultParams returns the tuning of the whack-a-mole hit burst.
func DefaultParams() Params {
	return Params{
		MinSpeed:       0.2,
		SpeedRange:     0.3,
		UpwardBase:     0.4,
		UpwardRandom:   0.5,
		ScaleMin:       0.6,
		ScaleRange:     0.8,
		Gravity:        -0.012,
		LifeDecay:      0.015,
		ScaleDecay:     0.99,
		BaseAlpha:      1.0,
		RotationJitter: 0.1,
		Palette: []Tier{
			{Threshold: 0.4, Color: [4]float32{1.0, 0.9, 0.2, 1.0}}, // gold
			{Threshold: 0.7, Color: [4]float32{1.0, 1.0, 0.6, 1.0}}, // pale yellow
			{Threshold: 1.0, Color: [4]float32{1.0, 0.7, 0.2, 1.0}}, // orange
		},
	}
}

// Option configures a System.
type Option func(*System)

// WithRand sets the random source. Tests pass a seeded one.
func WithRand(r *rand.Rand) Option {
	return func(s *System) {
		s.rng = r
	}
}

// WithParams replaces DefaultParams.
func WithParams(p Params) Option {
	return func(s *System) {
		s.params = p
	}
}

// System owns a fixed-capacity particle batch and the render object every
// particle is drawn with.
type System struct {
	r        Renderer
	capacity int
	params   Params
	rng      *rand.Rand

	particles []Particle
	active    bool
	origin    math3d.Vec3

	obj    render.RenderObject
	colors [16]float32 // 4 vertices x RGBA, rewritten per draw
}

// New creates an idle system of the given capacity and uploads its quad.
// A non-positive capacity uses DefaultCapacity.
func New(r Renderer, capacity int, opts ...Option) *System {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &System{
		r:        r,
		capacity: capacity,
		params:   DefaultParams(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.particles = make([]Particle, 0, capacity)

	positions := []float32{
		-quadHalf, quadHalf, 0,
		quadHalf, quadHalf, 0,
		quadHalf, -quadHalf, 0,
		-quadHalf, -quadHalf, 0,
	}
	indices := []uint16{0, 1, 2, 0, 2, 3}
	gold := s.params.color(0)
	for v := range 4 {
		copy(s.colors[v*4:], gold[:])
	}
	s.obj = r.CreateRenderObject(positions, indices, s.colors[:])
	return s
}

// color returns the palette colour for a uniform draw u.
func (p Params) color(u float64) [4]float32 {
	for _, tier := range p.Palette {
		if u < tier.Threshold {
			return tier.Color
		}
	}
	if n := len(p.Palette); n > 0 {
		return p.Palette[n-1].Color
	}
	return [4]float32{1, 1, 1, 1}
}

// Emit replaces the whole batch with capacity fresh particles at origin and
// activates the system. A burst in progress is discarded.
func (s *System) Emit(origin math3d.Vec3) {
	p := &s.params
	s.origin = origin
	s.particles = s.particles[:0]
	for range s.capacity {
		angle := s.rng.Float64() * 2 * math.Pi
		speed := p.MinSpeed + s.rng.Float64()*p.SpeedRange
		sin, cos := math.Sincos(angle)

		c := p.color(s.rng.Float64())
		s.particles = append(s.particles, Particle{
			Position:      origin,
			Velocity:      math3d.V3(cos*speed, p.UpwardBase+s.rng.Float64()*p.UpwardRandom, sin*speed),
			Life:          1,
			Scale:         p.ScaleMin + s.rng.Float64()*p.ScaleRange,
			Color:         c,
			RotationSpeed: (s.rng.Float64()*2 - 1) * p.RotationJitter,
		})
	}
	s.active = len(s.particles) > 0
}

// Update advances every live particle by one frame, then rescans the batch
// to decide whether the system is still active.
func (s *System) Update() {
	if !s.active {
		return
	}
	p := &s.params
	for i := range s.particles {
		pt := &s.particles[i]
		if pt.Life <= 0 {
			continue
		}
		pt.Position = pt.Position.Add(pt.Velocity)
		pt.Velocity.Y += p.Gravity
		pt.Life -= p.LifeDecay
		pt.Scale *= p.ScaleDecay
	}

	s.active = false
	for i := range s.particles {
		if s.particles[i].Life > 0 {
			s.active = true
			break
		}
	}
}

// Render draws each live particle at view * T(position) * S(scale) with
// alpha BaseAlpha*life. Additive blending is enabled for the pass and
// always disabled again before returning.
func (s *System) Render() {
	if !s.active {
		return
	}
	s.r.SetBlend(render.BlendAdditive)
	defer s.r.SetBlend(render.BlendNone)

	view := s.r.ViewMatrix()
	for i := range s.particles {
		pt := &s.particles[i]
		if pt.Life <= 0 {
			continue
		}
		mv := view.Translated(pt.Position).Scaled(math3d.V3(pt.Scale, pt.Scale, pt.Scale))

		alpha := s.params.BaseAlpha * float32(pt.Life)
		for v := range 4 {
			s.colors[v*4] = pt.Color[0]
			s.colors[v*4+1] = pt.Color[1]
			s.colors[v*4+2] = pt.Color[2]
			s.colors[v*4+3] = pt.Color[3] * alpha
		}
		s.r.UpdateBuffer(s.obj.Color, s.colors[:])
		s.r.DrawObject(s.obj, mv)
	}
}

// Active reports whether any particle was alive after the last Update, or
// a burst was just emitted.
func (s *System) Active() bool { return s.active }

// Live returns the number of particles with life > 0.
func (s *System) Live() int {
	n := 0
	for i := range s.particles {
		if s.particles[i].Life > 0 {
			n++
		}
	}
	return n
}

// Particles returns the current batch. The slice is reused by Emit.
func (s *System) Particles() []Particle { return s.particles }

// Origin returns the position of the last emission.
func (s *System) Origin() math3d.Vec3 { return s.origin }

// Capacity returns the burst size.
func (s *System) Capacity() int { return s.capacity }
