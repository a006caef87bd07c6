package render

import (
	"errors"
	"image/color"

	"github.com/taigrr/whack/pkg/math3d"
)

// ErrContextUnavailable is returned by Init when there is nothing to draw on.
var ErrContextUnavailable = errors.New("graphics context unavailable")

// Surface is anything with a pixel size the engine can bind to.
type Surface interface {
	Size() (width, height int)
}

// BlendMode selects how fragments combine with the framebuffer.
type BlendMode uint8

const (
	BlendNone     BlendMode = iota // overwrite
	BlendAdditive                  // dst + src*alpha
)

// DrawMode selects filled triangles or edges only.
type DrawMode uint8

const (
	DrawFill DrawMode = iota
	DrawWireframe
)

// CullingStats tracks frustum culling performance.
type CullingStats struct {
	ObjectsTested int // Total objects tested for culling
	ObjectsCulled int // Objects culled (not rendered)
	ObjectsDrawn  int // Objects that passed culling
}

// Option configures an Engine at Init.
type Option func(*Engine)

// WithProgram replaces the default program. It is linked during Init.
func WithProgram(p *Program) Option {
	return func(e *Engine) {
		e.program = p
	}
}

// WithCamera makes the engine draw through an existing camera.
func WithCamera(c *Camera) Option {
	return func(e *Engine) {
		e.camera = c
	}
}

// Engine owns the framebuffer, depth buffer, linked program and every buffer
// created through it. It is not safe for concurrent use.
type Engine struct {
	fb     *Framebuffer
	depth  []float64
	camera *Camera

	program  *Program
	uniforms Uniforms
	buffers  []buffer

	blend BlendMode
	mode  DrawMode

	CullingStats CullingStats

	verts []clipVertex // per-draw vertex stage output
}

// Init binds an engine to surface and links its program. When surface is a
// *Framebuffer the engine draws into it directly; otherwise it allocates a
// framebuffer of the surface's size.
func Init(surface Surface, opts ...Option) (*Engine, error) {
	if surface == nil {
		return nil, ErrContextUnavailable
	}
	if fb, ok := surface.(*Framebuffer); ok && fb == nil {
		return nil, ErrContextUnavailable
	}
	w, h := surface.Size()
	if w <= 0 || h <= 0 {
		return nil, ErrContextUnavailable
	}

	e := &Engine{program: DefaultProgram()}
	for _, opt := range opts {
		opt(e)
	}
	if e.program == nil {
		e.program = DefaultProgram()
	}
	if err := e.program.Link(); err != nil {
		return nil, err
	}
	if e.camera == nil {
		e.camera = NewCamera()
	}

	fb, ok := surface.(*Framebuffer)
	if !ok {
		fb = NewFramebuffer(w, h)
	}
	e.fb = fb
	e.depth = make([]float64, w*h)
	e.clearDepth()
	return e, nil
}

// Resize reallocates the framebuffer and depth buffer. Non-positive sizes
// are ignored.
func (e *Engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == e.fb.Width && height == e.fb.Height {
		return
	}
	e.fb = NewFramebuffer(width, height)
	e.depth = make([]float64, width*height)
	e.clearDepth()
}

// Framebuffer returns the colour target.
func (e *Engine) Framebuffer() *Framebuffer { return e.fb }

// Camera returns the camera SetCamera and SetPerspective write to.
func (e *Engine) Camera() *Camera { return e.camera }

// ProjectionMatrix returns the current projection.
func (e *Engine) ProjectionMatrix() math3d.Mat4 { return e.camera.ProjectionMatrix() }

// ViewMatrix returns the current view.
func (e *Engine) ViewMatrix() math3d.Mat4 { return e.camera.ViewMatrix() }

// BeginFrame clears colour to clear, depth to 1.0, and resets the culling
// stats. Depth testing is always on with a less-or-equal comparison.
func (e *Engine) BeginFrame(clear [4]float32) {
	c := toRGBA(clear)
	c.A = 255
	e.fb.Clear(c)
	e.clearDepth()
	e.CullingStats = CullingStats{}
}

func (e *Engine) clearDepth() {
	n := len(e.depth)
	if n == 0 {
		return
	}
	e.depth[0] = 1
	for i := 1; i < n; i *= 2 {
		copy(e.depth[i:], e.depth[:i])
	}
}

// SetPerspective recomputes the projection. On invalid input the previous
// projection stays in effect and the error is returned.
func (e *Engine) SetPerspective(fovy, aspect, near, far float64) error {
	return e.camera.SetPerspective(fovy, aspect, near, far)
}

// SetCamera sets the view to I * T(position) * Rx * Ry * Rz.
func (e *Engine) SetCamera(position, rotation math3d.Vec3) {
	e.camera.SetPlacement(position, rotation)
}

// SetBlend sets the blend mode for subsequent draws.
func (e *Engine) SetBlend(mode BlendMode) { e.blend = mode }

// Blend reports the current blend mode.
func (e *Engine) Blend() BlendMode { return e.blend }

// SetDrawMode switches between filled and wireframe rendering.
func (e *Engine) SetDrawMode(mode DrawMode) { e.mode = mode }

// DrawObject draws obj's first Count indices as triangles with modelView
// and the current projection. Objects whose local bounds fall outside the
// frustum are skipped. Indices that reach past the position or colour
// buffers are skipped triangle by triangle.
func (e *Engine) DrawObject(obj RenderObject, modelView math3d.Mat4) {
	proj := e.camera.ProjectionMatrix()

	e.CullingStats.ObjectsTested++
	frustum := NewFrustumFromMatrix(proj.Mul(modelView))
	if !frustum.IntersectAABB(e.Bounds(obj)) {
		e.CullingStats.ObjectsCulled++
		return
	}
	e.CullingStats.ObjectsDrawn++

	e.uniforms.Projection = proj
	e.uniforms.ModelView = modelView

	positions := e.buffer(obj.Position).floats
	colors := e.buffer(obj.Color).floats
	indices := e.buffer(obj.Index).indices
	count := min(obj.Count, len(indices))

	n := len(positions) / 3
	e.verts = e.verts[:0]
	for i := range n {
		p := math3d.V3(float64(positions[3*i]), float64(positions[3*i+1]), float64(positions[3*i+2]))
		c := [4]float32{1, 1, 1, 1}
		if 4*i+3 < len(colors) {
			c = [4]float32{colors[4*i], colors[4*i+1], colors[4*i+2], colors[4*i+3]}
		}
		clip, varying := e.program.Vertex(&e.uniforms, p, c)
		e.verts = append(e.verts, clipVertex{pos: clip, varying: varying})
	}

	for i := 0; i+2 < count; i += 3 {
		i0, i1, i2 := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		e.drawTriangle(e.verts[i0], e.verts[i1], e.verts[i2])
	}
}

// toRGBA converts a [0, 1] float colour to 8-bit channels, clamping.
func toRGBA(c [4]float32) color.RGBA {
	return color.RGBA{
		R: unitToByte(c[0]),
		G: unitToByte(c[1]),
		B: unitToByte(c[2]),
		A: unitToByte(c[3]),
	}
}

func unitToByte(v float32) uint8 {
	switch {
	case v <= 0 || v != v:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
