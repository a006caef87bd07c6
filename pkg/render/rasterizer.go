package render

import (
	"math"

	"github.com/taigrr/whack/pkg/math3d"
)

// clipVertex is a vertex stage output: clip-space position plus the colour
// varying.
type clipVertex struct {
	pos     math3d.Vec4
	varying [4]float32
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y    float64 // Screen coordinates
	Z       float64 // Window depth in [0, 1]
	InvW    float64 // 1/w for perspective-correct interpolation
	Varying [4]float32
}

// maxClipVerts bounds a triangle clipped against one plane.
const maxClipVerts = 4

// clipNear clips a triangle against the near plane z >= -w. It returns the
// number of vertices written to out (0, 3 or 4).
func clipNear(tri [3]clipVertex, out *[maxClipVerts]clipVertex) int {
	n := 0
	for i := range 3 {
		a, b := tri[i], tri[(i+1)%3]
		da, db := a.pos.Z+a.pos.W, b.pos.Z+b.pos.W
		if da >= 0 {
			out[n] = a
			n++
		}
		if (da >= 0) != (db >= 0) {
			out[n] = lerpClip(a, b, da/(da-db))
			n++
		}
	}
	return n
}

func lerpClip(a, b clipVertex, t float64) clipVertex {
	v := clipVertex{pos: a.pos.Add(b.pos.Sub(a.pos).Scale(t))}
	ft := float32(t)
	for i := range 4 {
		v.varying[i] = a.varying[i] + (b.varying[i]-a.varying[i])*ft
	}
	return v
}

// toScreen performs the perspective divide and viewport transform. w is
// strictly positive for any vertex that survived near clipping.
func (e *Engine) toScreen(v clipVertex) screenVertex {
	invW := 1 / v.pos.W
	return screenVertex{
		X:       (v.pos.X*invW + 1) * 0.5 * float64(e.fb.Width),
		Y:       (1 - v.pos.Y*invW) * 0.5 * float64(e.fb.Height), // Y flipped
		Z:       (v.pos.Z*invW + 1) * 0.5,
		InvW:    invW,
		Varying: v.varying,
	}
}

// drawTriangle clips, then fills or outlines one triangle.
func (e *Engine) drawTriangle(a, b, c clipVertex) {
	var poly [maxClipVerts]clipVertex
	n := clipNear([3]clipVertex{a, b, c}, &poly)
	if n < 3 {
		return
	}

	var sv [maxClipVerts]screenVertex
	for i := range n {
		if poly[i].pos.W <= 0 {
			return
		}
		sv[i] = e.toScreen(poly[i])
	}

	if e.mode == DrawWireframe {
		for i := range n {
			e.drawEdge(sv[i], sv[(i+1)%n])
		}
		return
	}
	for i := 1; i+1 < n; i++ {
		e.fillTriangle(sv[0], sv[i], sv[i+1])
	}
}

// edge is one triangle edge in a form shared bit for bit by both triangles
// that use it: the endpoints are ordered canonically and the triangle's
// direction is kept as a sign, so a point gets the same edge value from
// either side, negated.
type edge struct {
	ax, ay  float64 // canonical start
	dx, dy  float64 // canonical end minus start
	flip    bool    // triangle walks the edge end to start
	topLeft bool    // pixels exactly on the edge belong to this triangle
}

// newEdge builds the directed edge a -> b of a triangle whose doubled signed
// area is area2.
func newEdge(a, b screenVertex, area2 float64) edge {
	flip := b.Y < a.Y || (b.Y == a.Y && b.X < a.X)
	if flip {
		a, b = b, a
	}
	e := edge{ax: a.X, ay: a.Y, dx: b.X - a.X, dy: b.Y - a.Y, flip: flip}

	// Gradient of the normalized edge function; it points into the triangle.
	gx, gy := -e.dy, e.dx
	if flip {
		gx, gy = -gx, -gy
	}
	if area2 < 0 {
		gx, gy = -gx, -gy
	}
	// Screen Y grows downward: a left edge has the interior to its right,
	// a top edge is horizontal with the interior below.
	e.topLeft = gx > 0 || (gx == 0 && gy > 0)
	return e
}

// value returns the edge function of the triangle's directed edge at p.
func (e edge) value(px, py float64) float64 {
	v := e.dx*(py-e.ay) - e.dy*(px-e.ax)
	if e.flip {
		return -v
	}
	return v
}

// covers applies the top-left rule to a normalized edge value.
func (e edge) covers(w float64) bool {
	return w > 0 || (w == 0 && e.topLeft)
}

// fillTriangle rasterizes a screen-space triangle with edge functions.
// Both windings are filled. Pixels on an edge shared by two triangles are
// covered exactly once.
func (e *Engine) fillTriangle(v0, v1, v2 screenVertex) {
	area2 := (v1.X-v0.X)*(v2.Y-v0.Y) - (v1.Y-v0.Y)*(v2.X-v0.X)
	if area2 == 0 || math.IsNaN(area2) {
		return
	}
	invArea := 1 / area2

	width, height := e.fb.Width, e.fb.Height
	minX := clampInt(math.Floor(min3(v0.X, v1.X, v2.X)), 0, width-1)
	maxX := clampInt(math.Ceil(max3(v0.X, v1.X, v2.X)), 0, width-1)
	minY := clampInt(math.Floor(min3(v0.Y, v1.Y, v2.Y)), 0, height-1)
	maxY := clampInt(math.Ceil(max3(v0.Y, v1.Y, v2.Y)), 0, height-1)

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	e0 := newEdge(v1, v2, area2)
	e1 := newEdge(v2, v0, area2)
	e2 := newEdge(v0, v1, area2)

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		row := y * width

		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			// Barycentric weights; all >= 0 inside for either winding.
			w0 := e0.value(px, py) * invArea
			w1 := e1.value(px, py) * invArea
			w2 := e2.value(px, py) * invArea
			if !e0.covers(w0) || !e1.covers(w1) || !e2.covers(w2) {
				continue
			}

			z := w0*v0.Z + w1*v1.Z + w2*v2.Z
			if z < 0 || z > 1 {
				continue
			}
			idx := row + x
			if z > e.depth[idx] {
				continue
			}

			// Perspective-correct varyings
			p0, p1, p2 := w0*v0.InvW, w1*v1.InvW, w2*v2.InvW
			sum := p0 + p1 + p2
			if sum == 0 {
				continue
			}
			k := 1 / sum
			f0, f1, f2 := float32(p0*k), float32(p1*k), float32(p2*k)
			var varying [4]float32
			for i := range 4 {
				varying[i] = f0*v0.Varying[i] + f1*v1.Varying[i] + f2*v2.Varying[i]
			}

			e.depth[idx] = z
			e.writeFragment(x, y, e.program.Fragment(varying))
		}
	}
}

func (e *Engine) writeFragment(x, y int, c [4]float32) {
	if e.blend == BlendAdditive {
		e.fb.AddPixel(x, y, c)
		return
	}
	out := toRGBA(c)
	out.A = 255
	e.fb.SetPixel(x, y, out)
}

// drawEdge draws one wireframe edge with the colour of its first vertex.
// Wireframe ignores depth so hidden edges show through.
func (e *Engine) drawEdge(a, b screenVertex) {
	c := e.program.Fragment(a.Varying)
	out := toRGBA(c)
	out.A = 255
	limit := float64(4 * max(e.fb.Width, e.fb.Height))
	e.fb.DrawLine(
		int(math.Floor(clampFloat(a.X, -limit, limit))), int(math.Floor(clampFloat(a.Y, -limit, limit))),
		int(math.Floor(clampFloat(b.X, -limit, limit))), int(math.Floor(clampFloat(b.Y, -limit, limit))),
		out,
	)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

func clampInt(v float64, lo, hi int) int {
	if !(v >= float64(lo)) {
		return lo
	}
	if v > float64(hi) {
		return hi
	}
	return int(v)
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
