package render

import (
	"github.com/taigrr/whack/pkg/math3d"
)

// Plane is the half-space Normal·p + D >= 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane so Normal has unit length and D is a true
// distance. Degenerate planes are left alone.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance of point, positive on the
// inside.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum is the six inward-facing clip planes of a projection.
type Frustum struct {
	Planes [6]Plane
}

// Plane indices within Frustum.Planes.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts the clip planes of m (Gribb/Hartmann). With
// m = P*MV the planes live in the object's local space, so an object's
// local bounds are tested without transforming them.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	// Row i of a column-major matrix is m[i], m[i+4], m[i+8], m[i+12].
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	w, dw := row(3)

	var f Frustum
	for axis := range 3 {
		n, d := row(axis)
		f.Planes[2*axis] = Plane{Normal: w.Add(n), D: dw + d}   // -w <= x, y, z
		f.Planes[2*axis+1] = Plane{Normal: w.Sub(n), D: dw - d} // x, y, z <= w
	}
	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// IntersectAABB reports whether box may be inside the frustum. Only the
// corner furthest along each plane normal is tested, so boxes just outside
// a frustum edge can pass; nothing visible is ever rejected.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, plane := range f.Planes {
		corner := box.Min
		if plane.Normal.X >= 0 {
			corner.X = box.Max.X
		}
		if plane.Normal.Y >= 0 {
			corner.Y = box.Max.Y
		}
		if plane.Normal.Z >= 0 {
			corner.Z = box.Max.Z
		}
		if plane.DistanceToPoint(corner) < 0 {
			return false
		}
	}
	return true
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}
