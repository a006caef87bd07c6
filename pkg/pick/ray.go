// Package pick turns screen positions into world-space rays and tests them
// against bounding spheres.
package pick

import (
	"math"

	"github.com/taigrr/whack/pkg/math3d"
)

// minDirLen is the shortest unprojected direction accepted as a ray.
const minDirLen = 1e-12

// Ray is a half-line from Origin along Direction. Direction is unit length,
// or zero for a degenerate ray that hits nothing.
type Ray struct {
	Origin    math3d.Vec3
	Direction math3d.Vec3
}

// Degenerate reports whether the ray was built from unusable input.
func (r Ray) Degenerate() bool {
	return r.Direction == math3d.Vec3{}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) math3d.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// FromScreen builds a picking ray through the NDC point (nx, ny), Y up,
// using the projection and view the frame was drawn with.
//
// The clip point (nx, ny, -1, 1) is taken to eye space and then treated as
// the direction (x, y, -1, 0); its projected depth is discarded. This is
// exact for symmetric perspective projections. The origin is the camera
// position, the translation column of the inverse view.
//
// A singular matrix or a vanishing direction yields a degenerate ray.
func FromScreen(nx, ny float64, projection, view math3d.Mat4) Ray {
	invProj, err := projection.Invert()
	if err != nil {
		return Ray{}
	}
	invView, err := view.Invert()
	if err != nil {
		return Ray{}
	}

	eye := invProj.TransformVector(math3d.V4(nx, ny, -1, 1))
	eye.Z = -1
	eye.W = 0

	world := invView.TransformVector(eye).Vec3()
	l := world.Len()
	if l < minDirLen || math.IsNaN(l) || math.IsInf(l, 0) {
		return Ray{}
	}
	return Ray{
		Origin:    invView.Translation(),
		Direction: world.Scale(1 / l),
	}
}

// Hit describes where a ray crosses a sphere. TNear is clamped to zero when
// the ray starts inside the sphere.
type Hit struct {
	TNear float64
	TFar  float64
	Point math3d.Vec3 // ray.At(TNear)
}

// IntersectSphereHit solves |O + tD - C| = r with the reduced discriminant
// (b = D·(O-C), c = |O-C|² - r², D unit). It misses when there is no real
// root or when the whole sphere is strictly behind the origin. A root at
// exactly t = 0 is a hit.
func IntersectSphereHit(ray Ray, center math3d.Vec3, radius float64) (Hit, bool) {
	if ray.Degenerate() {
		return Hit{}, false
	}
	oc := ray.Origin.Sub(center)
	b := oc.Dot(ray.Direction)
	c := oc.LenSq() - radius*radius

	disc := b*b - c
	if disc < 0 {
		return Hit{}, false
	}
	sq := math.Sqrt(disc)
	tNear, tFar := -b-sq, -b+sq
	if tFar < 0 {
		return Hit{}, false
	}
	if tNear < 0 {
		// Origin inside the sphere.
		tNear = 0
	}
	return Hit{TNear: tNear, TFar: tFar, Point: ray.At(tNear)}, true
}

// IntersectSphere reports whether ray hits the sphere.
func IntersectSphere(ray Ray, center math3d.Vec3, radius float64) bool {
	_, ok := IntersectSphereHit(ray, center, radius)
	return ok
}

// Sphere is a picking target.
type Sphere struct {
	Center math3d.Vec3
	Radius float64
}

// Pick returns the index of the target with the nearest hit along ray.
func Pick(ray Ray, targets []Sphere) (index int, hit Hit, ok bool) {
	index = -1
	for i, s := range targets {
		h, hitOK := IntersectSphereHit(ray, s.Center, s.Radius)
		if !hitOK {
			continue
		}
		if !ok || h.TNear < hit.TNear {
			index, hit, ok = i, h, true
		}
	}
	return index, hit, ok
}

// NDC converts a position on a width x height surface, Y down, to
// normalized device coordinates, Y up.
func NDC(x, y, width, height float64) (nx, ny float64) {
	return x/width*2 - 1, -(y/height*2 - 1)
}
