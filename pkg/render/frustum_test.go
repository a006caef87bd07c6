package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/whack/pkg/math3d"
)

func mustPerspective(tb testing.TB, fovy, aspect, near, far float64) math3d.Mat4 {
	tb.Helper()
	m, err := math3d.Perspective(fovy, aspect, near, far)
	require.NoError(tb, err)
	return m
}

// boardView is the resting camera of the whack scene.
func boardView() math3d.Mat4 {
	return math3d.Identity().Translated(math3d.V3(0, -2, -12)).RotatedX(math.Pi / 6)
}

func box(cx, cy, cz, half float64) AABB {
	return AABB{
		Min: math3d.V3(cx-half, cy-half, cz-half),
		Max: math3d.V3(cx+half, cy+half, cz+half),
	}
}

func TestPlane(t *testing.T) {
	p := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	p.Normalize()
	assert.InDelta(t, 1, p.Normal.Len(), 1e-12)
	assert.InDelta(t, 2, p.D, 1e-12)
	assert.InDelta(t, 2+0.8, p.DistanceToPoint(math3d.V3(7, 0, 1)), 1e-12)

	zero := Plane{D: 3}
	zero.Normalize()
	assert.Equal(t, Plane{D: 3}, zero, "degenerate plane untouched")
}

func TestFrustumPlanes(t *testing.T) {
	f := NewFrustumFromMatrix(mustPerspective(t, math.Pi/4, 4.0/3.0, 0.1, 100))
	for i, p := range f.Planes {
		assert.InDelta(t, 1, p.Normal.Len(), 1e-9, "plane %d", i)
	}

	// Camera space: near faces -Z at distance 0.1, far faces +Z at 100.
	assert.InDelta(t, -1, f.Planes[FrustumNear].Normal.Z, 1e-9)
	assert.InDelta(t, -0.1, f.Planes[FrustumNear].DistanceToPoint(math3d.Zero3()), 1e-9)
	assert.InDelta(t, 1, f.Planes[FrustumFar].Normal.Z, 1e-9)
	assert.InDelta(t, 100, f.Planes[FrustumFar].DistanceToPoint(math3d.Zero3()), 1e-9)

	assert.Positive(t, f.Planes[FrustumLeft].Normal.X)
	assert.Negative(t, f.Planes[FrustumRight].Normal.X)
	assert.Positive(t, f.Planes[FrustumBottom].Normal.Y)
	assert.Negative(t, f.Planes[FrustumTop].Normal.Y)
}

func TestFrustumIntersectAABB(t *testing.T) {
	proj := mustPerspective(t, math.Pi/4, 4.0/3.0, 0.1, 100)
	f := NewFrustumFromMatrix(proj.Mul(boardView()))

	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"centre hole", box(0, 0, 0, 0.4), true},
		{"near corner hole", box(-2, 0, 2, 0.4), true},
		{"far corner hole", box(2, 0, -2, 0.4), true},
		{"mole", box(0, 0.3, 0, 0.3), true},
		{"whole lawn", AABB{Min: math3d.V3(-5, 0, -5), Max: math3d.V3(5, 0, 5)}, true},
		{"behind the camera", box(0, 20, 25, 1), false},
		{"off to the side", box(40, 0, 0, 1), false},
		{"beyond far plane", box(0, -67, -120, 1), false},
		{"enclosing everything", box(0, 0, 0, 500), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, f.IntersectAABB(tc.box))
		})
	}
}

func TestFrustumLocalSpace(t *testing.T) {
	proj := mustPerspective(t, math.Pi/4, 1, 0.1, 100)
	unit := box(0, 0, 0, 0.5)

	ahead := NewFrustumFromMatrix(proj.Mul(math3d.Translate(math3d.V3(0, 0, -5))))
	assert.True(t, ahead.IntersectAABB(unit))

	aside := NewFrustumFromMatrix(proj.Mul(math3d.Translate(math3d.V3(50, 0, -5))))
	assert.False(t, aside.IntersectAABB(unit))

	// A hole placed through the board view is tested in its own space.
	hole := NewFrustumFromMatrix(proj.Mul(boardView().Translated(math3d.V3(2, 0.01, 2))))
	assert.True(t, hole.IntersectAABB(AABB{Min: math3d.V3(-0.4, 0, -0.4), Max: math3d.V3(0.4, 0, 0.4)}))
}

func TestFrustumLookAt(t *testing.T) {
	proj := mustPerspective(t, math.Pi/3, 1, 1, 100)
	view := math3d.LookAt(math3d.Zero3(), math3d.V3(10, 0, 0), math3d.V3(0, 1, 0))
	f := NewFrustumFromMatrix(proj.Mul(view))

	assert.True(t, f.IntersectAABB(box(10, 0, 0, 0.1)))
	assert.False(t, f.IntersectAABB(box(-10, 0, 0, 0.1)))
}

func BenchmarkFrustumIntersectAABB(b *testing.B) {
	proj := mustPerspective(b, math.Pi/4, 4.0/3.0, 0.1, 100)
	f := NewFrustumFromMatrix(proj.Mul(boardView()))
	hole := box(2, 0, 2, 0.4)

	for b.Loop() {
		_ = f.IntersectAABB(hole)
	}
}

func BenchmarkFrustumExtraction(b *testing.B) {
	proj := mustPerspective(b, math.Pi/4, 4.0/3.0, 0.1, 100)
	viewProj := proj.Mul(boardView())

	for b.Loop() {
		_ = NewFrustumFromMatrix(viewProj)
	}
}
