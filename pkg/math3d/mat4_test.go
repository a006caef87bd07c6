package math3d

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestRotateThenInverseRotateIsIdentity(t *testing.T) {
	base := Translate(V3(1, -2, 3)).Mul(Scale(V3(2, 3, 4)))
	rotations := []struct {
		name   string
		rotate func(Mat4, float64) Mat4
	}{
		{"X", Mat4.RotatedX},
		{"Y", Mat4.RotatedY},
		{"Z", Mat4.RotatedZ},
	}
	angles := []float64{0, 0.3, -1.2, math.Pi / 2, math.Pi, 5.5}

	for _, r := range rotations {
		for _, a := range angles {
			got := r.rotate(r.rotate(base, a), -a)
			assert.Truef(t, got.ApproxEqual(base, eps), "axis %s angle %v: %v", r.name, a, got)
		}
	}
}

func TestRotateArbitraryAxisMatchesPrincipal(t *testing.T) {
	assert.True(t, Rotate(V3(1, 0, 0), 0.7).ApproxEqual(RotateX(0.7), eps))
	assert.True(t, Rotate(V3(0, 2, 0), 0.7).ApproxEqual(RotateY(0.7), eps))
	assert.True(t, Rotate(V3(0, 0, 5), 0.7).ApproxEqual(RotateZ(0.7), eps))
	assert.Equal(t, Identity(), Rotate(Vec3{}, 1))
}

func TestInvertTwiceReturnsOriginal(t *testing.T) {
	proj, err := Perspective(math.Pi/4, 16.0/9.0, 0.1, 100)
	require.NoError(t, err)

	mats := map[string]Mat4{
		"identity":    Identity(),
		"translation": Translate(V3(4, -5, 6)),
		"trs":         Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(V3(2, 0.5, 3))),
		"view":        Identity().Translated(V3(0, -2, -12)).RotatedX(math.Pi / 6),
		"projection":  proj,
	}
	for name, m := range mats {
		t.Run(name, func(t *testing.T) {
			inv, err := m.Invert()
			require.NoError(t, err)
			back, err := inv.Invert()
			require.NoError(t, err)
			assert.True(t, back.ApproxEqual(m, 1e-7), "got %v want %v", back, m)
			assert.True(t, m.Mul(inv).ApproxEqual(Identity(), 1e-9))
		})
	}
}

func TestInvertSingular(t *testing.T) {
	_, err := Scale(V3(1, 0, 1)).Invert()
	assert.ErrorIs(t, err, ErrSingular)

	var zero Mat4
	_, err = zero.Invert()
	assert.ErrorIs(t, err, ErrSingular)

	assert.Equal(t, Identity(), zero.Inverse())
}

func TestDeterminant(t *testing.T) {
	assert.InDelta(t, 1.0, Identity().Determinant(), eps)
	assert.InDelta(t, 24.0, Scale(V3(2, 3, 4)).Determinant(), eps)
	assert.InDelta(t, 1.0, RotateZ(1.1).Mul(Translate(V3(7, 8, 9))).Determinant(), eps)
}

func TestCompositionHelpersMatchMul(t *testing.T) {
	m := RotateX(0.4).Mul(Translate(V3(1, 2, 3)))
	v := V3(-3, 0.5, 2)

	assert.True(t, m.Translated(v).ApproxEqual(m.Mul(Translate(v)), eps))
	assert.True(t, m.Scaled(v).ApproxEqual(m.Mul(Scale(v)), eps))
}

func TestSetMulAliasing(t *testing.T) {
	a := Translate(V3(1, 2, 3))
	b := RotateY(0.9)
	want := a.Mul(b)

	got := a
	got.SetMul(got, b)
	assert.Equal(t, want, got)

	want = a.Mul(b)
	got = b
	got.SetMul(a, got)
	assert.Equal(t, want, got)

	sq := a.Mul(a)
	got = a
	got.SetMul(got, got)
	assert.Equal(t, sq, got)
}

func TestPerspective(t *testing.T) {
	p, err := Perspective(math.Pi/2, 1, 1, 10)
	require.NoError(t, err)

	// Near plane centre maps to z=-1, far plane centre to z=+1.
	near := p.TransformVector(V4(0, 0, -1, 1)).PerspectiveDivide()
	far := p.TransformVector(V4(0, 0, -10, 1)).PerspectiveDivide()
	assert.InDelta(t, -1, near.Z, eps)
	assert.InDelta(t, 1, far.Z, eps)

	// 90 degree fov: the top edge of the near plane maps to y=1.
	top := p.TransformVector(V4(0, 1, -1, 1)).PerspectiveDivide()
	assert.InDelta(t, 1, top.Y, eps)
}

func TestPerspectiveRejectsBadInput(t *testing.T) {
	tests := []struct {
		name                   string
		fov, aspect, near, far float64
		want                   error
	}{
		{"far equals near", 1, 1, 1, 1, ErrInvalidClipPlanes},
		{"far before near", 1, 1, 10, 1, ErrInvalidClipPlanes},
		{"zero near", 1, 1, 0, 10, ErrInvalidClipPlanes},
		{"zero fov", 0, 1, 0.1, 10, ErrInvalidProjection},
		{"fov pi", math.Pi, 1, 0.1, 10, ErrInvalidProjection},
		{"zero aspect", 1, 0, 0.1, 10, ErrInvalidProjection},
		{"nan aspect", 1, math.NaN(), 0.1, 10, ErrInvalidProjection},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Perspective(tc.fov, tc.aspect, tc.near, tc.far)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTransformPointAndVector(t *testing.T) {
	m := Translate(V3(1, 0, 0))

	assert.Equal(t, V3(1, 0, 0), m.TransformPoint(Zero3()))
	assert.Equal(t, V3(0, 1, 0), m.TransformDir(V3(0, 1, 0)))

	// w picks point or direction semantics.
	assert.Equal(t, V4(3, 2, 3, 1), m.TransformVector(V4(2, 2, 3, 1)))
	assert.Equal(t, V4(2, 2, 3, 0), m.TransformVector(V4(2, 2, 3, 0)))
}

func TestRotationDirection(t *testing.T) {
	// Right-handed: +90 degrees about Z takes +X to +Y.
	got := RotateZ(math.Pi / 2).TransformDir(V3(1, 0, 0))
	assert.True(t, got.ApproxEqual(V3(0, 1, 0), eps), "got %v", got)

	got = RotateX(math.Pi / 2).TransformDir(V3(0, 1, 0))
	assert.True(t, got.ApproxEqual(V3(0, 0, 1), eps), "got %v", got)

	got = RotateY(math.Pi / 2).TransformDir(V3(0, 0, 1))
	assert.True(t, got.ApproxEqual(V3(1, 0, 0), eps), "got %v", got)
}

func TestFloat32(t *testing.T) {
	f := Translate(V3(1.5, 2, 3)).Float32()
	assert.Equal(t, float32(1.5), f[12])
	assert.Equal(t, float32(1), f[15])
}

func TestVec3Helpers(t *testing.T) {
	a, b := V3(1, 2, 3), V3(4, 6, 3)

	assert.Equal(t, V3(5, 8, 6), a.Add(b))
	assert.Equal(t, V3(-3, -4, 0), a.Sub(b))
	assert.Equal(t, V3(2, 4, 6), a.Scale(2))
	assert.Equal(t, 25.0, a.Dot(b))
	assert.Equal(t, V3(0, 0, 1), V3(1, 0, 0).Cross(V3(0, 1, 0)))
	assert.Equal(t, 5.0, a.Distance(b))
	assert.Equal(t, 25.0, a.Sub(b).LenSq())

	assert.Equal(t, a, a.Lerp(b, 0))
	assert.Equal(t, b, a.Lerp(b, 1))
	assert.Equal(t, V3(2.5, 4, 3), a.Lerp(b, 0.5))

	assert.Equal(t, V3(1, 2, 3), a.Min(b))
	assert.Equal(t, V3(4, 6, 3), a.Max(b))

	assert.InDelta(t, 1, b.Normalize().Len(), eps)
	assert.Equal(t, Zero3(), Zero3().Normalize())
}

func TestVec4Helpers(t *testing.T) {
	a, b := V4(1, 2, 3, 1), V4(3, 2, 1, 1)

	assert.Equal(t, V4(4, 4, 4, 2), a.Add(b))
	assert.Equal(t, V4(-2, 0, 2, 0), a.Sub(b))
	assert.Equal(t, V4(2, 4, 6, 2), a.Scale(2))
	assert.Equal(t, V3(1, 2, 3), a.Vec3())
	assert.Equal(t, a.Vec3(), V4FromV3(a.Vec3(), 1).PerspectiveDivide())
	assert.Equal(t, V3(0.5, 1, 1.5), V4(1, 2, 3, 2).PerspectiveDivide())
	assert.Equal(t, V3(1, 2, 3), V4(1, 2, 3, 0).PerspectiveDivide())
}
