package math3d

import (
	"errors"
	"math"
)

// SingularEpsilon is the determinant magnitude below which Invert reports a
// singular matrix.
const SingularEpsilon = 1e-12

var (
	// ErrSingular is returned by Invert when the matrix has no inverse.
	ErrSingular = errors.New("math3d: singular matrix")

	// ErrInvalidClipPlanes is returned by Perspective unless far > near > 0.
	ErrInvalidClipPlanes = errors.New("math3d: far plane must exceed near plane")

	// ErrInvalidProjection is returned by Perspective for a field of view
	// outside (0, π) or a non-positive aspect ratio.
	ErrInvalidProjection = errors.New("math3d: invalid field of view or aspect ratio")
)

// Mat4 is a 4x4 matrix stored in column-major order.
// This matches OpenGL conventions for easier reasoning about transforms.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
//
// Mat4 is an array, so assignment copies it. Methods that return a Mat4
// never alias their inputs, and m = m.Mul(x) composes in place.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	var m Mat4
	m[0], m[5], m[10], m[15] = v.X, v.Y, v.Z, 1
	return m
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ creates a rotation matrix around the Z axis.
func RotateZ(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Rotate creates a rotation matrix around an arbitrary axis.
// A zero axis yields the identity.
func Rotate(axis Vec3, angle float64) Mat4 {
	axis = axis.Normalize()
	if axis == (Vec3{}) {
		return Identity()
	}
	s, c := math.Sincos(angle)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z

	return Mat4{
		t*x*x + c, t*x*y + s*z, t*x*z - s*y, 0,
		t*x*y - s*z, t*y*y + c, t*y*z + s*x, 0,
		t*x*z + s*y, t*y*z - s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}
}

// LookAt creates a view matrix looking from eye towards center.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Perspective creates a right-handed perspective projection that maps the
// view frustum to normalized device coordinates in [-1, 1] on every axis.
// fovy is the vertical field of view in radians and aspect is width/height.
func Perspective(fovy, aspect, near, far float64) (Mat4, error) {
	if !(fovy > 0 && fovy < math.Pi) || !(aspect > 0) {
		return Mat4{}, ErrInvalidProjection
	}
	if !(near > 0 && far > near) {
		return Mat4{}, ErrInvalidClipPlanes
	}

	f := 1.0 / math.Tan(fovy/2)
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}, nil
}

// Mul multiplies two matrices: a * b. Applied to a vector, b acts first.
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// SetMul stores a * b in m. a and b are copied on entry, so m may be the
// same matrix as either operand.
func (m *Mat4) SetMul(a, b Mat4) {
	*m = a.Mul(b)
}

// Translated returns m * Translate(v).
func (m Mat4) Translated(v Vec3) Mat4 {
	// Only the last column changes.
	for row := range 4 {
		m[12+row] += m[row]*v.X + m[4+row]*v.Y + m[8+row]*v.Z
	}
	return m
}

// RotatedX returns m * RotateX(angle).
func (m Mat4) RotatedX(angle float64) Mat4 {
	return m.Mul(RotateX(angle))
}

// RotatedY returns m * RotateY(angle).
func (m Mat4) RotatedY(angle float64) Mat4 {
	return m.Mul(RotateY(angle))
}

// RotatedZ returns m * RotateZ(angle).
func (m Mat4) RotatedZ(angle float64) Mat4 {
	return m.Mul(RotateZ(angle))
}

// Scaled returns m * Scale(v).
func (m Mat4) Scaled(v Vec3) Mat4 {
	for row := range 4 {
		m[row] *= v.X
		m[4+row] *= v.Y
		m[8+row] *= v.Z
	}
	return m
}

// TransformPoint transforms p as a point (w=1) and divides by the
// resulting w unless it is zero.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	w := m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	if w == 0 {
		w = 1
	}
	return Vec3{
		(m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]) / w,
		(m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]) / w,
		(m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14]) / w,
	}
}

// TransformDir transforms v as a direction (w=0, no translation).
func (m Mat4) TransformDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// TransformVector transforms a homogeneous vector. The caller picks w:
// 1 for points, 0 for directions. No perspective divide is applied.
func (m Mat4) TransformVector(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// cofactors returns the adjugate of m and its determinant. The expansion
// treats the column-major array as the transpose, whose row-major adjugate
// lands back in column-major order.
func (m Mat4) cofactors() (adj Mat4, det float64) {
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det = s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0

	adj[0] = m[5]*c5 - m[6]*c4 + m[7]*c3
	adj[1] = -m[1]*c5 + m[2]*c4 - m[3]*c3
	adj[2] = m[13]*s5 - m[14]*s4 + m[15]*s3
	adj[3] = -m[9]*s5 + m[10]*s4 - m[11]*s3

	adj[4] = -m[4]*c5 + m[6]*c2 - m[7]*c1
	adj[5] = m[0]*c5 - m[2]*c2 + m[3]*c1
	adj[6] = -m[12]*s5 + m[14]*s2 - m[15]*s1
	adj[7] = m[8]*s5 - m[10]*s2 + m[11]*s1

	adj[8] = m[4]*c4 - m[5]*c2 + m[7]*c0
	adj[9] = -m[0]*c4 + m[1]*c2 - m[3]*c0
	adj[10] = m[12]*s4 - m[13]*s2 + m[15]*s0
	adj[11] = -m[8]*s4 + m[9]*s2 - m[11]*s0

	adj[12] = -m[4]*c3 + m[5]*c1 - m[6]*c0
	adj[13] = m[0]*c3 - m[1]*c1 + m[2]*c0
	adj[14] = -m[12]*s3 + m[13]*s1 - m[14]*s0
	adj[15] = m[8]*s3 - m[9]*s1 + m[10]*s0

	return adj, det
}

// Determinant returns the determinant of the matrix.
func (m Mat4) Determinant() float64 {
	_, det := m.cofactors()
	return det
}

// Invert returns the inverse of m, or ErrSingular when |det| is below
// SingularEpsilon.
func (m Mat4) Invert() (Mat4, error) {
	adj, det := m.cofactors()
	if math.Abs(det) < SingularEpsilon || math.IsNaN(det) {
		return Mat4{}, ErrSingular
	}
	inv := 1.0 / det
	for i := range adj {
		adj[i] *= inv
	}
	return adj, nil
}

// Inverse returns the inverse of the matrix, or the identity if it is
// singular. Use Invert when the caller needs to know.
func (m Mat4) Inverse() Mat4 {
	inv, err := m.Invert()
	if err != nil {
		return Identity()
	}
	return inv
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// ApproxEqual reports whether every element of a and b differs by at most eps.
func (a Mat4) ApproxEqual(b Mat4, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// Float32 returns the matrix as float32 values, the layout a shader
// uniform upload expects.
func (m Mat4) Float32() [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}
