package math3d

import (
	"math"
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4SetMulInPlace(b *testing.B) {
	m := Translate(V3(1, 2, 3))
	r := RotateY(0.001)

	for b.Loop() {
		m.SetMul(m, r)
	}
}

func BenchmarkMat4TransformVector(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.TransformVector(v)
	}
}

func BenchmarkMat4TransformPoint(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.TransformPoint(v)
	}
}

func BenchmarkMat4Invert(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(V3(2, 2, 2)))

	for b.Loop() {
		_, _ = m.Invert()
	}
}

func BenchmarkPerspective(b *testing.B) {
	for b.Loop() {
		_, _ = Perspective(math.Pi/4, 1.333, 0.1, 100.0)
	}
}

func BenchmarkModelView(b *testing.B) {
	// The per-hole transform built every frame.
	view := Identity().Translated(V3(0, -2, -12)).RotatedX(math.Pi / 6)

	for b.Loop() {
		_ = view.Translated(V3(2, 0.01, -2))
	}
}
