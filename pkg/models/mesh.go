// Package models provides the static meshes of the whack scene: procedural
// planes and spheres, and glTF models loaded from disk.
package models

import (
	"fmt"
	"math"

	"github.com/taigrr/whack/pkg/math3d"
)

// Scene geometry sizes.
const (
	GroundSize   = 10
	HoleSize     = 0.8
	MoleRadius   = 0.3
	MoleSegments = 12
)

// MaxVertices is the most vertices a mesh can have with 16-bit indices.
const MaxVertices = math.MaxUint16 + 1

// MeshData is indexed triangle geometry in the layout the render engine
// uploads: xyz triplets and three indices per triangle.
type MeshData struct {
	Name      string
	Positions []float32
	Indices   []uint16
}

// VertexCount returns the number of vertices.
func (m MeshData) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (m MeshData) TriangleCount() int {
	return len(m.Indices) / 3
}

// Vertex returns vertex i as a vector.
func (m MeshData) Vertex(i int) math3d.Vec3 {
	return math3d.V3(float64(m.Positions[3*i]), float64(m.Positions[3*i+1]), float64(m.Positions[3*i+2]))
}

// Bounds computes the axis-aligned bounding box.
func (m MeshData) Bounds() (min, max math3d.Vec3) {
	n := m.VertexCount()
	if n == 0 {
		return
	}
	min, max = m.Vertex(0), m.Vertex(0)
	for i := 1; i < n; i++ {
		v := m.Vertex(i)
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max
}

// Validate checks that the positions are whole triplets, the indices whole
// triangles, and every index addresses a vertex.
func (m MeshData) Validate() error {
	if len(m.Positions)%3 != 0 {
		return fmt.Errorf("mesh %q: %d position floats is not a multiple of 3", m.Name, len(m.Positions))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: %d indices is not a multiple of 3", m.Name, len(m.Indices))
	}
	n := m.VertexCount()
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("mesh %q: index %d = %d out of range for %d vertices", m.Name, i, idx, n)
		}
	}
	return nil
}

// Fit returns a copy recentred on its bounding-box centre and scaled so the
// farthest vertex lies at radius. Empty or single-point meshes are only
// recentred.
func (m MeshData) Fit(radius float64) MeshData {
	min, max := m.Bounds()
	center := min.Add(max).Scale(0.5)

	var farthest float64
	for i := range m.VertexCount() {
		farthest = math.Max(farthest, m.Vertex(i).Distance(center))
	}
	scale := 1.0
	if farthest > 0 {
		scale = radius / farthest
	}

	out := MeshData{
		Name:      m.Name,
		Positions: make([]float32, len(m.Positions)),
		Indices:   append([]uint16(nil), m.Indices...),
	}
	for i := range m.VertexCount() {
		v := m.Vertex(i).Sub(center).Scale(scale)
		out.Positions[3*i] = float32(v.X)
		out.Positions[3*i+1] = float32(v.Y)
		out.Positions[3*i+2] = float32(v.Z)
	}
	return out
}

// SolidColors returns an RGBA colour buffer with rgba repeated for every
// vertex.
func SolidColors(vertexCount int, rgba [4]float32) []float32 {
	out := make([]float32, vertexCount*4)
	for i := 0; i < len(out); i += 4 {
		copy(out[i:i+4], rgba[:])
	}
	return out
}

// Plane returns a width x depth quad in the y = 0 plane, centred on the
// origin.
func Plane(width, depth float32) MeshData {
	w, d := width/2, depth/2
	return MeshData{
		Name: "plane",
		Positions: []float32{
			-w, 0, -d,
			w, 0, -d,
			w, 0, d,
			-w, 0, d,
		},
		Indices: []uint16{
			0, 1, 2,
			0, 2, 3,
		},
	}
}

// Sphere returns a latitude/longitude sphere with (segments+1)^2 vertices
// and 6*segments^2 indices. Segments are clamped to [3, 255] so indices fit
// in 16 bits.
func Sphere(radius float32, segments int) MeshData {
	segments = max(3, min(segments, 255))
	ring := segments + 1

	m := MeshData{
		Name:      "sphere",
		Positions: make([]float32, 0, ring*ring*3),
		Indices:   make([]uint16, 0, segments*segments*6),
	}
	r := float64(radius)
	for lat := 0; lat <= segments; lat++ {
		sinTheta, cosTheta := math.Sincos(float64(lat) * math.Pi / float64(segments))
		for lon := 0; lon <= segments; lon++ {
			sinPhi, cosPhi := math.Sincos(float64(lon) * 2 * math.Pi / float64(segments))
			m.Positions = append(m.Positions,
				float32(cosPhi*sinTheta*r),
				float32(cosTheta*r),
				float32(sinPhi*sinTheta*r),
			)
		}
	}

	for lat := range segments {
		for lon := range segments {
			first := uint16(lat*ring + lon)
			second := first + uint16(ring)
			m.Indices = append(m.Indices,
				first, second, first+1,
				second, second+1, first+1,
			)
		}
	}
	return m
}

// Ground is the 10x10 lawn.
func Ground() MeshData {
	m := Plane(GroundSize, GroundSize)
	m.Name = "ground"
	return m
}

// Hole is the dark square under each mole.
func Hole() MeshData {
	m := Plane(HoleSize, HoleSize)
	m.Name = "hole"
	return m
}

// Mole is the default mole body.
func Mole() MeshData {
	m := Sphere(MoleRadius, MoleSegments)
	m.Name = "mole"
	return m
}
