package render

import (
	"fmt"

	"github.com/taigrr/whack/pkg/math3d"
)

// BufferHandle names a buffer owned by an Engine. The zero handle is never
// valid.
type BufferHandle uint32

type bufferKind uint8

const (
	arrayBuffer bufferKind = iota
	elementBuffer
)

// buffer is the engine-side storage behind a handle. Only one of floats or
// indices is used, depending on kind.
type buffer struct {
	kind    bufferKind
	floats  []float32
	indices []uint16

	bounds      AABB // of floats read as xyz triplets, valid unless boundsDirty
	boundsDirty bool
}

// RenderObject is the engine's unit of drawable geometry: three buffers and
// the number of indices to draw. It is a value; copies share the buffers.
type RenderObject struct {
	Position BufferHandle
	Color    BufferHandle
	Index    BufferHandle

	VertexCount int // len(positions)/3 at creation
	Count       int // index count, fixed at creation
}

func (e *Engine) createBuffer(data []float32) BufferHandle {
	b := buffer{kind: arrayBuffer, floats: make([]float32, len(data)), boundsDirty: true}
	copy(b.floats, data)
	e.buffers = append(e.buffers, b)
	return BufferHandle(len(e.buffers))
}

func (e *Engine) createIndexBuffer(data []uint16) BufferHandle {
	b := buffer{kind: elementBuffer, indices: make([]uint16, len(data))}
	copy(b.indices, data)
	e.buffers = append(e.buffers, b)
	return BufferHandle(len(e.buffers))
}

// buffer returns the storage for h. Stale or foreign handles are a caller
// error and panic like an out-of-range slice index.
func (e *Engine) buffer(h BufferHandle) *buffer {
	return &e.buffers[h-1]
}

// CreateRenderObject uploads positions (xyz triplets), indices and colours
// (rgba quadruplets) into three static buffers. The caller guarantees that
// the colour count matches the vertex count and that every index is below
// it; see ValidateRenderObject.
func (e *Engine) CreateRenderObject(positions []float32, indices []uint16, colors []float32) RenderObject {
	return RenderObject{
		Position:    e.createBuffer(positions),
		Color:       e.createBuffer(colors),
		Index:       e.createIndexBuffer(indices),
		VertexCount: len(positions) / 3,
		Count:       len(indices),
	}
}

// Bounds returns the local-space bounds of obj's current positions. They
// follow every UpdateBuffer of the position buffer.
func (e *Engine) Bounds(obj RenderObject) AABB {
	b := e.buffer(obj.Position)
	if b.boundsDirty {
		b.bounds = BoundsOf(b.floats)
		b.boundsDirty = false
	}
	return b.bounds
}

// UpdateBuffer replaces the full contents of an array buffer. The new data
// may differ in length from the old.
func (e *Engine) UpdateBuffer(h BufferHandle, data []float32) {
	b := e.buffer(h)
	b.floats = append(b.floats[:0], data...)
	b.boundsDirty = true
}

// ValidateRenderObject checks the creation contract of CreateRenderObject.
// The engine never calls it on the draw path.
func ValidateRenderObject(positions []float32, indices []uint16, colors []float32) error {
	if len(positions)%3 != 0 {
		return fmt.Errorf("positions: length %d is not a multiple of 3", len(positions))
	}
	if len(colors)%4 != 0 {
		return fmt.Errorf("colors: length %d is not a multiple of 4", len(colors))
	}
	vertices := len(positions) / 3
	if n := len(colors) / 4; n != vertices {
		return fmt.Errorf("colors: %d entries for %d vertices", n, vertices)
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("indices: length %d is not a multiple of 3", len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= vertices {
			return fmt.Errorf("indices[%d] = %d out of range for %d vertices", i, idx, vertices)
		}
	}
	return nil
}

// BoundsOf returns the axis-aligned bounds of xyz triplets. An empty slice
// yields the zero box.
func BoundsOf(positions []float32) AABB {
	if len(positions) < 3 {
		return AABB{}
	}
	first := math3d.V3(float64(positions[0]), float64(positions[1]), float64(positions[2]))
	box := AABB{Min: first, Max: first}
	for i := 3; i+2 < len(positions); i += 3 {
		p := math3d.V3(float64(positions[i]), float64(positions[i+1]), float64(positions[i+2]))
		box.Min = box.Min.Min(p)
		box.Max = box.Max.Max(p)
	}
	return box
}
