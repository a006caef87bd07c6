package models

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
)

var (
	// ErrNoTriangles is returned for a model with no triangle primitive
	// carrying positions.
	ErrNoTriangles = errors.New("model has no triangle geometry")

	// ErrTooManyVertices is returned when a model does not fit 16-bit
	// indices.
	ErrTooManyVertices = errors.New("model exceeds 65536 vertices")
)

// LoadGLB loads every triangle primitive of a glTF or GLB file into one
// MeshData. Winding is kept as authored since the rasterizer fills both
// orientations. Normals, UVs and materials are ignored; the engine colours
// per vertex.
func LoadGLB(path string) (MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return MeshData{}, fmt.Errorf("open gltf: %w", err)
	}

	mesh := MeshData{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}
	for _, m := range doc.Meshes {
		if err := processMesh(doc, m, &mesh); err != nil {
			return MeshData{}, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	if mesh.TriangleCount() == 0 {
		return MeshData{}, fmt.Errorf("%s: %w", path, ErrNoTriangles)
	}
	return mesh, nil
}

// processMesh appends the triangle primitives of m to mesh.
func processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *MeshData) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		base := mesh.VertexCount()
		if base+len(positions) > MaxVertices {
			return ErrTooManyVertices
		}
		for _, p := range positions {
			mesh.Positions = append(mesh.Positions, p[0], p[1], p[2])
		}

		if prim.Indices != nil {
			indices, err := readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
			for i := 0; i+2 < len(indices); i += 3 {
				for _, idx := range indices[i : i+3] {
					if idx >= len(positions) {
						return fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
					}
					mesh.Indices = append(mesh.Indices, uint16(base+idx))
				}
			}
		} else {
			// Unindexed: consecutive triangles.
			for i := 0; i+2 < len(positions); i += 3 {
				mesh.Indices = append(mesh.Indices, uint16(base+i), uint16(base+i+1), uint16(base+i+2))
			}
		}
	}
	return nil
}

// readVec3Accessor reads float VEC3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([][3]float32, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float components, got %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}
	result := make([][3]float32, accessor.Count)
	for i := range accessor.Count {
		offset := i * stride
		for j := range 3 {
			result[i][j] = readFloat32(data[offset+j*4:])
		}
	}
	return result, nil
}

// readIndices reads scalar index data of any unsigned width.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index component type: %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}
	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		b := data[i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}

// accessorBytes returns the buffer bytes starting at the accessor's first
// element and the element stride, checking that every element is in range.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, errors.New("accessor has no buffer view")
	}
	if *accessor.BufferView < 0 || *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("buffer view %d out of range", *accessor.BufferView)
	}
	view := doc.BufferViews[*accessor.BufferView]
	if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("buffer %d out of range", view.Buffer)
	}
	buf := doc.Buffers[view.Buffer].Data
	if buf == nil {
		return nil, 0, errors.New("buffer has no data")
	}

	stride := view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := view.ByteOffset + accessor.ByteOffset
	if accessor.Count == 0 {
		return nil, stride, nil
	}
	end := start + (accessor.Count-1)*stride + elemSize
	if start < 0 || end > len(buf) {
		return nil, 0, fmt.Errorf("accessor spans bytes [%d, %d) of a %d byte buffer", start, end, len(buf))
	}
	return buf[start:end], stride, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
