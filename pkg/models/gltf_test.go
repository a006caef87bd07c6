package models

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func index(i int) *int { return &i }

// writeTriangleGLB saves a single-triangle GLB with ushort indices.
func writeTriangleGLB(t *testing.T, indices []uint16) string {
	t.Helper()

	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}
	data := make([]byte, 0, len(positions)*4+len(indices)*2)
	for _, f := range positions {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
	}
	for _, i := range indices {
		data = binary.LittleEndian.AppendUint16(data, i)
	}

	doc := &gltf.Document{
		Asset:   gltf.Asset{Version: "2.0"},
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteLength: len(positions) * 4},
			{Buffer: 0, ByteOffset: len(positions) * 4, ByteLength: len(indices) * 2},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: index(0), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: index(1), ComponentType: gltf.ComponentUshort, Count: len(indices), Type: gltf.AccessorScalar},
		},
		Meshes: []*gltf.Mesh{{
			Name: "tri",
			Primitives: []*gltf.Primitive{{
				Indices:    index(1),
				Attributes: map[string]int{gltf.POSITION: 0},
			}},
		}},
	}

	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	assert.Error(t, err)
}

func TestLoadGLBTriangle(t *testing.T) {
	path := writeTriangleGLB(t, []uint16{0, 1, 2})

	mesh, err := LoadGLB(path)
	require.NoError(t, err)
	assert.Equal(t, "tri", mesh.Name)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, mesh.Positions)
	assert.Equal(t, []uint16{0, 1, 2}, mesh.Indices, "winding is kept as authored")
	assert.NoError(t, mesh.Validate())
}

func TestLoadGLBIndexOutOfRange(t *testing.T) {
	path := writeTriangleGLB(t, []uint16{0, 1, 7})

	_, err := LoadGLB(path)
	assert.ErrorContains(t, err, "out of range")
}
