package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taigrr/whack/pkg/math3d"
)

// Names of the attributes and uniforms the engine binds on every draw.
const (
	AttribPosition   = "aPosition"
	AttribColor      = "aColor"
	UniformProjMat   = "uProjectionMatrix"
	UniformModelView = "uModelViewMatrix"
)

// ErrShaderLink is wrapped by every *ShaderError.
var ErrShaderLink = errors.New("shader compile/link error")

// ShaderError reports why a Program failed to link. Log holds the
// diagnostic text, one problem per line.
type ShaderError struct {
	Stage string // "vertex", "fragment" or "program"
	Log   string
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("%s: %s stage: %s", ErrShaderLink, e.Stage, e.Log)
}

func (e *ShaderError) Unwrap() error { return ErrShaderLink }

// Uniforms are the per-draw constants handed to the vertex stage.
type Uniforms struct {
	Projection math3d.Mat4
	ModelView  math3d.Mat4
}

// VertexStage transforms one vertex to clip space and returns the colour
// varying that is interpolated across the triangle.
type VertexStage func(u *Uniforms, position math3d.Vec3, color [4]float32) (clip math3d.Vec4, varying [4]float32)

// FragmentStage turns the interpolated varying into an RGBA colour in [0, 1].
type FragmentStage func(varying [4]float32) [4]float32

// Attribute declares a vertex input and its component count.
type Attribute struct {
	Name string
	Size int
}

// Program is a linked vertex/fragment pair with its declared interface.
type Program struct {
	Vertex     VertexStage
	Fragment   FragmentStage
	Attributes []Attribute
	Uniforms   []string

	linked bool
}

// DefaultProgram returns the engine's only shading model: per-vertex colour,
// no lighting. gl_Position = P * MV * position, colour passed through.
func DefaultProgram() *Program {
	return &Program{
		Vertex: func(u *Uniforms, p math3d.Vec3, c [4]float32) (math3d.Vec4, [4]float32) {
			eye := u.ModelView.TransformVector(math3d.V4FromV3(p, 1))
			return u.Projection.TransformVector(eye), c
		},
		Fragment: func(v [4]float32) [4]float32 { return v },
		Attributes: []Attribute{
			{Name: AttribPosition, Size: 3},
			{Name: AttribColor, Size: 4},
		},
		Uniforms: []string{UniformProjMat, UniformModelView},
	}
}

// Link validates that both stages exist and that the declared interface
// matches what the engine binds. It is idempotent.
func (p *Program) Link() error {
	if p.linked {
		return nil
	}
	if p.Vertex == nil {
		return &ShaderError{Stage: "vertex", Log: "ERROR: no vertex stage attached"}
	}
	if p.Fragment == nil {
		return &ShaderError{Stage: "fragment", Log: "ERROR: no fragment stage attached"}
	}

	var problems []string
	want := map[string]int{AttribPosition: 3, AttribColor: 4}
	seen := make(map[string]bool, len(p.Attributes))
	for _, a := range p.Attributes {
		size, ok := want[a.Name]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("ERROR: attribute %q is not bound by the engine", a.Name))
		case a.Size != size:
			problems = append(problems, fmt.Sprintf("ERROR: attribute %q has size %d, want %d", a.Name, a.Size, size))
		}
		seen[a.Name] = true
	}
	for _, name := range []string{AttribPosition, AttribColor} {
		if !seen[name] {
			problems = append(problems, fmt.Sprintf("ERROR: attribute %q is not declared", name))
		}
	}

	uniforms := make(map[string]bool, len(p.Uniforms))
	for _, u := range p.Uniforms {
		uniforms[u] = true
	}
	for _, name := range []string{UniformProjMat, UniformModelView} {
		if !uniforms[name] {
			problems = append(problems, fmt.Sprintf("ERROR: uniform %q is not declared", name))
		}
	}

	if len(problems) > 0 {
		return &ShaderError{Stage: "program", Log: strings.Join(problems, "\n")}
	}
	p.linked = true
	return nil
}
