package render

import (
	"math"

	"github.com/taigrr/whack/pkg/math3d"
)

// Camera holds the placement and projection the engine draws with.
type Camera struct {
	// Position is applied before the rotation, so it is expressed in the
	// pre-rotation frame.
	Position math3d.Vec3

	// Rotation holds Euler angles in radians, applied X then Y then Z.
	Rotation math3d.Vec3

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	viewProjDirty  bool
}

// NewCamera creates a camera at the origin with a 45 degree projection.
func NewCamera() *Camera {
	c := &Camera{viewDirty: true}
	if err := c.SetPerspective(math.Pi/4, 1, 0.1, 100); err != nil {
		panic(err)
	}
	return c
}

// SetPlacement sets position and rotation together.
func (c *Camera) SetPlacement(position, rotation math3d.Vec3) {
	c.Position = position
	c.Rotation = rotation
	c.viewDirty = true
	c.viewProjDirty = true
}

// SetPerspective recomputes the projection. On invalid input the previous
// projection is kept and the error is returned.
func (c *Camera) SetPerspective(fovy, aspect, near, far float64) error {
	proj, err := math3d.Perspective(fovy, aspect, near, far)
	if err != nil {
		return err
	}
	c.FOV, c.AspectRatio, c.Near, c.Far = fovy, aspect, near, far
	c.projMatrix = proj
	c.viewProjDirty = true
	return nil
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.computeViewMatrix()
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.viewProjDirty || c.viewDirty {
		c.viewProjMatrix = c.projMatrix.Mul(c.ViewMatrix())
		c.viewProjDirty = false
	}
	return c.viewProjMatrix
}

// computeViewMatrix builds I * T(position) * Rx * Ry * Rz. The translation
// comes first in the composition; scene placement depends on this order.
func (c *Camera) computeViewMatrix() {
	c.viewMatrix = math3d.Identity().
		Translated(c.Position).
		RotatedX(c.Rotation.X).
		RotatedY(c.Rotation.Y).
		RotatedZ(c.Rotation.Z)
}

// WorldToNDC projects a world point to normalized device coordinates.
// visible is false when the point is behind the camera or outside the
// frustum.
func (c *Camera) WorldToNDC(worldPos math3d.Vec3) (ndc math3d.Vec3, visible bool) {
	clipPos := c.ViewProjectionMatrix().TransformVector(math3d.V4FromV3(worldPos, 1))
	if clipPos.W <= 0 {
		return math3d.Vec3{}, false
	}
	ndc = clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return ndc, false
	}
	return ndc, true
}

// WorldToScreen transforms a world point to pixel coordinates on a surface
// of the given size. Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	ndc, ok := c.WorldToNDC(worldPos)
	if !ok {
		return 0, 0, 0, false
	}
	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	return x, y, ndc.Z, true
}
