// Package camera provides the chase camera that follows the car around the
// cylinder.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vandals/pkg/geom"
)

// ChaseCamera follows a target from behind. Its up vector is the radial
// direction at the target, so the horizon stays level all the way around
// the cylinder.
type ChaseCamera struct {
	// Orientation relative to the target's heading
	Yaw   float32 // radians around the local up axis
	Pitch float32 // radians above the tangent plane

	// Distance from target
	Distance    float32
	MinDistance float32
	MaxDistance float32

	// Sensitivity
	YawSensitivity  float32
	ZoomSensitivity float32

	// Projection
	FovY      float32
	Near, Far float32

	// Cached pose from the last Follow
	Eye, Target, Up mgl32.Vec3
}

// NewChaseCamera creates a camera with defaults sized for a car.
func NewChaseCamera() *ChaseCamera {
	return &ChaseCamera{
		Pitch:           0.3 * math.Pi,
		Distance:        8.0,
		MinDistance:     2.0,
		MaxDistance:     50.0,
		YawSensitivity:  0.005,
		ZoomSensitivity: 0.1,
		FovY:            1.0,
		Near:            0.1,
		Far:             100.0,
		Up:              mgl32.Vec3{0, 1, 0},
		Target:          mgl32.Vec3{0, 0, 1},
	}
}

// Follow places the camera behind and above target. The target's local +Z
// axis is its heading.
func (c *ChaseCamera) Follow(target geom.Isometry) {
	up := geom.RadialUnit(target.Translation)
	if up.LenSqr() == 0 {
		up = target.TransformVector(mgl32.Vec3{0, 1, 0})
	}

	// Heading projected onto the tangent plane
	forward := target.TransformVector(mgl32.Vec3{0, 0, 1})
	forward = forward.Sub(up.Mul(forward.Dot(up)))
	if forward.Len() < 1e-6 {
		forward = up.Cross(mgl32.Vec3{1, 0, 0})
		if forward.Len() < 1e-6 {
			forward = up.Cross(mgl32.Vec3{0, 1, 0})
		}
	}
	forward = mgl32.QuatRotate(c.Yaw, up).Rotate(forward.Normalize())

	sin, cos := math.Sincos(float64(c.Pitch))
	horiz := c.Distance * float32(cos)
	vert := c.Distance * float32(sin)

	c.Target = target.Translation
	c.Up = up
	c.Eye = c.Target.Sub(forward.Mul(horiz)).Add(up.Mul(vert))
}

// ViewMatrix returns the view matrix for the last Follow.
func (c *ChaseCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

// ProjectionMatrix returns a perspective projection for the given aspect ratio.
func (c *ChaseCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// HandleYaw rotates the camera around the target.
func (c *ChaseCamera) HandleYaw(deltaX float32) {
	c.Yaw -= deltaX * c.YawSensitivity
}

// HandleZoom updates distance from target.
func (c *ChaseCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}
