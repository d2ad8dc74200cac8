package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Radial holds cylindrical coordinates around the Z axis.
type Radial struct {
	Alpha  float32 // angle in radians, (-π, π]
	Radius float32 // distance from the axis
	Depth  float32 // axial coordinate
}

// ToRadial converts a point to cylindrical coordinates.
func ToRadial(p mgl32.Vec3) Radial {
	return Radial{
		Alpha:  float32(math.Atan2(float64(p[1]), float64(p[0]))),
		Radius: RadialDistance(p),
		Depth:  p[2],
	}
}

// Turn returns the angle as a fraction of a full turn in [0, 1).
func (r Radial) Turn() float32 {
	t := r.Alpha / (2 * math.Pi)
	if t < 0 {
		t += 1
	}
	if t >= 1 {
		t -= 1
	}
	return t
}

// RadialDistance returns the distance from p to the Z axis.
func RadialDistance(p mgl32.Vec3) float32 {
	return float32(math.Hypot(float64(p[0]), float64(p[1])))
}

// RadialPlane projects p onto the plane perpendicular to the axis.
func RadialPlane(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{p[0], p[1], 0}
}

// RadialUnit returns the unit vector pointing away from the axis through p.
// A point on the axis has no radial direction and yields the zero vector.
func RadialUnit(p mgl32.Vec3) mgl32.Vec3 {
	r := RadialDistance(p)
	if r == 0 {
		return mgl32.Vec3{}
	}
	return mgl32.Vec3{p[0] / r, p[1] / r, 0}
}

// FromRadial converts cylindrical coordinates back to a point.
func FromRadial(alpha, radius, depth float32) mgl32.Vec3 {
	s, c := math.Sincos(float64(alpha))
	return mgl32.Vec3{radius * float32(c), radius * float32(s), depth}
}
