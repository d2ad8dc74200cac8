// Package geom provides rigid transforms and cylindrical coordinates on top of mgl32.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Isometry is a rigid transform: a rotation followed by a translation.
type Isometry struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
}

// Identity returns the identity transform.
func Identity() Isometry {
	return Isometry{Rotation: mgl32.QuatIdent()}
}

// NewIsometry creates an isometry from a translation and a rotation.
func NewIsometry(translation mgl32.Vec3, rotation mgl32.Quat) Isometry {
	return Isometry{Translation: translation, Rotation: rotation.Normalize()}
}

// Translation returns a pure translation.
func Translation(x, y, z float32) Isometry {
	return Isometry{Translation: mgl32.Vec3{x, y, z}, Rotation: mgl32.QuatIdent()}
}

// Mul composes two transforms (iso * other): other is applied first.
func (iso Isometry) Mul(other Isometry) Isometry {
	return Isometry{
		Translation: iso.Translation.Add(iso.Rotation.Rotate(other.Translation)),
		Rotation:    iso.Rotation.Mul(other.Rotation).Normalize(),
	}
}

// TransformPoint maps a local point into the parent frame.
func (iso Isometry) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return iso.Rotation.Rotate(p).Add(iso.Translation)
}

// TransformVector rotates a direction (translation is ignored).
func (iso Isometry) TransformVector(v mgl32.Vec3) mgl32.Vec3 {
	return iso.Rotation.Rotate(v)
}

// Inverse returns the inverse transform.
func (iso Isometry) Inverse() Isometry {
	inv := iso.Rotation.Inverse()
	return Isometry{
		Translation: inv.Rotate(iso.Translation).Mul(-1),
		Rotation:    inv,
	}
}

// Mat4 returns the column-major 4x4 matrix (OpenGL compatible).
func (iso Isometry) Mat4() mgl32.Mat4 {
	t := iso.Translation
	return mgl32.Translate3D(t[0], t[1], t[2]).Mul4(iso.Rotation.Mat4())
}

// ApproxEqual reports whether both parts match within the absolute
// tolerance eps. q and -q describe the same rotation and compare equal.
func (iso Isometry) ApproxEqual(other Isometry, eps float32) bool {
	for i := 0; i < 3; i++ {
		if mgl32.Abs(iso.Translation[i]-other.Translation[i]) > eps {
			return false
		}
	}
	dot := iso.Rotation.Dot(other.Rotation)
	return float32(math.Abs(float64(dot))) >= 1-eps
}

// FromEuler builds a rotation from roll (X), pitch (Y) and yaw (Z), in radians.
// Roll is applied first, yaw last.
func FromEuler(roll, pitch, yaw float32) mgl32.Quat {
	qx := mgl32.QuatRotate(roll, mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(pitch, mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(yaw, mgl32.Vec3{0, 0, 1})
	return qz.Mul(qy).Mul(qx).Normalize()
}
