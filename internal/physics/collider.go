package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vandals/pkg/geom"
)

// Collider attaches a shape to a rigid body.
type Collider struct {
	Shape       Shape
	Position    geom.Isometry // relative to the parent body
	Density     float32
	Friction    float32
	Restitution float32

	// IgnoreContacts excludes the collider from the fixed-surface contact
	// pass, for colliders whose ground contact is modeled with forces.
	IgnoreContacts bool

	parent BodyHandle
}

// NewCollider creates a collider with unit density at the body origin.
func NewCollider(shape Shape) Collider {
	return Collider{
		Shape:    shape,
		Position: geom.Identity(),
		Density:  1,
		Friction: 0.5,
	}
}

// Parent returns the owning body.
func (c *Collider) Parent() BodyHandle {
	return c.parent
}

// WorldAABB returns the collider bounds under the parent pose.
func (c *Collider) WorldAABB(parent geom.Isometry) AABB {
	iso := parent.Mul(c.Position)
	local := c.Shape.LocalAABB()
	out := EmptyAABB()
	for i := 0; i < 8; i++ {
		corner := local.Min
		if i&1 != 0 {
			corner[0] = local.Max[0]
		}
		if i&2 != 0 {
			corner[1] = local.Max[1]
		}
		if i&4 != 0 {
			corner[2] = local.Max[2]
		}
		out.Extend(iso.TransformPoint(corner))
	}
	return out
}

// combineMass merges per-collider mass properties into body-local properties.
// Each part's principal inertia is rotated into the body frame (only the
// diagonal is kept); offsets use the parallel axis theorem.
func combineMass(parts []MassProperties, poses []geom.Isometry) MassProperties {
	var total MassProperties
	for i, p := range parts {
		total.Mass += p.Mass
		total.COM = total.COM.Add(poses[i].TransformPoint(p.COM).Mul(p.Mass))
	}
	if total.Mass <= 0 {
		return MassProperties{}
	}
	total.COM = total.COM.Mul(1 / total.Mass)
	for i, p := range parts {
		d := poses[i].TransformPoint(p.COM).Sub(total.COM)
		inertia := rotateInertia(poses[i].Rotation, p.Inertia)
		total.Inertia = total.Inertia.Add(inertia).Add(mgl32.Vec3{
			p.Mass * (d[1]*d[1] + d[2]*d[2]),
			p.Mass * (d[0]*d[0] + d[2]*d[2]),
			p.Mass * (d[0]*d[0] + d[1]*d[1]),
		})
	}
	return total
}

// rotateInertia returns the diagonal of R·diag(inertia)·Rᵀ.
func rotateInertia(q mgl32.Quat, inertia mgl32.Vec3) mgl32.Vec3 {
	m := q.Mat4().Mat3()
	var out mgl32.Vec3
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			r := m.At(i, k)
			out[i] += r * r * inertia[k]
		}
	}
	return out
}
