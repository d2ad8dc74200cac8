package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vandals/pkg/geom"
)

// BodyType selects how the engine treats a rigid body.
type BodyType uint8

const (
	BodyDynamic BodyType = iota // integrated every step
	BodyFixed                   // never moves
)

// String returns the body type name.
func (t BodyType) String() string {
	if t == BodyFixed {
		return "fixed"
	}
	return "dynamic"
}

// RigidBody is a simulated body. Forces persist across steps until
// ResetForces is called; impulses change velocity immediately.
type RigidBody struct {
	Type     BodyType
	Position geom.Isometry
	LinVel   mgl32.Vec3
	AngVel   mgl32.Vec3

	// AdditionalMass is added on top of the mass derived from colliders.
	AdditionalMass float32

	mass       float32
	invMass    float32
	localCOM   mgl32.Vec3
	invInertia mgl32.Vec3

	force  mgl32.Vec3
	torque mgl32.Vec3

	colliders []ColliderHandle
}

// NewRigidBody creates a body at the given pose.
func NewRigidBody(t BodyType, position geom.Isometry) RigidBody {
	return RigidBody{Type: t, Position: position}
}

// Mass returns the total mass (zero for fixed bodies without colliders).
func (b *RigidBody) Mass() float32 {
	return b.mass
}

// InvMass returns 1/mass, or zero for fixed and massless bodies.
func (b *RigidBody) InvMass() float32 {
	return b.invMass
}

// Colliders returns the handles of attached colliders.
func (b *RigidBody) Colliders() []ColliderHandle {
	return b.colliders
}

// CenterOfMass returns the world-space center of mass.
func (b *RigidBody) CenterOfMass() mgl32.Vec3 {
	return b.Position.TransformPoint(b.localCOM)
}

// Force returns the accumulated force.
func (b *RigidBody) Force() mgl32.Vec3 {
	return b.force
}

// Torque returns the accumulated torque.
func (b *RigidBody) Torque() mgl32.Vec3 {
	return b.torque
}

// IsDynamic reports whether the body is integrated.
func (b *RigidBody) IsDynamic() bool {
	return b.Type == BodyDynamic
}

// ResetForces clears accumulated force and torque.
func (b *RigidBody) ResetForces() {
	b.force = mgl32.Vec3{}
	b.torque = mgl32.Vec3{}
}

// AddForce accumulates a force through the center of mass.
func (b *RigidBody) AddForce(f mgl32.Vec3) {
	if !b.IsDynamic() {
		return
	}
	b.force = b.force.Add(f)
}

// AddForceAtPoint accumulates a force applied at a world-space point.
func (b *RigidBody) AddForceAtPoint(f, point mgl32.Vec3) {
	if !b.IsDynamic() {
		return
	}
	b.force = b.force.Add(f)
	b.torque = b.torque.Add(point.Sub(b.CenterOfMass()).Cross(f))
}

// ApplyImpulse changes linear velocity by j/mass.
func (b *RigidBody) ApplyImpulse(j mgl32.Vec3) {
	if !b.IsDynamic() {
		return
	}
	b.LinVel = b.LinVel.Add(j.Mul(b.invMass))
}

// ApplyImpulseAtPoint changes linear and angular velocity.
func (b *RigidBody) ApplyImpulseAtPoint(j, point mgl32.Vec3) {
	if !b.IsDynamic() {
		return
	}
	b.LinVel = b.LinVel.Add(j.Mul(b.invMass))
	b.AngVel = b.AngVel.Add(b.applyInvInertia(point.Sub(b.CenterOfMass()).Cross(j)))
}

// applyInvInertia multiplies a world vector by the world inverse inertia tensor.
func (b *RigidBody) applyInvInertia(v mgl32.Vec3) mgl32.Vec3 {
	rot := b.Position.Rotation
	local := rot.Inverse().Rotate(v)
	local = mgl32.Vec3{local[0] * b.invInertia[0], local[1] * b.invInertia[1], local[2] * b.invInertia[2]}
	return rot.Rotate(local)
}

// setMassProperties installs combined collider mass properties.
func (b *RigidBody) setMassProperties(mp MassProperties) {
	mp.Mass += b.AdditionalMass
	b.mass = mp.Mass
	b.localCOM = mp.COM
	b.invMass = 0
	b.invInertia = mgl32.Vec3{}
	if b.Type != BodyDynamic || mp.Mass <= 0 {
		return
	}
	b.invMass = 1 / mp.Mass
	for i := 0; i < 3; i++ {
		if mp.Inertia[i] > 0 {
			b.invInertia[i] = 1 / mp.Inertia[i]
		}
	}
}
