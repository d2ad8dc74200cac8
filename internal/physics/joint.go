package physics

import "github.com/go-gl/mathgl/mgl32"

// JointDesc connects two bodies with a damped spring between local anchors.
type JointDesc struct {
	Body1, Body2     BodyHandle
	Anchor1, Anchor2 mgl32.Vec3 // in each body's local frame
	Stiffness        float32
	Damping          float32
}

// apply converts the spring force over dt into impulses on both bodies, so
// joint forces never linger in the persistent force accumulators.
func (j *JointDesc) apply(b1, b2 *RigidBody, dt float32) {
	p1 := b1.Position.TransformPoint(j.Anchor1)
	p2 := b2.Position.TransformPoint(j.Anchor2)
	delta := p2.Sub(p1)
	relVel := b2.LinVel.Sub(b1.LinVel)
	impulse := delta.Mul(j.Stiffness).Add(relVel.Mul(j.Damping)).Mul(dt)
	b1.ApplyImpulseAtPoint(impulse, p1)
	b2.ApplyImpulseAtPoint(impulse.Mul(-1), p2)
}
