package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vandals/pkg/geom"
)

// SurfaceProjector is implemented by shapes that fixed bodies use as
// contact surfaces. ProjectSurface returns the surface point nearest to p
// and the outward normal there, in shape-local space. ok is false when p
// has no surface beneath it.
type SurfaceProjector interface {
	ProjectSurface(p mgl32.Vec3) (point, normal mgl32.Vec3, ok bool)
}

// Contact is one resolved penetration between a dynamic and a fixed collider.
type Contact struct {
	Dynamic ColliderHandle
	Fixed   ColliderHandle
	Point   mgl32.Vec3 // world-space surface point
	Normal  mgl32.Vec3 // points from the fixed surface toward the dynamic body
	Depth   float32
}

type colliderRef struct {
	handle   ColliderHandle
	collider *Collider
	parent   geom.Isometry
}

// resolveContacts pushes dynamic colliders out of fixed surfaces and
// removes the approaching velocity. Dynamic pairs are not tested.
func (e *Engine) resolveContacts() {
	e.contacts = e.contacts[:0]

	var fixed []colliderRef
	e.colliders.Each(func(h Handle, c *Collider) {
		if _, ok := c.Shape.(SurfaceProjector); !ok {
			return
		}
		parent, ok := e.Body(c.parent)
		if !ok || parent.IsDynamic() {
			return
		}
		fixed = append(fixed, colliderRef{ColliderHandle(h), c, parent.Position})
	})
	if len(fixed) == 0 {
		return
	}

	e.bodies.Each(func(_ Handle, b *RigidBody) {
		if !b.IsDynamic() || b.invMass == 0 {
			return
		}
		for _, ch := range b.colliders {
			c, ok := e.Collider(ch)
			if !ok || c.IgnoreContacts {
				continue
			}
			for _, f := range fixed {
				if contact, ok := penetration(b, ch, c, f); ok {
					resolve(b, c, f.collider, contact)
					e.contacts = append(e.contacts, contact)
				}
			}
		}
	})
}

// penetration tests one dynamic collider against one fixed surface. The
// deepest point of a convex shape comes from its support map; other shapes
// fall back to their bounding sphere.
func penetration(b *RigidBody, ch ColliderHandle, c *Collider, f colliderRef) (Contact, bool) {
	if !c.WorldAABB(b.Position).Intersects(f.collider.WorldAABB(f.parent)) {
		return Contact{}, false
	}

	pose := b.Position.Mul(c.Position)
	fixedPose := f.parent.Mul(f.collider.Position)
	inv := fixedPose.Inverse()
	center := pose.TransformPoint(c.Shape.BoundingSphere().Center)
	point, normal, ok := f.collider.Shape.(SurfaceProjector).ProjectSurface(inv.TransformPoint(center))
	if !ok || normal.LenSqr() == 0 {
		return Contact{}, false
	}
	point = fixedPose.TransformPoint(point)
	normal = fixedPose.TransformVector(normal).Normalize()

	var deepest mgl32.Vec3
	if sm, ok := c.Shape.(SupportMap); ok {
		local := pose.Rotation.Inverse().Rotate(normal.Mul(-1))
		deepest = pose.TransformPoint(sm.SupportPoint(local))
	} else {
		deepest = center.Sub(normal.Mul(c.Shape.BoundingSphere().Radius))
	}

	depth := point.Sub(deepest).Dot(normal)
	if depth <= 0 {
		return Contact{}, false
	}
	return Contact{Dynamic: ch, Fixed: f.handle, Point: point, Normal: normal, Depth: depth}, true
}

// resolve moves the body out along the normal and applies a restitution
// and Coulomb friction velocity change at the center of mass.
func resolve(b *RigidBody, dyn, fix *Collider, contact Contact) {
	n := contact.Normal
	b.Position.Translation = b.Position.Translation.Add(n.Mul(contact.Depth))

	vn := b.LinVel.Dot(n)
	if vn >= 0 {
		return
	}
	restitution := float32(math.Max(float64(dyn.Restitution), float64(fix.Restitution)))
	jn := -(1 + restitution) * vn
	b.LinVel = b.LinVel.Add(n.Mul(jn))

	tangent := b.LinVel.Sub(n.Mul(b.LinVel.Dot(n)))
	speed := tangent.Len()
	if speed == 0 {
		return
	}
	friction := (dyn.Friction + fix.Friction) / 2
	drop := friction * jn
	if drop > speed {
		drop = speed
	}
	b.LinVel = b.LinVel.Sub(tangent.Mul(drop / speed))
}
