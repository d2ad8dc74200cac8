// Package physics is a small rigid-body engine: arenas of bodies and
// colliders, mass properties from shapes, and fixed-step integration.
// It has no built-in gravity; callers supply forces. Dynamic colliders are
// kept out of fixed surfaces by a positional contact pass after each step.
package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/vandals/internal/logger"
	"github.com/Faultbox/vandals/pkg/geom"
)

// Engine errors.
var (
	ErrInvalidHandle = errors.New("invalid or stale handle")
	ErrMassless      = errors.New("dynamic body has no mass")
)

// Params holds integration parameters.
type Params struct {
	Timestep       float32 // seconds per Step
	LinearDamping  float32 // per-second velocity decay
	AngularDamping float32
}

// DefaultParams returns the engine defaults (60 Hz, no linear damping).
func DefaultParams() Params {
	return Params{
		Timestep:       1.0 / 60.0,
		LinearDamping:  0,
		AngularDamping: 0.05,
	}
}

// Engine owns all bodies, colliders and joints.
type Engine struct {
	params    Params
	bodies    Set[RigidBody]
	colliders Set[Collider]
	joints    Set[JointDesc]
	contacts  []Contact
	time      float32
	steps     uint64
	log       *zap.Logger
}

// NewEngine creates an empty engine.
func NewEngine(params Params) *Engine {
	if params.Timestep <= 0 {
		params.Timestep = DefaultParams().Timestep
	}
	return &Engine{
		params: params,
		log:    logger.Named("physics"),
	}
}

// Params returns the integration parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Time returns the simulated time in seconds.
func (e *Engine) Time() float32 {
	return e.time
}

// Steps returns the number of completed steps.
func (e *Engine) Steps() uint64 {
	return e.steps
}

// Contacts returns the contacts resolved by the last Step. The slice is
// reused by the next Step.
func (e *Engine) Contacts() []Contact {
	return e.contacts
}

// BodyCount returns the number of live bodies.
func (e *Engine) BodyCount() int {
	return e.bodies.Len()
}

// ColliderCount returns the number of live colliders.
func (e *Engine) ColliderCount() int {
	return e.colliders.Len()
}

// InsertBody adds a body and returns its handle.
func (e *Engine) InsertBody(b RigidBody) BodyHandle {
	b.colliders = nil
	b.setMassProperties(MassProperties{})
	return BodyHandle(e.bodies.Insert(b))
}

// Body returns the body for h.
func (e *Engine) Body(h BodyHandle) (*RigidBody, bool) {
	return e.bodies.Get(Handle(h))
}

// MustBody returns the body for h and panics on a stale handle.
func (e *Engine) MustBody(h BodyHandle) *RigidBody {
	b, ok := e.Body(h)
	if !ok {
		panic(fmt.Sprintf("physics: %v: body %+v", ErrInvalidHandle, h))
	}
	return b
}

// Collider returns the collider for h.
func (e *Engine) Collider(h ColliderHandle) (*Collider, bool) {
	return e.colliders.Get(Handle(h))
}

// InsertCollider attaches c to parent and recomputes the parent's mass.
func (e *Engine) InsertCollider(c Collider, parent BodyHandle) (ColliderHandle, error) {
	if c.Shape == nil {
		return ColliderHandle{}, errors.New("collider has no shape")
	}
	if !e.bodies.Contains(Handle(parent)) {
		return ColliderHandle{}, fmt.Errorf("attaching collider: %w", ErrInvalidHandle)
	}
	c.parent = parent
	h := ColliderHandle(e.colliders.Insert(c))

	body := e.MustBody(parent)
	body.colliders = append(body.colliders, h)
	e.recomputeMass(body)
	if body.IsDynamic() && body.mass <= 0 {
		e.log.Warn("dynamic body has no mass after attaching collider",
			zap.Uint32("body", parent.Index))
	}
	return h, nil
}

// RemoveBody removes a body with its colliders and joints.
func (e *Engine) RemoveBody(h BodyHandle) bool {
	body, ok := e.bodies.Remove(Handle(h))
	if !ok {
		return false
	}
	for _, ch := range body.colliders {
		e.colliders.Remove(Handle(ch))
	}
	var dead []Handle
	e.joints.Each(func(jh Handle, j *JointDesc) {
		if j.Body1 == h || j.Body2 == h {
			dead = append(dead, jh)
		}
	})
	for _, jh := range dead {
		e.joints.Remove(jh)
	}
	return true
}

// InsertJoint registers a joint between two live bodies.
func (e *Engine) InsertJoint(j JointDesc) (JointHandle, error) {
	if !e.bodies.Contains(Handle(j.Body1)) || !e.bodies.Contains(Handle(j.Body2)) {
		return JointHandle{}, fmt.Errorf("inserting joint: %w", ErrInvalidHandle)
	}
	return JointHandle(e.joints.Insert(j)), nil
}

// JointCount returns the number of live joints.
func (e *Engine) JointCount() int {
	return e.joints.Len()
}

// EachBody visits every live body.
func (e *Engine) EachBody(fn func(BodyHandle, *RigidBody)) {
	e.bodies.Each(func(h Handle, b *RigidBody) {
		fn(BodyHandle(h), b)
	})
}

// ColliderAABB returns the world-space bounds of a collider.
func (e *Engine) ColliderAABB(h ColliderHandle) (AABB, bool) {
	c, ok := e.Collider(h)
	if !ok {
		return AABB{}, false
	}
	parent, ok := e.Body(c.parent)
	if !ok {
		return AABB{}, false
	}
	return c.WorldAABB(parent.Position), true
}

func (e *Engine) recomputeMass(body *RigidBody) {
	parts := make([]MassProperties, 0, len(body.colliders))
	poses := make([]geom.Isometry, 0, len(body.colliders))
	for _, ch := range body.colliders {
		c, ok := e.Collider(ch)
		if !ok {
			continue
		}
		parts = append(parts, c.Shape.MassProperties(c.Density))
		poses = append(poses, c.Position)
	}
	body.setMassProperties(combineMass(parts, poses))
}

// Step advances the simulation by one fixed timestep using semi-implicit
// Euler, then resolves contacts against fixed surfaces. Accumulated forces
// are kept; callers reset them explicitly.
func (e *Engine) Step() {
	dt := e.params.Timestep

	e.joints.Each(func(_ Handle, j *JointDesc) {
		b1, ok1 := e.Body(j.Body1)
		b2, ok2 := e.Body(j.Body2)
		if ok1 && ok2 {
			j.apply(b1, b2, dt)
		}
	})

	linDamp := clamp01(1 - e.params.LinearDamping*dt)
	angDamp := clamp01(1 - e.params.AngularDamping*dt)

	e.bodies.Each(func(_ Handle, b *RigidBody) {
		if !b.IsDynamic() || b.invMass == 0 {
			return
		}

		b.LinVel = b.LinVel.Add(b.force.Mul(b.invMass * dt)).Mul(linDamp)
		b.AngVel = b.AngVel.Add(b.applyInvInertia(b.torque).Mul(dt)).Mul(angDamp)

		// Integrate about the center of mass
		com := b.CenterOfMass().Add(b.LinVel.Mul(dt))
		rot := b.Position.Rotation
		if b.AngVel.LenSqr() > 0 {
			spin := mgl32.Quat{W: 0, V: b.AngVel.Mul(0.5 * dt)}
			rot = rot.Add(spin.Mul(rot)).Normalize()
		}
		b.Position.Rotation = rot
		b.Position.Translation = com.Sub(rot.Rotate(b.localCOM))
	})

	e.resolveContacts()

	e.time += dt
	e.steps++
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
