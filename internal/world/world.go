// Package world orchestrates the physics engine for a level: it registers
// the terrain and dynamic objects and routes gravity, resistance and
// impulses to them by handle.
package world

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/vandals/internal/gravity"
	"github.com/Faultbox/vandals/internal/logger"
	"github.com/Faultbox/vandals/internal/physics"
	"github.com/Faultbox/vandals/internal/terrain"
	"github.com/Faultbox/vandals/pkg/geom"
)

// ErrNoColliders is returned when a dynamic object has nothing to collide with.
var ErrNoColliders = errors.New("dynamic object needs at least one collider")

// Params configures the world.
type Params struct {
	Physics physics.Params
	Gravity gravity.Params
}

// DefaultParams returns the default world configuration.
func DefaultParams() Params {
	return Params{
		Physics: physics.DefaultParams(),
		Gravity: gravity.DefaultParams(),
	}
}

// TerrainHandle identifies a registered terrain.
type TerrainHandle physics.Handle

// ColliderDesc describes one collider of a dynamic object.
type ColliderDesc struct {
	Shape    physics.Shape
	Offset   geom.Isometry // relative to the body
	Density  float32
	Friction float32

	// IgnoreContacts keeps the collider out of the engine's terrain and
	// scenery contacts. Wheels set it; ApplyWheel drives their contact.
	IgnoreContacts bool
}

// NewColliderDesc returns a collider at the body origin with unit density.
func NewColliderDesc(shape physics.Shape) ColliderDesc {
	return ColliderDesc{Shape: shape, Offset: geom.Identity(), Density: 1, Friction: 0.5}
}

// DynamicObject is a registered moving body. It holds handles only; the
// engine owns the state.
type DynamicObject struct {
	Body      physics.BodyHandle
	Colliders []physics.ColliderHandle
	Transform geom.Isometry // pose at the last Sync
}

type terrainEntry struct {
	body  *terrain.Body
	model *gravity.Model
}

// World is the physics world of one level. It is not safe for concurrent use.
type World struct {
	params   Params
	engine   *physics.Engine
	terrains physics.Set[terrainEntry]
	stepped  bool
	log      *zap.Logger
}

// New creates an empty world.
func New(p Params) *World {
	return &World{
		params: p,
		engine: physics.NewEngine(p.Physics),
		log:    logger.Named("world"),
	}
}

// Engine exposes the underlying engine.
func (w *World) Engine() *physics.Engine {
	return w.engine
}

// Params returns the world configuration.
func (w *World) Params() Params {
	return w.params
}

// CreateTerrain registers body as a fixed rigid body with the collider of
// the chosen strategy.
func (w *World) CreateTerrain(body *terrain.Body, strategy terrain.Strategy) (TerrainHandle, error) {
	shape, err := body.Collider(strategy)
	if err != nil {
		return TerrainHandle{}, fmt.Errorf("terrain collider: %w", err)
	}

	bh := w.engine.InsertBody(physics.NewRigidBody(physics.BodyFixed, geom.Identity()))
	c := physics.NewCollider(shape)
	c.Density = body.Params.Density
	if _, err := w.engine.InsertCollider(c, bh); err != nil {
		w.engine.RemoveBody(bh)
		return TerrainHandle{}, err
	}
	body.Bind(bh)

	h := w.terrains.Insert(terrainEntry{
		body:  body,
		model: gravity.NewModel(w.params.Gravity, body),
	})
	w.log.Info("terrain registered",
		zap.Stringer("collider", strategy),
		zap.Float32("mass", body.Mass()),
		zap.Float32("length", body.Params.Length))
	return TerrainHandle(h), nil
}

// Terrain returns the terrain body for h.
func (w *World) Terrain(h TerrainHandle) (*terrain.Body, bool) {
	e, ok := w.terrains.Get(physics.Handle(h))
	if !ok {
		return nil, false
	}
	return e.body, true
}

// CreateDynamicObject registers a dynamic body with one or more colliders.
// Its mass comes from the collider shapes and densities.
func (w *World) CreateDynamicObject(colliders []ColliderDesc, transform geom.Isometry) (DynamicObject, error) {
	obj, err := w.register(physics.BodyDynamic, colliders, transform)
	if err != nil {
		return DynamicObject{}, err
	}
	if w.engine.MustBody(obj.Body).Mass() <= 0 {
		w.engine.RemoveBody(obj.Body)
		return DynamicObject{}, physics.ErrMassless
	}
	return obj, nil
}

// CreateStaticObject registers a fixed body, such as level scenery.
func (w *World) CreateStaticObject(colliders []ColliderDesc, transform geom.Isometry) (DynamicObject, error) {
	return w.register(physics.BodyFixed, colliders, transform)
}

func (w *World) register(t physics.BodyType, colliders []ColliderDesc, transform geom.Isometry) (DynamicObject, error) {
	if len(colliders) == 0 {
		return DynamicObject{}, ErrNoColliders
	}

	bh := w.engine.InsertBody(physics.NewRigidBody(t, transform))
	obj := DynamicObject{Body: bh, Transform: transform}
	for i, desc := range colliders {
		c := physics.NewCollider(desc.Shape)
		c.Position = desc.Offset
		c.Density = desc.Density
		c.Friction = desc.Friction
		c.IgnoreContacts = desc.IgnoreContacts
		ch, err := w.engine.InsertCollider(c, bh)
		if err != nil {
			w.engine.RemoveBody(bh)
			return DynamicObject{}, fmt.Errorf("collider %d: %w", i, err)
		}
		obj.Colliders = append(obj.Colliders, ch)
	}
	return obj, nil
}

// Remove unregisters a dynamic object and its colliders.
func (w *World) Remove(obj DynamicObject) bool {
	return w.engine.RemoveBody(obj.Body)
}

// InsertJoint connects two registered bodies.
func (w *World) InsertJoint(j physics.JointDesc) (physics.JointHandle, error) {
	return w.engine.InsertJoint(j)
}

// BeginFrame opens a new force phase. Forces applied after Step and before
// the next BeginFrame are reported as ordering mistakes.
func (w *World) BeginFrame() {
	w.stepped = false
}

func (w *World) checkPhase(op string, h physics.BodyHandle) {
	if w.stepped {
		w.log.Warn("force applied after step; call BeginFrame first",
			zap.String("op", op), zap.Uint32("body", h.Index))
	}
}

func (w *World) model(t TerrainHandle) *gravity.Model {
	e, ok := w.terrains.Get(physics.Handle(t))
	if !ok {
		panic(fmt.Sprintf("world: %v: terrain %+v", physics.ErrInvalidHandle, t))
	}
	return e.model
}

// ApplyGravity replaces the forces on h with the attraction of terrain t.
func (w *World) ApplyGravity(h physics.BodyHandle, t TerrainHandle) {
	w.checkPhase("gravity", h)
	w.model(t).ApplyGravity(w.engine.MustBody(h))
}

// ApplyImpulse changes the velocity of h immediately.
func (w *World) ApplyImpulse(h physics.BodyHandle, impulse mgl32.Vec3) {
	w.checkPhase("impulse", h)
	w.engine.MustBody(h).ApplyImpulse(impulse)
}

// ApplyWheel runs the contact branch for a wheel of the given radius and
// reports whether it touched the terrain.
func (w *World) ApplyWheel(h physics.BodyHandle, wheelRadius float32, t TerrainHandle) bool {
	w.checkPhase("wheel", h)
	return w.model(t).ApplyWheel(w.engine.MustBody(h), wheelRadius)
}

// Step advances the simulation by one fixed timestep.
func (w *World) Step() {
	w.engine.Step()
	w.stepped = true
}

// Transform returns the current pose of h.
func (w *World) Transform(h physics.BodyHandle) geom.Isometry {
	return w.engine.MustBody(h).Position
}

// Sync copies the current pose into obj.
func (w *World) Sync(obj *DynamicObject) {
	obj.Transform = w.Transform(obj.Body)
}

// Mass returns the mass of h.
func (w *World) Mass(h physics.BodyHandle) float32 {
	return w.engine.MustBody(h).Mass()
}

// Velocity returns the linear velocity of h.
func (w *World) Velocity(h physics.BodyHandle) mgl32.Vec3 {
	return w.engine.MustBody(h).LinVel
}

// Time returns the simulated time in seconds.
func (w *World) Time() float32 {
	return w.engine.Time()
}
