// Package vehicle assembles a car from a body and axles of free wheels,
// each registered as its own dynamic object in the world.
package vehicle

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/vandals/internal/logger"
	"github.com/Faultbox/vandals/internal/physics"
	"github.com/Faultbox/vandals/internal/world"
	"github.com/Faultbox/vandals/pkg/geom"
)

// JointHook may connect a wheel to the body. Returning nil leaves the wheel
// free, which is the default for every wheel.
type JointHook func(body, wheel physics.BodyHandle, anchor mgl32.Vec3) *physics.JointDesc

// Option configures Build.
type Option func(*options)

type options struct {
	jointHook JointHook
}

// WithJointHook installs a hook called once per wheel after registration.
func WithJointHook(h JointHook) Option {
	return func(o *options) {
		o.jointHook = h
	}
}

// Wheel is one simulated wheel.
type Wheel struct {
	world.DynamicObject
	Radius float32
	Anchor mgl32.Vec3 // body-local mount point
	Joint  *physics.JointHandle
	Ground bool // in contact during the last Update
}

// Axle groups the wheels sharing one AxleConfig.
type Axle struct {
	Config AxleConfig
	Wheels []*Wheel
}

// Car is a registered vehicle.
type Car struct {
	Config Config
	Body   world.DynamicObject
	Axles  []Axle
}

// wheelAxis turns the local Z axis of a cylinder collider onto the lateral X axis.
var wheelAxis = mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0})

// Build registers the body and every wheel at transform.
func Build(w *world.World, cfg Config, transform geom.Isometry, opts ...Option) (*Car, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	bodyCollider := world.NewColliderDesc(physics.Cuboid{HalfExtents: cfg.Body.HalfExtents})
	bodyCollider.Density = cfg.Body.Density
	bodyCollider.Friction = cfg.Body.Friction
	body, err := w.CreateDynamicObject([]world.ColliderDesc{bodyCollider}, transform)
	if err != nil {
		return nil, fmt.Errorf("car body: %w", err)
	}

	car := &Car{Config: cfg, Body: body}
	for ai, ac := range cfg.Axles {
		car.Axles = append(car.Axles, Axle{Config: ac})
		axle := &car.Axles[len(car.Axles)-1]
		for _, x := range ac.Xs {
			anchor := mgl32.Vec3{x, ac.Y, ac.Z}
			pose := geom.NewIsometry(transform.TransformPoint(anchor), transform.Rotation)
			obj, err := w.CreateDynamicObject([]world.ColliderDesc{wheelCollider(cfg.Wheel, ac.Radius)}, pose)
			if err != nil {
				car.Remove(w)
				return nil, fmt.Errorf("axle %d wheel at x=%g: %w", ai, x, err)
			}
			wheel := &Wheel{DynamicObject: obj, Radius: ac.Radius, Anchor: anchor}
			axle.Wheels = append(axle.Wheels, wheel)

			if o.jointHook == nil {
				continue
			}
			if desc := o.jointHook(body.Body, obj.Body, anchor); desc != nil {
				jh, err := w.InsertJoint(*desc)
				if err != nil {
					car.Remove(w)
					return nil, fmt.Errorf("joint for axle %d: %w", ai, err)
				}
				wheel.Joint = &jh
			}
		}
	}

	logger.Named("vehicle").Info("car assembled",
		zap.String("id", cfg.ID),
		zap.Int("axles", len(car.Axles)),
		zap.Int("wheels", cfg.WheelCount()),
		zap.Float32("body_mass", w.Mass(body.Body)),
		logger.Isometry("pose", transform))
	return car, nil
}

func wheelCollider(cfg WheelConfig, radius float32) world.ColliderDesc {
	var desc world.ColliderDesc
	if cfg.Width > 0 {
		desc = world.NewColliderDesc(physics.Cylinder{HalfHeight: cfg.Width / 2, Radius: radius})
		desc.Offset = geom.NewIsometry(mgl32.Vec3{}, wheelAxis)
	} else {
		desc = world.NewColliderDesc(physics.Ball{Radius: radius})
	}
	desc.Density = cfg.Density
	desc.Friction = cfg.Friction
	desc.IgnoreContacts = true
	return desc
}

// Wheels returns every wheel in axle order.
func (c *Car) Wheels() []*Wheel {
	var out []*Wheel
	for _, a := range c.Axles {
		out = append(out, a.Wheels...)
	}
	return out
}

// Update applies gravity to the body and the contact branch to each wheel.
// It returns the number of wheels on the ground.
func (c *Car) Update(w *world.World, t world.TerrainHandle) int {
	w.ApplyGravity(c.Body.Body, t)
	grounded := 0
	for _, wheel := range c.Wheels() {
		wheel.Ground = w.ApplyWheel(wheel.Body, wheel.Radius, t)
		if wheel.Ground {
			grounded++
		}
	}
	return grounded
}

// Sync reads back the transforms of every part after a step.
func (c *Car) Sync(w *world.World) {
	w.Sync(&c.Body)
	for _, wheel := range c.Wheels() {
		w.Sync(&wheel.DynamicObject)
	}
}

// Remove unregisters every part that was created.
func (c *Car) Remove(w *world.World) {
	for _, wheel := range c.Wheels() {
		w.Remove(wheel.DynamicObject)
	}
	w.Remove(c.Body)
}
