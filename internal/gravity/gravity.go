// Package gravity implements the axial attraction law of the cylinder world
// and the wheel contact branch that swaps gravity for terrain resistance.
package gravity

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vandals/internal/physics"
	"github.com/Faultbox/vandals/pkg/geom"
)

// DefaultG is the gameplay-scaled gravitational constant.
const DefaultG float32 = 6.6743e-6

// DefaultMinRadial bounds the radial distance used in the force law.
const DefaultMinRadial float32 = 0.1

// Params tunes the force law.
type Params struct {
	G         float32 `yaml:"gravity_constant"`
	MinRadial float32 `yaml:"min_radial_distance"`
}

// DefaultParams returns the default tuning.
func DefaultParams() Params {
	return Params{G: DefaultG, MinRadial: DefaultMinRadial}
}

// Source is the attracting terrain.
type Source interface {
	Mass() float32
	Resistance(point mgl32.Vec3) mgl32.Vec3
}

// Force returns the attraction on a body of bodyMass at position. It points
// from the body toward the axis, has no axial component and falls off with
// the square of the radial distance, which is clamped to MinRadial. A body
// exactly on the axis has no direction and feels no force.
func Force(position mgl32.Vec3, bodyMass, terrainMass float32, p Params) mgl32.Vec3 {
	r := geom.RadialDistance(position)
	if r == 0 {
		return mgl32.Vec3{}
	}
	if r < p.MinRadial {
		r = p.MinRadial
	}
	magnitude := p.G * bodyMass * terrainMass / (r * r)
	return geom.RadialUnit(position).Mul(-magnitude)
}

// ContactPoint estimates where a wheel of the given radius touches the
// ground: the center moved down toward the axis by the radius.
func ContactPoint(center mgl32.Vec3, wheelRadius float32) mgl32.Vec3 {
	return center.Sub(geom.RadialUnit(center).Mul(wheelRadius))
}

// Model applies gravity and resistance from one terrain.
type Model struct {
	Params  Params
	Terrain Source
}

// NewModel creates a model for terrain.
func NewModel(p Params, terrain Source) *Model {
	return &Model{Params: p, Terrain: terrain}
}

// ApplyGravity replaces the accumulated forces of b with the attraction
// toward the axis.
func (m *Model) ApplyGravity(b *physics.RigidBody) {
	b.ResetForces()
	b.AddForce(Force(b.Position.Translation, b.Mass(), m.Terrain.Mass(), m.Params))
}

// ApplyWheel runs the per-step contact branch for a wheel. In contact, the
// terrain resistance is applied as an impulse and gravity is skipped for
// this step; otherwise the wheel falls under ordinary gravity. It reports
// whether the wheel was in contact.
func (m *Model) ApplyWheel(b *physics.RigidBody, wheelRadius float32) bool {
	contact := ContactPoint(b.Position.Translation, wheelRadius)
	impulse := m.Terrain.Resistance(contact)
	if impulse.LenSqr() == 0 {
		m.ApplyGravity(b)
		return false
	}
	b.ResetForces()
	b.ApplyImpulse(impulse)
	return true
}
