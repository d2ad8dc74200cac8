package content

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vandals/internal/physics"
	"github.com/Faultbox/vandals/internal/terrain"
	"github.com/Faultbox/vandals/internal/world"
	"github.com/Faultbox/vandals/pkg/geom"
	"github.com/Faultbox/vandals/pkg/heightmap"
)

// TransformDesc places an object. Rotation is (roll, pitch, yaw) in radians.
type TransformDesc struct {
	Position mgl32.Vec3 `yaml:"position"`
	Rotation mgl32.Vec3 `yaml:"rotation"`
	Scale    mgl32.Vec3 `yaml:"scale"` // zero means unit scale
}

// Isometry converts the position and rotation. Scale is not part of a pose.
func (t TransformDesc) Isometry() geom.Isometry {
	return geom.NewIsometry(t.Position, geom.FromEuler(t.Rotation[0], t.Rotation[1], t.Rotation[2]))
}

// Scaling returns the scale, substituting unit scale for an unset one.
func (t TransformDesc) Scaling() mgl32.Vec3 {
	if t.Scale == (mgl32.Vec3{}) {
		return mgl32.Vec3{1, 1, 1}
	}
	return t.Scale
}

// Shape kinds.
const (
	ShapeBox      = "box"
	ShapeSphere   = "sphere"
	ShapeCylinder = "cylinder"
)

// ShapeDesc describes a collider shape.
type ShapeDesc struct {
	Type        string     `yaml:"type"`
	HalfExtents mgl32.Vec3 `yaml:"half_extents"` // box
	Radius      float32    `yaml:"radius"`       // sphere, cylinder
	HalfHeight  float32    `yaml:"half_height"`  // cylinder, along local Z
}

// Shape builds the physics shape scaled by s.
func (d ShapeDesc) Shape(s mgl32.Vec3) (physics.Shape, error) {
	switch d.Type {
	case ShapeBox:
		he := mgl32.Vec3{d.HalfExtents[0] * s[0], d.HalfExtents[1] * s[1], d.HalfExtents[2] * s[2]}
		if he[0] <= 0 || he[1] <= 0 || he[2] <= 0 {
			return nil, fmt.Errorf("box half_extents must be positive (got %v)", he)
		}
		return physics.Cuboid{HalfExtents: he}, nil
	case ShapeSphere:
		r := d.Radius * max3(s)
		if r <= 0 {
			return nil, fmt.Errorf("sphere radius must be positive (got %g)", r)
		}
		return physics.Ball{Radius: r}, nil
	case ShapeCylinder:
		r := d.Radius * maxf(s[0], s[1])
		h := d.HalfHeight * s[2]
		if r <= 0 || h <= 0 {
			return nil, fmt.Errorf("cylinder radius and half_height must be positive (got %g, %g)", r, h)
		}
		return physics.Cylinder{HalfHeight: h, Radius: r}, nil
	}
	return nil, fmt.Errorf("unknown shape type %q", d.Type)
}

// ColliderDesc is one collider of an entity, placed in entity space.
type ColliderDesc struct {
	Shape     ShapeDesc     `yaml:"shape"`
	Transform TransformDesc `yaml:"transform"`
	Friction  float32       `yaml:"friction"`
}

// Body kinds.
const (
	BodyRigid  = "rigid"
	BodyStatic = "static"
)

// BodyDesc selects a dynamic body of a given mass or a static one.
type BodyDesc struct {
	Type string  `yaml:"type"`
	Mass float32 `yaml:"mass"`
}

// PhysicsDesc is the optional physical part of an entity.
type PhysicsDesc struct {
	Body      BodyDesc       `yaml:"body"`
	Colliders []ColliderDesc `yaml:"colliders"`
}

// Dynamic reports whether the body moves.
func (p *PhysicsDesc) Dynamic() bool {
	return p.Body.Type == BodyRigid
}

// WorldColliders builds world colliders under scale s. For rigid bodies the
// density is chosen so that the colliders add up to the configured mass.
func (p *PhysicsDesc) WorldColliders(s mgl32.Vec3) ([]world.ColliderDesc, error) {
	if len(p.Colliders) == 0 {
		return nil, world.ErrNoColliders
	}
	out := make([]world.ColliderDesc, 0, len(p.Colliders))
	var volume float32
	for i, c := range p.Colliders {
		shape, err := c.Shape.Shape(s)
		if err != nil {
			return nil, fmt.Errorf("collider %d: %w", i, err)
		}
		volume += shape.MassProperties(1).Mass

		desc := world.NewColliderDesc(shape)
		offset := c.Transform.Isometry()
		offset.Translation = mgl32.Vec3{offset.Translation[0] * s[0], offset.Translation[1] * s[1], offset.Translation[2] * s[2]}
		desc.Offset = offset
		if c.Friction > 0 {
			desc.Friction = c.Friction
		}
		out = append(out, desc)
	}
	if p.Dynamic() && p.Body.Mass > 0 && volume > 0 {
		density := p.Body.Mass / volume
		for i := range out {
			out[i].Density = density
		}
	}
	return out, nil
}

func (p *PhysicsDesc) validate() error {
	switch p.Body.Type {
	case BodyRigid:
		if p.Body.Mass <= 0 {
			return fmt.Errorf("rigid body mass must be positive (got %g)", p.Body.Mass)
		}
	case BodyStatic:
	default:
		return fmt.Errorf("unknown body type %q", p.Body.Type)
	}
	_, err := p.WorldColliders(mgl32.Vec3{1, 1, 1})
	return err
}

// Entity is a reusable object definition.
type Entity struct {
	ID        string       `yaml:"id"`
	ScenePath string       `yaml:"scene_path"` // render model, consumed elsewhere
	Physics   *PhysicsDesc `yaml:"physics"`
}

// HeightMapDesc locates and scales the terrain of a level.
type HeightMapDesc struct {
	ID           string             `yaml:"id"`
	ImagePath    string             `yaml:"image_path"`
	Radius       [2]float32         `yaml:"radius"` // inner, outer
	Length       float32            `yaml:"length"` // zero derives it from the image
	Density      float32            `yaml:"density"`
	Channel      heightmap.Channel  `yaml:"channel"`
	VerticalWrap heightmap.WrapMode `yaml:"vertical_wrap"`
}

// Params returns the terrain parameters. Length may still need deriving.
func (h HeightMapDesc) Params() terrain.MapParams {
	return terrain.MapParams{
		RadiusInner: h.Radius[0],
		RadiusOuter: h.Radius[1],
		Length:      h.Length,
		Density:     h.Density,
	}
}

// LevelObject instantiates an entity in a level.
type LevelObject struct {
	ID        string        `yaml:"id"`
	EntityID  string        `yaml:"entity_id"`
	Transform TransformDesc `yaml:"transform"`
}

// Level is one playable map.
type Level struct {
	ID        string        `yaml:"id"`
	Name      string        `yaml:"name"`
	HeightMap HeightMapDesc `yaml:"height_map"`
	Objects   []LevelObject `yaml:"objects"`
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func max3(v mgl32.Vec3) float32 {
	return maxf(v[0], maxf(v[1], v[2]))
}
