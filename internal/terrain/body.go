package terrain

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/vandals/internal/logger"
	"github.com/Faultbox/vandals/internal/physics"
	"github.com/Faultbox/vandals/pkg/geom"
	"github.com/Faultbox/vandals/pkg/heightmap"
)

// DefaultStiffness scales penetration depth into a resistance impulse.
const DefaultStiffness float32 = 5.0

// Strategy selects the terrain collider.
type Strategy uint8

const (
	Analytic     Strategy = iota // Cylinder proxy
	MeshCollider                 // baked heightmap MeshSurface
)

// String returns the config name of the strategy.
func (s Strategy) String() string {
	if s == MeshCollider {
		return "mesh"
	}
	return "analytic"
}

// ParseStrategy parses "analytic" or "mesh".
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "analytic", "":
		return Analytic, nil
	case "mesh":
		return MeshCollider, nil
	}
	return Analytic, fmt.Errorf("unknown terrain collider %q", name)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Body is the simulation-facing terrain: parameters, the read-only
// heightmap and the handle of its fixed body once registered.
type Body struct {
	Params    MapParams
	HeightMap *heightmap.HeightMap
	Stiffness float32

	handle     physics.BodyHandle
	registered bool
	mesh       *Mesh
}

// NewBody derives the length when unset and validates the parameters.
func NewBody(params MapParams, hm *heightmap.HeightMap) (*Body, error) {
	if hm == nil || hm.Width() == 0 || hm.Height() == 0 {
		return nil, heightmap.ErrEmpty
	}
	params = params.DeriveLength(hm.Width(), hm.Height())
	if err := params.Validate(); err != nil {
		return nil, err
	}
	logger.Named("terrain").Debug("terrain body created",
		zap.Int("width", hm.Width()),
		zap.Int("height", hm.Height()),
		zap.Float32("length", params.Length),
		zap.Float32("mass", params.Mass()))
	return &Body{Params: params, HeightMap: hm, Stiffness: DefaultStiffness}, nil
}

// Mass is the gravitational mass of the terrain. It ignores the collider
// strategy and the heightmap.
func (b *Body) Mass() float32 {
	return b.Params.Mass()
}

// Texel maps a world point to the heightmap cell under it. Columns follow
// the angle and wrap at the seam; rows follow the axial position scaled to
// row units. Both indices are clamped so a lookup can never go out of range.
func (b *Body) Texel(point mgl32.Vec3) (col, row int) {
	w, h := b.HeightMap.Width(), b.HeightMap.Height()
	rad := geom.ToRadial(point)

	col = clampi(roundi(rad.Turn()*float32(w)), 0, w)
	if col == w {
		col = 0
	}
	rows := (rad.Depth/b.Params.Length + 0.5) * float32(h)
	row = clampi(roundi(rows), 0, h-1)
	return col, row
}

// ExpectedRadius returns the surface radius under point.
func (b *Body) ExpectedRadius(point mgl32.Vec3) float32 {
	col, row := b.Texel(point)
	return b.Params.RadiusAt(b.HeightMap.At(col, row))
}

// Resistance returns the push-back impulse for a contact point. Points at or
// above the surface get zero; points below it are pushed away from the axis
// proportionally to the penetration depth.
func (b *Body) Resistance(point mgl32.Vec3) mgl32.Vec3 {
	radius := geom.RadialDistance(point)
	penetration := radius - b.ExpectedRadius(point)
	if penetration >= 0 {
		return mgl32.Vec3{}
	}
	return geom.RadialUnit(point).Mul(-penetration * b.Stiffness)
}

// Collider returns the terrain shape for the chosen strategy: the analytic
// Cylinder or a MeshSurface. The mesh is built once and cached.
func (b *Body) Collider(s Strategy) (physics.Shape, error) {
	if s == Analytic {
		return NewCylinder(b.Params), nil
	}
	mesh, err := b.Mesh()
	if err != nil {
		return nil, err
	}
	return mesh.Surface()
}

// Mesh returns the heightmap mesh, building it on first use.
func (b *Body) Mesh() (*Mesh, error) {
	if b.mesh == nil {
		m, err := BuildMesh(b.HeightMap, b.Params)
		if err != nil {
			return nil, err
		}
		b.mesh = m
	}
	return b.mesh, nil
}

// Bind records the fixed body registered for this terrain.
func (b *Body) Bind(h physics.BodyHandle) {
	b.handle = h
	b.registered = true
}

// Handle returns the registered body, if any.
func (b *Body) Handle() (physics.BodyHandle, bool) {
	return b.handle, b.registered
}

func roundi(v float32) int {
	return int(math.Floor(float64(v) + 0.5))
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
