package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vandals/internal/physics"
	"github.com/Faultbox/vandals/pkg/geom"
)

// ProxyRatio places the mass-equivalent solid cylinder between the inner
// (0) and outer (1) radius. It is an approximation.
const ProxyRatio = 0.2

// Cylinder is the analytic terrain proxy: an idealized cylinder between the
// inner and outer radius, axis along Z, centered at the origin. It answers
// bounds, support, surface and mass queries only.
type Cylinder struct {
	Inner, Outer float32
	HalfLength   float32
}

var (
	_ physics.Shape          = Cylinder{}
	_ physics.SupportMap     = Cylinder{}
	_ physics.RayCaster      = Cylinder{}
	_ physics.PointProjector = Cylinder{}

	_ physics.SurfaceProjector = Cylinder{}
)

// NewCylinder creates the proxy shape for p.
func NewCylinder(p MapParams) Cylinder {
	return Cylinder{Inner: p.RadiusInner, Outer: p.RadiusOuter, HalfLength: p.Length / 2}
}

// LocalAABB implements physics.Shape.
func (c Cylinder) LocalAABB() physics.AABB {
	r, h := c.Outer, c.HalfLength
	return physics.AABB{Min: mgl32.Vec3{-r, -r, -h}, Max: mgl32.Vec3{r, r, h}}
}

// BoundingSphere implements physics.Shape.
func (c Cylinder) BoundingSphere() physics.BoundingSphere {
	return physics.BoundingSphere{Radius: float32(math.Hypot(float64(c.Outer), float64(c.HalfLength)))}
}

// MassProperties implements physics.Shape using a solid cylinder at
// ProxyRatio between the radii.
func (c Cylinder) MassProperties(density float32) physics.MassProperties {
	r := c.Inner + ProxyRatio*(c.Outer-c.Inner)
	return physics.Cylinder{HalfHeight: c.HalfLength, Radius: r}.MassProperties(density)
}

// CCDThickness implements physics.Shape.
func (c Cylinder) CCDThickness() float32 {
	return c.Outer - c.Inner
}

// SupportPoint implements physics.SupportMap on the average radius.
func (c Cylinder) SupportPoint(dir mgl32.Vec3) mgl32.Vec3 {
	r := (c.Inner + c.Outer) / 2
	var p mgl32.Vec3
	if l := float32(math.Hypot(float64(dir[0]), float64(dir[1]))); l > 0 {
		p[0] = dir[0] * r / l
		p[1] = dir[1] * r / l
	}
	switch {
	case dir[2] > 0:
		p[2] = c.HalfLength
	case dir[2] < 0:
		p[2] = -c.HalfLength
	}
	return p
}

// ProjectSurface implements physics.SurfaceProjector. The surface is the
// support cylinder on the average radius; points on the axis or past either
// end have none.
func (c Cylinder) ProjectSurface(p mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3, bool) {
	n := geom.RadialUnit(p)
	if n.LenSqr() == 0 || p[2] < -c.HalfLength || p[2] > c.HalfLength {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	point := c.SupportPoint(n)
	point[2] = p[2]
	return point, n, true
}

// CastRay always reports physics.ErrUnsupported.
func (c Cylinder) CastRay(physics.Ray, float32) (physics.RayHit, bool, error) {
	return physics.RayHit{}, false, physics.ErrUnsupported
}

// ProjectPoint always reports physics.ErrUnsupported.
func (c Cylinder) ProjectPoint(mgl32.Vec3) (physics.PointProjection, error) {
	return physics.PointProjection{}, physics.ErrUnsupported
}
