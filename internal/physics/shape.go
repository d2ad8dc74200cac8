package physics

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnsupported is returned by shapes that deliberately omit a query.
var ErrUnsupported = errors.New("query not supported by shape")

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns an inverted box that grows from its first point.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// Extend grows the box to contain p.
func (b *AABB) Extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Center returns the box center.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// HalfExtents returns half the box size.
func (b AABB) HalfExtents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Intersects reports whether two boxes overlap.
func (b AABB) Intersects(other AABB) bool {
	for i := 0; i < 3; i++ {
		if b.Max[i] < other.Min[i] || other.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// BoundingSphere is a sphere enclosing a shape.
type BoundingSphere struct {
	Center mgl32.Vec3
	Radius float32
}

// MassProperties describes the mass distribution of a shape or body.
// Inertia is the principal (diagonal) inertia in local space.
type MassProperties struct {
	Mass    float32
	COM     mgl32.Vec3
	Inertia mgl32.Vec3
}

// Ray is a half-line used in ray casts.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// RayHit describes a ray intersection.
type RayHit struct {
	TOI    float32
	Normal mgl32.Vec3
}

// PointProjection is the closest point on a shape to a query point.
type PointProjection struct {
	Point    mgl32.Vec3
	IsInside bool
}

// Shape is the capability set every collider shape provides.
type Shape interface {
	LocalAABB() AABB
	BoundingSphere() BoundingSphere
	MassProperties(density float32) MassProperties
	CCDThickness() float32
}

// SupportMap is implemented by convex shapes usable by GJK-style algorithms.
type SupportMap interface {
	SupportPoint(dir mgl32.Vec3) mgl32.Vec3
}

// RayCaster is implemented by shapes that answer ray queries.
type RayCaster interface {
	CastRay(ray Ray, maxTOI float32) (RayHit, bool, error)
}

// PointProjector is implemented by shapes that answer closest-point queries.
type PointProjector interface {
	ProjectPoint(p mgl32.Vec3) (PointProjection, error)
}

// Ball is a sphere centered at the origin.
type Ball struct {
	Radius float32
}

// LocalAABB implements Shape.
func (b Ball) LocalAABB() AABB {
	r := b.Radius
	return AABB{Min: mgl32.Vec3{-r, -r, -r}, Max: mgl32.Vec3{r, r, r}}
}

// BoundingSphere implements Shape.
func (b Ball) BoundingSphere() BoundingSphere {
	return BoundingSphere{Radius: b.Radius}
}

// MassProperties implements Shape.
func (b Ball) MassProperties(density float32) MassProperties {
	r := b.Radius
	m := density * 4.0 / 3.0 * math.Pi * r * r * r
	i := 0.4 * m * r * r
	return MassProperties{Mass: m, Inertia: mgl32.Vec3{i, i, i}}
}

// CCDThickness implements Shape.
func (b Ball) CCDThickness() float32 {
	return b.Radius
}

// SupportPoint implements SupportMap.
func (b Ball) SupportPoint(dir mgl32.Vec3) mgl32.Vec3 {
	l := dir.Len()
	if l == 0 {
		return mgl32.Vec3{b.Radius, 0, 0}
	}
	return dir.Mul(b.Radius / l)
}

// CastRay implements RayCaster.
func (b Ball) CastRay(ray Ray, maxTOI float32) (RayHit, bool, error) {
	a := ray.Dir.Dot(ray.Dir)
	if a == 0 {
		return RayHit{}, false, nil
	}
	half := ray.Origin.Dot(ray.Dir)
	c := ray.Origin.Dot(ray.Origin) - b.Radius*b.Radius
	disc := half*half - a*c
	if disc < 0 {
		return RayHit{}, false, nil
	}
	sq := float32(math.Sqrt(float64(disc)))
	t := (-half - sq) / a
	if t < 0 {
		// Origin inside the ball: solid hit at t=0
		if c <= 0 {
			return RayHit{TOI: 0}, true, nil
		}
		return RayHit{}, false, nil
	}
	if t > maxTOI {
		return RayHit{}, false, nil
	}
	return RayHit{TOI: t, Normal: ray.At(t).Normalize()}, true, nil
}

// ProjectSurface implements SurfaceProjector.
func (b Ball) ProjectSurface(p mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3, bool) {
	l := p.Len()
	if l == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	n := p.Mul(1 / l)
	return n.Mul(b.Radius), n, true
}

// Cuboid is a box centered at the origin.
type Cuboid struct {
	HalfExtents mgl32.Vec3
}

// LocalAABB implements Shape.
func (c Cuboid) LocalAABB() AABB {
	return AABB{Min: c.HalfExtents.Mul(-1), Max: c.HalfExtents}
}

// BoundingSphere implements Shape.
func (c Cuboid) BoundingSphere() BoundingSphere {
	return BoundingSphere{Radius: c.HalfExtents.Len()}
}

// MassProperties implements Shape.
func (c Cuboid) MassProperties(density float32) MassProperties {
	hx, hy, hz := c.HalfExtents[0], c.HalfExtents[1], c.HalfExtents[2]
	m := density * 8 * hx * hy * hz
	return MassProperties{
		Mass: m,
		Inertia: mgl32.Vec3{
			m / 3 * (hy*hy + hz*hz),
			m / 3 * (hx*hx + hz*hz),
			m / 3 * (hx*hx + hy*hy),
		},
	}
}

// CCDThickness implements Shape.
func (c Cuboid) CCDThickness() float32 {
	return minf(c.HalfExtents[0], minf(c.HalfExtents[1], c.HalfExtents[2]))
}

// SupportPoint implements SupportMap.
func (c Cuboid) SupportPoint(dir mgl32.Vec3) mgl32.Vec3 {
	var p mgl32.Vec3
	for i := 0; i < 3; i++ {
		p[i] = c.HalfExtents[i]
		if dir[i] < 0 {
			p[i] = -p[i]
		}
	}
	return p
}

// ProjectSurface implements SurfaceProjector. Outside points project onto
// the closest box point; inside points leave through the nearest face.
func (c Cuboid) ProjectSurface(p mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3, bool) {
	h := c.HalfExtents
	clamped := p
	inside := true
	for i := 0; i < 3; i++ {
		if p[i] > h[i] {
			clamped[i], inside = h[i], false
		} else if p[i] < -h[i] {
			clamped[i], inside = -h[i], false
		}
	}
	if !inside {
		return clamped, p.Sub(clamped).Normalize(), true
	}

	axis, best := 0, float32(math.Inf(1))
	for i := 0; i < 3; i++ {
		if d := h[i] - float32(math.Abs(float64(p[i]))); d < best {
			axis, best = i, d
		}
	}
	var n mgl32.Vec3
	n[axis] = 1
	if p[axis] < 0 {
		n[axis] = -1
	}
	point := p
	point[axis] = n[axis] * h[axis]
	return point, n, true
}

// Cylinder is a solid cylinder centered at the origin with its axis along local Z.
type Cylinder struct {
	HalfHeight float32
	Radius     float32
}

// LocalAABB implements Shape.
func (c Cylinder) LocalAABB() AABB {
	r, h := c.Radius, c.HalfHeight
	return AABB{Min: mgl32.Vec3{-r, -r, -h}, Max: mgl32.Vec3{r, r, h}}
}

// BoundingSphere implements Shape.
func (c Cylinder) BoundingSphere() BoundingSphere {
	return BoundingSphere{Radius: float32(math.Hypot(float64(c.Radius), float64(c.HalfHeight)))}
}

// MassProperties implements Shape.
func (c Cylinder) MassProperties(density float32) MassProperties {
	r, h := c.Radius, 2*c.HalfHeight
	m := density * math.Pi * r * r * h
	axial := 0.5 * m * r * r
	lateral := m * (3*r*r + h*h) / 12
	return MassProperties{Mass: m, Inertia: mgl32.Vec3{lateral, lateral, axial}}
}

// CCDThickness implements Shape.
func (c Cylinder) CCDThickness() float32 {
	return minf(c.Radius, c.HalfHeight)
}

// SupportPoint implements SupportMap.
func (c Cylinder) SupportPoint(dir mgl32.Vec3) mgl32.Vec3 {
	var p mgl32.Vec3
	if l := float32(math.Hypot(float64(dir[0]), float64(dir[1]))); l > 0 {
		p[0] = dir[0] / l * c.Radius
		p[1] = dir[1] / l * c.Radius
	}
	p[2] = c.HalfHeight
	if dir[2] < 0 {
		p[2] = -c.HalfHeight
	}
	return p
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
