package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// TriMesh is a triangle soup used for fixed colliders.
type TriMesh struct {
	Vertices  []mgl32.Vec3
	Triangles [][3]uint32
	aabb      AABB
}

// NewTriMesh validates indices and precomputes the bounding box.
func NewTriMesh(vertices []mgl32.Vec3, triangles [][3]uint32) (*TriMesh, error) {
	if len(vertices) == 0 || len(triangles) == 0 {
		return nil, fmt.Errorf("trimesh needs vertices and triangles (got %d, %d)", len(vertices), len(triangles))
	}
	for i, tri := range triangles {
		for _, idx := range tri {
			if int(idx) >= len(vertices) {
				return nil, fmt.Errorf("triangle %d references vertex %d of %d", i, idx, len(vertices))
			}
		}
	}
	aabb := EmptyAABB()
	for _, v := range vertices {
		aabb.Extend(v)
	}
	return &TriMesh{Vertices: vertices, Triangles: triangles, aabb: aabb}, nil
}

// LocalAABB implements Shape.
func (m *TriMesh) LocalAABB() AABB {
	return m.aabb
}

// BoundingSphere implements Shape.
func (m *TriMesh) BoundingSphere() BoundingSphere {
	c := m.aabb.Center()
	var r float32
	for _, v := range m.Vertices {
		if d := v.Sub(c).Len(); d > r {
			r = d
		}
	}
	return BoundingSphere{Center: c, Radius: r}
}

// MassProperties implements Shape. A triangle surface has no volume, so the
// mesh carries no mass; attach it to fixed bodies only.
func (m *TriMesh) MassProperties(density float32) MassProperties {
	return MassProperties{COM: m.aabb.Center()}
}

// CCDThickness implements Shape.
func (m *TriMesh) CCDThickness() float32 {
	return 0
}

// CastRay implements RayCaster by testing every triangle.
func (m *TriMesh) CastRay(ray Ray, maxTOI float32) (RayHit, bool, error) {
	best := RayHit{TOI: maxTOI}
	found := false
	for i := range m.Triangles {
		if hit, ok := m.CastRayTriangle(ray, i); ok && hit.TOI <= best.TOI {
			best = hit
			found = true
		}
	}
	return best, found, nil
}

// CastRayTriangle tests the ray against triangle i only. The hit normal
// faces against the ray.
func (m *TriMesh) CastRayTriangle(ray Ray, i int) (RayHit, bool) {
	tri := m.Triangles[i]
	a, b, c := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
	t, ok := rayTriangle(ray, a, b, c)
	if !ok {
		return RayHit{}, false
	}
	normal := b.Sub(a).Cross(c.Sub(a))
	if normal.Dot(ray.Dir) > 0 {
		normal = normal.Mul(-1)
	}
	return RayHit{TOI: t, Normal: normal.Normalize()}, true
}

// rayTriangle is the Möller–Trumbore intersection test (both faces).
func rayTriangle(ray Ray, a, b, c mgl32.Vec3) (float32, bool) {
	const eps = 1e-7
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := ray.Dir.Cross(e2)
	det := e1.Dot(p)
	if det > -eps && det < eps {
		return 0, false
	}
	inv := 1 / det
	s := ray.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := ray.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}
