package terrain

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vandals/internal/physics"
	"github.com/Faultbox/vandals/pkg/geom"
)

// MeshSurface is the mesh collider. It keeps the lattice layout of the
// baked TriMesh so a surface query casts only against the cell under the
// query point.
type MeshSurface struct {
	*physics.TriMesh

	columns    int
	rows       int
	halfLength float32
	reach      float32
}

var (
	_ physics.Shape            = (*MeshSurface)(nil)
	_ physics.RayCaster        = (*MeshSurface)(nil)
	_ physics.SurfaceProjector = (*MeshSurface)(nil)
)

// Surface converts the mesh into its collider shape.
func (m *Mesh) Surface() (*MeshSurface, error) {
	tm, err := m.TriMesh()
	if err != nil {
		return nil, err
	}
	return &MeshSurface{
		TriMesh:    tm,
		columns:    m.Columns,
		rows:       m.Rows,
		halfLength: m.Bounds.Max[2],
		reach:      2 * m.Bounds.Max.Sub(m.Bounds.Min).Len(),
	}, nil
}

// ProjectSurface implements physics.SurfaceProjector by casting from the
// axis outward through p. Neighbouring columns are tried when the hit falls
// on a shared edge.
func (s *MeshSurface) ProjectSurface(p mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3, bool) {
	n := geom.RadialUnit(p)
	if n.LenSqr() == 0 || p[2] < -s.halfLength || p[2] > s.halfLength {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}

	col := int(geom.ToRadial(p).Turn() * float32(s.columns))
	if col >= s.columns {
		col = s.columns - 1
	}
	row := int((p[2]/(2*s.halfLength) + 0.5) * float32(s.rows))
	row = clampi(row, 0, s.rows-1)

	ray := physics.Ray{Origin: mgl32.Vec3{0, 0, p[2]}, Dir: n}
	for _, dc := range [...]int{0, -1, 1} {
		c := (col + dc + s.columns) % s.columns
		cell := row*s.columns + c
		for k := 0; k < 2; k++ {
			if hit, ok := s.CastRayTriangle(ray, 2*cell+k); ok && hit.TOI <= s.reach {
				return ray.At(hit.TOI), hit.Normal.Mul(-1), true
			}
		}
	}
	return mgl32.Vec3{}, mgl32.Vec3{}, false
}
