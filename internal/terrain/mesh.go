package terrain

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/vandals/internal/logger"
	"github.com/Faultbox/vandals/internal/physics"
	"github.com/Faultbox/vandals/pkg/heightmap"
)

// Vertex is a terrain lattice vertex with render attributes.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3 // points away from the axis (the drivable side)
	TexCoord [2]float32
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Mesh is the ruled surface wrapping the cylinder. The lattice has
// (Columns+1)×(Rows+1) vertices; column Columns duplicates column 0 and
// row Rows duplicates row 0.
type Mesh struct {
	Columns  int
	Rows     int
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// BuildMesh samples hm on the lattice and triangulates every cell into two
// triangles wound so that face normals point away from the axis.
func BuildMesh(hm *heightmap.HeightMap, params MapParams) (*Mesh, error) {
	if hm == nil {
		return nil, heightmap.ErrEmpty
	}
	params = params.DeriveLength(hm.Width(), hm.Height())
	if err := params.Validate(); err != nil {
		return nil, err
	}

	cols, rows := hm.Width(), hm.Height()
	m := &Mesh{
		Columns:  cols,
		Rows:     rows,
		Vertices: make([]Vertex, 0, (cols+1)*(rows+1)),
		Indices:  make([]uint32, 0, cols*rows*6),
		Bounds: Bounds{
			Min: mgl32.Vec3{1e10, 1e10, 1e10},
			Max: mgl32.Vec3{-1e10, -1e10, -1e10},
		},
	}

	for y := 0; y <= rows; y++ {
		depth := (float32(y)/float32(rows) - 0.5) * params.Length
		for x := 0; x <= cols; x++ {
			// Column cols lands on the same angle as column 0
			s, c := math.Sincos(2 * math.Pi * float64(x%cols) / float64(cols))
			// Row rows closes the axial seam with row 0 in every wrap mode
			r := params.RadiusAt(hm.At(x, y%rows))
			pos := mgl32.Vec3{r * float32(c), r * float32(s), depth}
			updateBounds(&m.Bounds, pos)
			m.Vertices = append(m.Vertices, Vertex{
				Position: pos,
				TexCoord: [2]float32{float32(x) / float32(cols), float32(y) / float32(rows)},
			})
		}
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			i0 := m.index(x, y)
			i1 := m.index(x+1, y)
			i2 := m.index(x, y+1)
			i3 := m.index(x+1, y+1)
			m.Indices = append(m.Indices,
				i0, i1, i2,
				i1, i3, i2,
			)
		}
	}

	m.accumulateNormals()
	SmoothNormals(m.Vertices)

	logger.Named("terrain").Debug("built terrain mesh",
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", len(m.Indices)/3),
		logger.Vec3("min", m.Bounds.Min),
		logger.Vec3("max", m.Bounds.Max))
	return m, nil
}

func (m *Mesh) index(x, y int) uint32 {
	return uint32(y*(m.Columns+1) + x)
}

// Vertex returns the lattice position at (x, y), 0 ≤ x ≤ Columns, 0 ≤ y ≤ Rows.
func (m *Mesh) Vertex(x, y int) mgl32.Vec3 {
	return m.Vertices[m.index(x, y)].Position
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Flatten returns positions as xyz triples and the flat index buffer, the
// layout render and generic-model collaborators consume.
func (m *Mesh) Flatten() ([]float32, []uint32) {
	positions := make([]float32, 0, len(m.Vertices)*3)
	for _, v := range m.Vertices {
		positions = append(positions, v.Position[0], v.Position[1], v.Position[2])
	}
	indices := make([]uint32, len(m.Indices))
	copy(indices, m.Indices)
	return positions, indices
}

// TriMesh converts the mesh into a collider shape.
func (m *Mesh) TriMesh() (*physics.TriMesh, error) {
	if len(m.Indices)%3 != 0 {
		return nil, errors.New("index buffer is not a triangle list")
	}
	positions := make([]mgl32.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = v.Position
	}
	tris := make([][3]uint32, len(m.Indices)/3)
	for i := range tris {
		tris[i] = [3]uint32{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
	}
	return physics.NewTriMesh(positions, tris)
}

// accumulateNormals sums area-weighted face normals into each vertex.
func (m *Mesh) accumulateNormals() {
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		pa, pb, pc := m.Vertices[a].Position, m.Vertices[b].Position, m.Vertices[c].Position
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		m.Vertices[a].Normal = m.Vertices[a].Normal.Add(n)
		m.Vertices[b].Normal = m.Vertices[b].Normal.Add(n)
		m.Vertices[c].Normal = m.Vertices[c].Normal.Add(n)
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = normalize(m.Vertices[i].Normal, m.Vertices[i].Position)
	}
}

// SmoothNormals averages normals of vertices sharing a position, which joins
// the duplicated seam column into one smooth surface.
func SmoothNormals(vertices []Vertex) {
	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		key := [3]int32{
			int32(math.Round(float64(vertices[i].Position[0] / epsilon))),
			int32(math.Round(float64(vertices[i].Position[1] / epsilon))),
			int32(math.Round(float64(vertices[i].Position[2] / epsilon))),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, indices := range posMap {
		if len(indices) < 2 {
			continue
		}

		var sum mgl32.Vec3
		for _, idx := range indices {
			sum = sum.Add(vertices[idx].Normal)
		}

		avg := normalize(sum, vertices[indices[0]].Position)
		for _, idx := range indices {
			vertices[idx].Normal = avg
		}
	}
}

func updateBounds(b *Bounds, p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// normalize falls back to the outward radial direction at pos for degenerate input.
func normalize(v, pos mgl32.Vec3) mgl32.Vec3 {
	if v.Len() < 0.0001 {
		r := float32(math.Hypot(float64(pos[0]), float64(pos[1])))
		if r == 0 {
			return mgl32.Vec3{0, 0, 1}
		}
		return mgl32.Vec3{pos[0] / r, pos[1] / r, 0}
	}
	return v.Normalize()
}
