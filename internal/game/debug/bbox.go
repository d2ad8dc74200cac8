// Package debug builds line geometry for visualizing colliders.
package debug

import (
	"github.com/Faultbox/vandals/internal/physics"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// BBoxWireframe creates line vertices for a wireframe bounding box.
// Returns 24 vertices (12 edges × 2 endpoints), format: [x, y, z] per vertex.
// padding expands the box by the given amount on all sides.
func BBoxWireframe(box physics.AABB, padding float32) []float32 {
	minX, minY, minZ := box.Min[0]-padding, box.Min[1]-padding, box.Min[2]-padding
	maxX, maxY, maxZ := box.Max[0]+padding, box.Max[1]+padding, box.Max[2]+padding
	return []float32{
		// Bottom face (4 edges)
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face (4 edges)
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges (4 edges)
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// ColliderLines returns wireframes for the world bounds of every collider
// attached to a body matching keep. A nil keep selects all bodies.
func ColliderLines(e *physics.Engine, keep func(*physics.RigidBody) bool) []float32 {
	var out []float32
	e.EachBody(func(_ physics.BodyHandle, b *physics.RigidBody) {
		if keep != nil && !keep(b) {
			return
		}
		for _, ch := range b.Colliders() {
			if box, ok := e.ColliderAABB(ch); ok {
				out = append(out, BBoxWireframe(box, 0)...)
			}
		}
	})
	return out
}
