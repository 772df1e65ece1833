// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/Faultbox/relive/pkg/math"
	"github.com/Faultbox/relive/pkg/mesh"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// DefaultBBoxPadding is the relative padding applied to bounds overlays.
const DefaultBBoxPadding = 0.01

// GenerateBBoxWireframeVertices creates line vertices for a wireframe bounding box.
// Returns 24 vertices (12 edges × 2 endpoints), format: [x, y, z] per vertex.
func GenerateBBoxWireframeVertices(minX, minY, minZ, maxX, maxY, maxZ float32) []float32 {
	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Verticals
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// BBoxWireframe returns line geometry outlining box, grown on every side by
// padding times the box's largest dimension. Empty boxes yield nil.
func BBoxWireframe(box math.Box3, padding float32) *mesh.Geometry {
	if box.IsEmpty() {
		return nil
	}
	pad := box.MaxDim() * padding
	lo := box.Min.Sub(math.Vec3{X: pad, Y: pad, Z: pad})
	hi := box.Max.Add(math.Vec3{X: pad, Y: pad, Z: pad})
	return &mesh.Geometry{
		Positions: GenerateBBoxWireframeVertices(lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z),
	}
}
