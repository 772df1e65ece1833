package gpu

import "github.com/Faultbox/relive/pkg/mesh"

// VertexStride is the size in bytes of one interleaved vertex:
// position (3 floats), normal (3 floats), texcoord (2 floats).
const VertexStride = 8 * 4

// Attribute byte offsets within an interleaved vertex.
const (
	OffsetPosition = 0
	OffsetNormal   = 12
	OffsetTexCoord = 24
)

// Interleave packs geometry into position/normal/texcoord vertices. Missing
// normals become zero and missing texcoords become (0, 0).
func Interleave(g *mesh.Geometry) []float32 {
	n := g.VertexCount()
	hasNormals := len(g.Normals) == len(g.Positions)
	hasUVs := len(g.UVs) == n*2

	out := make([]float32, 0, n*8)
	for i := 0; i < n; i++ {
		out = append(out, g.Positions[i*3:i*3+3]...)
		if hasNormals {
			out = append(out, g.Normals[i*3:i*3+3]...)
		} else {
			out = append(out, 0, 0, 0)
		}
		if hasUVs {
			out = append(out, g.UVs[i*2:i*2+2]...)
		} else {
			out = append(out, 0, 0)
		}
	}
	return out
}
