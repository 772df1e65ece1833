package mesh

import (
	"github.com/flywave/go3d/vec3"

	"github.com/Faultbox/relive/pkg/math"
)

// Geometry holds triangle vertex data.
// Positions and Normals are xyz triplets, UVs are uv pairs. Indices is nil
// for non-indexed geometry, in which case every three vertices form a triangle.
type Geometry struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// Indexed reports whether the geometry shares vertices through an index buffer.
func (g *Geometry) Indexed() bool {
	return g.Indices != nil
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	if g.Indexed() {
		return len(g.Indices) / 3
	}
	return g.VertexCount() / 3
}

// Clone returns a deep copy.
func (g *Geometry) Clone() *Geometry {
	out := &Geometry{
		Positions: append([]float32(nil), g.Positions...),
		Normals:   append([]float32(nil), g.Normals...),
		UVs:       append([]float32(nil), g.UVs...),
	}
	if g.Indices != nil {
		out.Indices = append([]uint32(nil), g.Indices...)
	}
	return out
}

// NonIndexed expands the index buffer so every triangle owns its vertices.
// Returns a clone when the geometry is already non-indexed.
func (g *Geometry) NonIndexed() *Geometry {
	if !g.Indexed() {
		return g.Clone()
	}

	hasNormals := len(g.Normals) == len(g.Positions)
	hasUVs := len(g.UVs)/2 == g.VertexCount()

	out := &Geometry{
		Positions: make([]float32, 0, len(g.Indices)*3),
	}
	if hasNormals {
		out.Normals = make([]float32, 0, len(g.Indices)*3)
	}
	if hasUVs {
		out.UVs = make([]float32, 0, len(g.Indices)*2)
	}

	for _, idx := range g.Indices {
		i := int(idx)
		out.Positions = append(out.Positions, g.Positions[i*3:i*3+3]...)
		if hasNormals {
			out.Normals = append(out.Normals, g.Normals[i*3:i*3+3]...)
		}
		if hasUVs {
			out.UVs = append(out.UVs, g.UVs[i*2:i*2+2]...)
		}
	}
	return out
}

// ScaleAxes multiplies positions per axis. A negative factor mirrors the
// geometry; normals are mirrored along with it.
func (g *Geometry) ScaleAxes(x, y, z float32) {
	for i := 0; i+2 < len(g.Positions); i += 3 {
		g.Positions[i] *= x
		g.Positions[i+1] *= y
		g.Positions[i+2] *= z
	}
	sign := func(f float32) float32 {
		if f < 0 {
			return -1
		}
		return 1
	}
	sx, sy, sz := sign(x), sign(y), sign(z)
	for i := 0; i+2 < len(g.Normals); i += 3 {
		g.Normals[i] *= sx
		g.Normals[i+1] *= sy
		g.Normals[i+2] *= sz
	}
}

// ComputeFlatNormals assigns each triangle its face normal.
// Only meaningful on non-indexed geometry.
func (g *Geometry) ComputeFlatNormals() {
	g.Normals = make([]float32, len(g.Positions))
	for t := 0; t+8 < len(g.Positions); t += 9 {
		n := faceNormal(g.Positions[t:t+3], g.Positions[t+3:t+6], g.Positions[t+6:t+9])
		for k := 0; k < 3; k++ {
			copy(g.Normals[t+k*3:t+k*3+3], n[:])
		}
	}
}

// ComputeVertexNormals averages face normals into shared vertices.
func (g *Geometry) ComputeVertexNormals() {
	if !g.Indexed() {
		g.ComputeFlatNormals()
		return
	}

	acc := make([]vec3.T, g.VertexCount())
	for t := 0; t+2 < len(g.Indices); t += 3 {
		a, b, c := int(g.Indices[t]), int(g.Indices[t+1]), int(g.Indices[t+2])
		n := faceNormal(g.Positions[a*3:a*3+3], g.Positions[b*3:b*3+3], g.Positions[c*3:c*3+3])
		for _, v := range [3]int{a, b, c} {
			acc[v] = vec3.Add(&acc[v], &n)
		}
	}

	g.Normals = make([]float32, len(g.Positions))
	for i := range acc {
		n := acc[i]
		if l := n.Length(); l > 0 {
			n = vec3.T{n[0] / l, n[1] / l, n[2] / l}
		} else {
			n = vec3.T{0, 1, 0}
		}
		copy(g.Normals[i*3:i*3+3], n[:])
	}
}

// FlipNormals negates every normal.
func (g *Geometry) FlipNormals() {
	for i := range g.Normals {
		g.Normals[i] = -g.Normals[i]
	}
}

// ReverseWinding swaps the second and third vertex of every triangle.
func (g *Geometry) ReverseWinding() {
	if g.Indexed() {
		for t := 0; t+2 < len(g.Indices); t += 3 {
			g.Indices[t+1], g.Indices[t+2] = g.Indices[t+2], g.Indices[t+1]
		}
		return
	}
	swap := func(buf []float32, stride, t int) {
		if len(buf) < (t+3)*stride {
			return
		}
		b, c := (t+1)*stride, (t+2)*stride
		for k := 0; k < stride; k++ {
			buf[b+k], buf[c+k] = buf[c+k], buf[b+k]
		}
	}
	for t := 0; t+2 < g.VertexCount(); t += 3 {
		swap(g.Positions, 3, t)
		swap(g.Normals, 3, t)
		swap(g.UVs, 2, t)
	}
}

// Bounds returns the bounding box of the positions.
func (g *Geometry) Bounds() math.Box3 {
	box := math.EmptyBox3()
	g.extendBounds(&box)
	return box
}

func (g *Geometry) extendBounds(box *math.Box3) {
	for i := 0; i+2 < len(g.Positions); i += 3 {
		box.Extend(math.Vec3{X: g.Positions[i], Y: g.Positions[i+1], Z: g.Positions[i+2]})
	}
}

// faceNormal returns the unit normal of a counter-clockwise triangle.
func faceNormal(p0, p1, p2 []float32) vec3.T {
	v0 := vec3.T{p0[0], p0[1], p0[2]}
	v1 := vec3.T{p1[0], p1[1], p1[2]}
	v2 := vec3.T{p2[0], p2[1], p2[2]}

	e1 := vec3.Sub(&v1, &v0)
	e2 := vec3.Sub(&v2, &v0)
	n := vec3.Cross(&e1, &e2)

	if l := n.Length(); l > 0 {
		return vec3.T{n[0] / l, n[1] / l, n[2] / l}
	}
	return vec3.T{0, 1, 0}
}
