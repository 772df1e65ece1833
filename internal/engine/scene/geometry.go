package scene

import (
	gomath "math"

	"github.com/Faultbox/relive/pkg/math"
	"github.com/Faultbox/relive/pkg/mesh"
)

type boxFace struct {
	n, u, v math.Vec3 // u × v = n
}

var boxFaces = [6]boxFace{
	{n: math.Vec3{X: 1}, u: math.Vec3{Z: -1}, v: math.Vec3{Y: 1}},
	{n: math.Vec3{X: -1}, u: math.Vec3{Z: 1}, v: math.Vec3{Y: 1}},
	{n: math.Vec3{Y: 1}, u: math.Vec3{X: 1}, v: math.Vec3{Z: -1}},
	{n: math.Vec3{Y: -1}, u: math.Vec3{X: 1}, v: math.Vec3{Z: 1}},
	{n: math.Vec3{Z: 1}, u: math.Vec3{X: 1}, v: math.Vec3{Y: 1}},
	{n: math.Vec3{Z: -1}, u: math.Vec3{X: -1}, v: math.Vec3{Y: 1}},
}

// BoxGeometry returns an indexed box centered on the origin with outward
// normals and a full 0..1 texture on every face.
func BoxGeometry(width, height, depth float32) *mesh.Geometry {
	half := math.Vec3{X: width / 2, Y: height / 2, Z: depth / 2}
	g := &mesh.Geometry{Indices: make([]uint32, 0, 36)}

	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range boxFaces {
		base := uint32(g.VertexCount())
		for _, c := range corners {
			p := f.n.Add(f.u.Scale(c[0])).Add(f.v.Scale(c[1]))
			g.Positions = append(g.Positions, p.X*half.X, p.Y*half.Y, p.Z*half.Z)
			g.Normals = append(g.Normals, f.n.X, f.n.Y, f.n.Z)
			g.UVs = append(g.UVs, (c[0]+1)/2, (c[1]+1)/2)
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}

// DiscGeometry returns a disc of the given radius in the XZ plane facing +Y.
// UVs map the disc onto the unit square.
func DiscGeometry(radius float32, segments int) *mesh.Geometry {
	if segments < 3 {
		segments = 3
	}
	g := &mesh.Geometry{
		Positions: []float32{0, 0, 0},
		Normals:   []float32{0, 1, 0},
		UVs:       []float32{0.5, 0.5},
	}
	for i := 0; i <= segments; i++ {
		a := 2 * gomath.Pi * float64(i) / float64(segments)
		cos, sin := float32(gomath.Cos(a)), float32(gomath.Sin(a))
		// -sin on Z keeps the winding counter-clockwise seen from +Y.
		g.Positions = append(g.Positions, radius*cos, 0, -radius*sin)
		g.Normals = append(g.Normals, 0, 1, 0)
		g.UVs = append(g.UVs, (cos+1)/2, (sin+1)/2)
	}
	for i := 1; i <= segments; i++ {
		g.Indices = append(g.Indices, 0, uint32(i), uint32(i+1))
	}
	return g
}
