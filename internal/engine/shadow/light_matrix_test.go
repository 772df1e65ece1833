package shadow

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/relive/pkg/math"
)

func TestLightMatrixCoversBounds(t *testing.T) {
	bounds := math.Box3{Min: math.Vec3{X: -10, Y: -2, Z: -10}, Max: math.Vec3{X: 10, Y: 2, Z: 10}}
	dirs := []math.Vec3{
		math.Vec3{X: 1, Y: 1, Z: 1}.Normalize(),
		{Y: 1},
		math.Vec3{X: -0.3, Y: 0.8, Z: 0.2}.Normalize(),
	}

	for _, dir := range dirs {
		m := LightMatrix(dir, bounds)
		for _, corner := range corners(bounds) {
			p := m.TransformPoint(corner.Array())
			for i, v := range p {
				if gomath.Abs(float64(v)) > 1.0001 {
					t.Errorf("dir %+v: corner %+v maps outside clip space (axis %d = %v)", dir, corner, i, v)
				}
			}
		}
	}
}

func corners(b math.Box3) []math.Vec3 {
	var out []math.Vec3
	for _, x := range []float32{b.Min.X, b.Max.X} {
		for _, y := range []float32{b.Min.Y, b.Max.Y} {
			for _, z := range []float32{b.Min.Z, b.Max.Z} {
				out = append(out, math.Vec3{X: x, Y: y, Z: z})
			}
		}
	}
	return out
}
