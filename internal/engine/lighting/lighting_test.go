package lighting

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/relive/pkg/math"
)

func TestDirection(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		want     math.Vec3
	}{
		{"zenith", 0, 90, math.Vec3{Y: 1}},
		{"south horizon", 0, 0, math.Vec3{Z: 1}},
		{"east horizon", 90, 0, math.Vec3{X: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Direction(tt.lon, tt.lat)
			if got.Distance(tt.want) > 1e-6 {
				t.Errorf("Direction(%v, %v) = %+v, want %+v", tt.lon, tt.lat, got, tt.want)
			}
			if l := got.Length(); gomath.Abs(float64(l)-1) > 1e-6 {
				t.Errorf("length = %v", l)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	lights := []Light{
		NewAmbient([3]float32{1, 1, 1}, 0.5),
		NewAmbient([3]float32{1, 0, 0}, 0.25),
		NewDirectional("key", [3]float32{1, 1, 1}, 1, math.Vec3{X: 5, Y: 5, Z: 5}),
	}
	for i := 0; i < MaxDirectional+2; i++ {
		lights = append(lights, NewDirectional("extra", [3]float32{1, 1, 1}, 0.1, math.Vec3{Y: 1}))
	}

	ambient, dir := Split(lights)
	if ambient != [3]float32{0.75, 0.5, 0.5} {
		t.Errorf("ambient = %v", ambient)
	}
	if len(dir) != MaxDirectional {
		t.Fatalf("got %d directional lights, want %d", len(dir), MaxDirectional)
	}
	if dir[0].Name != "key" {
		t.Errorf("first directional = %s, want key", dir[0].Name)
	}
	if l := dir[0].Direction.Length(); gomath.Abs(float64(l)-1) > 1e-6 {
		t.Errorf("key direction not normalized: %v", l)
	}
}
