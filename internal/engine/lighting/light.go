package lighting

import (
	"fmt"

	"github.com/Faultbox/relive/pkg/math"
)

// MaxDirectional is the number of directional lights the shaders accept.
const MaxDirectional = 4

// Kind distinguishes uniform ambient light from directional light.
type Kind int

const (
	Ambient Kind = iota
	Directional
)

func (k Kind) String() string {
	switch k {
	case Ambient:
		return "ambient"
	case Directional:
		return "directional"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Light is a single scene light. Direction points toward the light and is
// ignored for ambient lights.
type Light struct {
	Name       string
	Kind       Kind
	Color      [3]float32
	Intensity  float32
	Direction  math.Vec3
	CastShadow bool
}

// NewAmbient returns a uniform light.
func NewAmbient(color [3]float32, intensity float32) Light {
	return Light{Name: "ambient", Kind: Ambient, Color: color, Intensity: intensity}
}

// NewDirectional returns a light shining from position toward the origin.
func NewDirectional(name string, color [3]float32, intensity float32, position math.Vec3) Light {
	return Light{
		Name:      name,
		Kind:      Directional,
		Color:     color,
		Intensity: intensity,
		Direction: DirectionTo(position),
	}
}

// Radiance returns color scaled by intensity.
func (l Light) Radiance() [3]float32 {
	return [3]float32{l.Color[0] * l.Intensity, l.Color[1] * l.Intensity, l.Color[2] * l.Intensity}
}

// Split sums ambient lights and returns at most MaxDirectional directional
// lights, in order.
func Split(lights []Light) (ambient [3]float32, directional []Light) {
	for _, l := range lights {
		switch l.Kind {
		case Ambient:
			r := l.Radiance()
			ambient[0] += r[0]
			ambient[1] += r[1]
			ambient[2] += r[2]
		case Directional:
			if len(directional) < MaxDirectional {
				directional = append(directional, l)
			}
		}
	}
	return ambient, directional
}
