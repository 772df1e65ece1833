package scene

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/relive/internal/engine/lighting"
	"github.com/Faultbox/relive/internal/engine/texture"
	"github.com/Faultbox/relive/pkg/math"
	"github.com/Faultbox/relive/pkg/mesh"
)

// Mode selects how a mesh is framed: as a small object in front of the
// camera or as an enclosure the camera sits inside.
type Mode int

const (
	ModePanorama Mode = iota
	ModeObject
)

func (m Mode) String() string {
	switch m {
	case ModePanorama:
		return "panorama"
	case ModeObject:
		return "object"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "panorama" or "object".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "panorama":
		return ModePanorama, nil
	case "object":
		return ModeObject, nil
	}
	return ModePanorama, fmt.Errorf("unknown viewing mode %q", s)
}

// BuildOptions tunes the base scene.
type BuildOptions struct {
	ShadowsEnabled bool
	TextureSize    int // procedural texture resolution

	// Enclosure geometry for panorama mode: discs sit at the bottom and
	// top of a cube of EnclosureSize centered on EnclosureCenter.
	EnclosureSize   float32
	EnclosureCenter math.Vec3
}

// DefaultBuildOptions matches the default panorama normalization.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		TextureSize:     256,
		EnclosureSize:   2000,
		EnclosureCenter: math.Vec3{X: 100, Y: 120, Z: 80},
	}
}

// Base is the mode-dependent content every viewport starts with.
type Base struct {
	Lights      []lighting.Light
	Enclosure   []*Node
	Placeholder *Node
}

var white = [3]float32{1, 1, 1}

// BuildBase returns lights, enclosure nodes (panorama only) and a fresh
// placeholder. Nothing is uploaded.
func BuildBase(mode Mode, opts BuildOptions) *Base {
	b := &Base{Placeholder: NewPlaceholder(opts)}

	key := lighting.NewDirectional("key", white, 0.5, math.Vec3{X: 5, Y: 5, Z: 5})
	key.CastShadow = opts.ShadowsEnabled

	switch mode {
	case ModePanorama:
		b.Lights = []lighting.Light{
			lighting.NewAmbient(white, 1),
			key,
			lighting.NewDirectional("fill", [3]float32{0.9, 0.95, 1}, 0.3, math.Vec3{X: -5, Y: 2, Z: -5}),
			lighting.NewDirectional("rim", [3]float32{1, 0.95, 0.9}, 0.25, math.Vec3{Y: 3, Z: -8}),
		}
		b.Enclosure = enclosure(opts)
	default:
		key.Intensity = 1
		b.Lights = []lighting.Light{
			lighting.NewAmbient(white, 0.5),
			key,
		}
	}
	return b
}

// NewPlaceholder returns the 2×2×2 grid-textured cube shown while no mesh
// is installed.
func NewPlaceholder(opts BuildOptions) *Node {
	size := opts.TextureSize
	if size <= 0 {
		size = 256
	}
	mat := mesh.DefaultMaterial()
	mat.Name = "placeholder"
	mat.Color = [3]float32{0.55, 0.7, 1}
	mat.Texture = texture.Grid(size, 8, [3]float64{0.92, 0.92, 0.95}, [3]float64{0.2, 0.3, 0.55})

	n := NewNode("placeholder")
	p := n.AddPart("cube", BoxGeometry(2, 2, 2), mat)
	p.CastShadow = opts.ShadowsEnabled
	return n
}

func enclosure(opts BuildOptions) []*Node {
	size := opts.TextureSize
	if size <= 0 {
		size = 256
	}
	half := opts.EnclosureSize / 2
	radius := opts.EnclosureSize

	floorMat := mesh.DefaultMaterial()
	floorMat.Name = "floor"
	floorMat.Roughness = 0.9
	floorMat.Texture = texture.Radial(size, [3]float64{0.35, 0.33, 0.3}, [3]float64{0.1, 0.1, 0.1})

	floor := NewNode("floor")
	floor.Transform.Position = opts.EnclosureCenter.Sub(math.Vec3{Y: half})
	fp := floor.AddPart("disc", DiscGeometry(radius, 64), floorMat)
	fp.ReceiveShadow = opts.ShadowsEnabled

	ceilMat := mesh.DefaultMaterial()
	ceilMat.Name = "ceiling"
	ceilMat.Color = [3]float32{0.12, 0.12, 0.14}
	ceilMat.Roughness = 1

	ceiling := NewNode("ceiling")
	ceiling.Transform.Position = opts.EnclosureCenter.Add(math.Vec3{Y: half})
	ceiling.Transform.Rotation.X = gomath.Pi
	cp := ceiling.AddPart("disc", DiscGeometry(radius, 64), ceilMat)
	cp.ReceiveShadow = opts.ShadowsEnabled

	return []*Node{floor, ceiling}
}
