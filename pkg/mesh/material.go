package mesh

import (
	"image"

	gobj "github.com/flywave/go-obj"
)

// Side selects which triangle faces are rendered.
type Side int

const (
	SideFront Side = iota
	SideBack
	SideDouble
)

// String returns the side name.
func (s Side) String() string {
	switch s {
	case SideBack:
		return "back"
	case SideDouble:
		return "double"
	default:
		return "front"
	}
}

// Material is a simple PBR-ish surface description.
type Material struct {
	Name      string
	Color     [3]float32 // linear RGB, 0-1
	Opacity   float32
	Roughness float32
	Metalness float32
	Side      Side

	DiffuseMap string      // map_Kd reference, relative to the material library
	Texture    *image.RGBA // decoded DiffuseMap, nil if missing or undecodable
}

// DefaultMaterial returns the flat, non-metallic, medium-roughness material
// assigned to parts that arrive without one.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "default",
		Color:     [3]float32{1, 1, 1},
		Opacity:   1,
		Roughness: 0.5,
		Metalness: 0,
		Side:      SideFront,
	}
}

// Clone returns a copy sharing the decoded texture.
func (m *Material) Clone() *Material {
	cp := *m
	return &cp
}

// Transparent reports whether blending is required.
func (m *Material) Transparent() bool {
	return m.Opacity < 1
}

// ReadMTL decodes a material library from a local file.
func ReadMTL(path string) (map[string]*Material, error) {
	raw, err := gobj.ReadMaterials(path)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*Material, len(raw))
	for name, m := range raw {
		if m == nil {
			continue
		}
		out[name] = fromOBJMaterial(name, m)
	}
	return out, nil
}

// fromOBJMaterial converts a go-obj material, defaulting anything MTL left unset.
func fromOBJMaterial(name string, m *gobj.Material) *Material {
	mat := DefaultMaterial()
	mat.Name = name

	if len(m.Diffuse) >= 3 {
		mat.Color = [3]float32{m.Diffuse[0], m.Diffuse[1], m.Diffuse[2]}
	}
	if op := float32(m.Opacity); op > 0 && op <= 1 {
		mat.Opacity = op
	}
	if r := float32(m.Roughness); r > 0 {
		mat.Roughness = r
	}
	if mt := float32(m.Metallic); mt > 0 {
		mat.Metalness = mt
	}
	mat.DiffuseMap = m.DiffuseTexture
	return mat
}
