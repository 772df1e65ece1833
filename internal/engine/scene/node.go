package scene

import (
	"fmt"
	"image"

	"github.com/Faultbox/relive/internal/engine/gpu"
	"github.com/Faultbox/relive/pkg/math"
	"github.com/Faultbox/relive/pkg/mesh"
)

// Transform places a node in world space: scale, then XYZ Euler rotation
// (radians), then translation.
type Transform struct {
	Position math.Vec3
	Rotation math.Vec3
	Scale    float32
}

// Matrix returns the model matrix.
func (t Transform) Matrix() math.Mat4 {
	return math.Compose(t.Position, t.Rotation, t.Scale)
}

// Part is one geometry drawn with one material.
type Part struct {
	Name          string
	Geometry      *mesh.Geometry
	Material      *mesh.Material
	Primitive     gpu.Primitive
	CastShadow    bool
	ReceiveShadow bool

	geometry gpu.Geometry
	texture  gpu.Texture
}

// Node is a group of parts sharing a transform. Its GPU resources are
// allocated by Upload and freed exactly once by Release.
type Node struct {
	Name      string
	Transform Transform
	Parts     []*Part

	device   gpu.Device
	textures map[*image.RGBA]gpu.Texture
	uploaded bool
}

// NewNode returns an empty node with unit scale.
func NewNode(name string) *Node {
	return &Node{Name: name, Transform: Transform{Scale: 1}}
}

// AddPart appends a triangle part.
func (n *Node) AddPart(name string, g *mesh.Geometry, m *mesh.Material) *Part {
	p := &Part{Name: name, Geometry: g, Material: m}
	n.Parts = append(n.Parts, p)
	return p
}

// Uploaded reports whether the node currently holds GPU resources.
func (n *Node) Uploaded() bool { return n.uploaded }

// Upload allocates geometry and textures on dev. Parts sharing a decoded
// texture share one GPU texture. On failure everything allocated so far is
// released and the node is left not uploaded.
func (n *Node) Upload(dev gpu.Device) error {
	if n.uploaded {
		return fmt.Errorf("node %q: already uploaded", n.Name)
	}
	n.device = dev
	n.textures = make(map[*image.RGBA]gpu.Texture)
	n.uploaded = true

	for _, p := range n.Parts {
		h, err := dev.CreateGeometry(p.Geometry, p.Primitive)
		if err != nil {
			n.Release()
			return fmt.Errorf("node %q part %q: %w", n.Name, p.Name, err)
		}
		p.geometry = h

		if p.Material == nil || p.Material.Texture == nil {
			continue
		}
		if tex, ok := n.textures[p.Material.Texture]; ok {
			p.texture = tex
			continue
		}
		tex, err := dev.CreateTexture(p.Material.Texture)
		if err != nil {
			n.Release()
			return fmt.Errorf("node %q part %q texture: %w", n.Name, p.Name, err)
		}
		n.textures[p.Material.Texture] = tex
		p.texture = tex
	}
	return nil
}

// Release frees every GPU resource held by the node. It is idempotent.
func (n *Node) Release() {
	if !n.uploaded {
		return
	}
	for _, p := range n.Parts {
		if p.geometry != 0 {
			n.device.ReleaseGeometry(p.geometry)
			p.geometry = 0
		}
		p.texture = 0
	}
	for _, tex := range n.textures {
		n.device.ReleaseTexture(tex)
	}
	n.textures = nil
	n.device = nil
	n.uploaded = false
}

// LocalBounds returns the bounds of all parts before the transform.
func (n *Node) LocalBounds() math.Box3 {
	box := math.EmptyBox3()
	for _, p := range n.Parts {
		b := p.Geometry.Bounds()
		if b.IsEmpty() {
			continue
		}
		box.Extend(b.Min)
		box.Extend(b.Max)
	}
	return box
}

// WorldBounds returns the axis-aligned bounds of the transformed parts.
func (n *Node) WorldBounds() math.Box3 {
	return transformBox(n.LocalBounds(), n.Transform.Matrix())
}

func transformBox(b math.Box3, m math.Mat4) math.Box3 {
	out := math.EmptyBox3()
	if b.IsEmpty() {
		return out
	}
	for _, x := range []float32{b.Min.X, b.Max.X} {
		for _, y := range []float32{b.Min.Y, b.Max.Y} {
			for _, z := range []float32{b.Min.Z, b.Max.Z} {
				out.Extend(m.TransformVec3(math.Vec3{X: x, Y: y, Z: z}))
			}
		}
	}
	return out
}

func (n *Node) appendDrawItems(items []gpu.DrawItem, bounds *math.Box3) []gpu.DrawItem {
	if !n.uploaded {
		return items
	}
	model := n.Transform.Matrix()
	for _, p := range n.Parts {
		items = append(items, gpu.DrawItem{
			Name:          n.Name + "/" + p.Name,
			Geometry:      p.geometry,
			Primitive:     p.Primitive,
			Model:         model,
			Material:      gpuMaterial(p.Material, p.texture),
			CastShadow:    p.CastShadow,
			ReceiveShadow: p.ReceiveShadow,
		})
		if p.CastShadow {
			wb := transformBox(p.Geometry.Bounds(), model)
			if !wb.IsEmpty() {
				bounds.Extend(wb.Min)
				bounds.Extend(wb.Max)
			}
		}
	}
	return items
}

func gpuMaterial(m *mesh.Material, tex gpu.Texture) gpu.Material {
	if m == nil {
		m = mesh.DefaultMaterial()
	}
	return gpu.Material{
		Color:     m.Color,
		Opacity:   m.Opacity,
		Roughness: m.Roughness,
		Metalness: m.Metalness,
		Side:      m.Side,
		Texture:   tex,
	}
}
