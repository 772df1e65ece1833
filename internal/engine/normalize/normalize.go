// Package normalize fits a loaded mesh into the viewing geometry of a
// scene mode: a small centered object, or a large inside-out enclosure
// wrapped around the camera.
package normalize

import (
	"errors"
	"fmt"
	gomath "math"

	dvec3 "github.com/flywave/go3d/float64/vec3"

	"github.com/Faultbox/relive/internal/engine/scene"
	"github.com/Faultbox/relive/pkg/math"
	"github.com/Faultbox/relive/pkg/mesh"
)

// ErrEmpty is returned for descriptors without any vertex.
var ErrEmpty = errors.New("mesh has no geometry")

// Options controls the target extents.
type Options struct {
	ObjectSize     float32   // largest dimension in object mode
	PanoramaSize   float32   // largest dimension in panorama mode
	PanoramaOffset math.Vec3 // enclosure position relative to the camera
}

// DefaultOptions returns the stock viewing geometry.
func DefaultOptions() Options {
	return Options{
		ObjectSize:     2,
		PanoramaSize:   2000,
		PanoramaOffset: math.Vec3{X: 100, Y: 120, Z: 80},
	}
}

// Bounds is the axis-aligned box of every part of desc.
func Bounds(desc *mesh.Descriptor) dvec3.Box {
	box := dvec3.MinBox
	for _, p := range desc.Parts {
		if p == nil || p.Geometry == nil {
			continue
		}
		pos := p.Geometry.Positions
		for i := 0; i+2 < len(pos); i += 3 {
			box.Extend(&dvec3.T{float64(pos[i]), float64(pos[i+1]), float64(pos[i+2])})
		}
	}
	return box
}

// Normalize returns a detached, not yet uploaded node holding a transformed
// copy of desc. desc itself is left untouched.
func Normalize(desc *mesh.Descriptor, mode scene.Mode, opts Options) (*scene.Node, error) {
	if desc == nil {
		return nil, ErrEmpty
	}
	box := Bounds(desc)
	if box.Min[0] > box.Max[0] {
		return nil, ErrEmpty
	}

	size := dvec3.T{box.Max[0] - box.Min[0], box.Max[1] - box.Min[1], box.Max[2] - box.Min[2]}
	center := dvec3.T{
		(box.Min[0] + box.Max[0]) / 2,
		(box.Min[1] + box.Max[1]) / 2,
		(box.Min[2] + box.Max[2]) / 2,
	}
	maxDim := gomath.Max(size[0], gomath.Max(size[1], size[2]))

	target := opts.ObjectSize
	if mode == scene.ModePanorama {
		target = opts.PanoramaSize
	}
	scale := 1.0
	if maxDim > 0 && target > 0 {
		scale = float64(target) / maxDim
	}

	node := scene.NewNode(nodeName(desc))
	node.Transform.Scale = float32(scale)

	switch mode {
	case scene.ModePanorama:
		node.Transform.Position = opts.PanoramaOffset
		node.Transform.Rotation = math.Vec3{Y: gomath.Pi}
	case scene.ModeObject:
		node.Transform.Position = math.Vec3{
			X: float32(-center[0] * scale),
			Y: float32(-center[1] * scale),
			Z: float32(-center[2] * scale),
		}
	default:
		return nil, fmt.Errorf("normalize: unsupported mode %v", mode)
	}

	for i, p := range desc.Parts {
		if p == nil || p.Geometry == nil || p.Geometry.VertexCount() == 0 {
			continue
		}
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("part%d", i)
		}
		geom, mat := partFor(p, mode)
		node.AddPart(name, geom, mat)
	}
	return node, nil
}

// partFor copies one part's geometry and material and rewrites them for mode.
func partFor(p *mesh.Part, mode scene.Mode) (*mesh.Geometry, *mesh.Material) {
	var mat *mesh.Material
	if p.Material == nil || p.NeedsDefaultMaterial {
		mat = mesh.DefaultMaterial()
	} else {
		mat = p.Material.Clone()
	}

	if mode != scene.ModePanorama {
		return p.Geometry.Clone(), mat
	}

	// The viewer sits inside the shell: mirror Y, split shared vertices so
	// each triangle's normal can be inverted independently, and draw the
	// inner faces.
	geom := p.Geometry.NonIndexed()
	geom.ScaleAxes(1, -1, 1)
	geom.ComputeFlatNormals()
	geom.FlipNormals()
	mat.Side = mesh.SideBack
	return geom, mat
}

func nodeName(desc *mesh.Descriptor) string {
	if desc.Source != "" {
		return desc.Source
	}
	return "mesh"
}
