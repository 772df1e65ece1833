// Package mesh defines the in-memory mesh descriptor produced by the asset
// loader and consumed by normalization, plus decoders for the OBJ/MTL formats.
package mesh

import (
	"github.com/Faultbox/relive/pkg/math"
)

// Descriptor is a parsed mesh document prior to scene attachment.
type Descriptor struct {
	Source      string  // URL or path the document was loaded from
	MaterialLib string  // mtllib reference, relative to Source
	Parts       []*Part // one per material group
}

// Part is a sub-mesh: one geometry buffer and an optional material.
type Part struct {
	Name         string
	MaterialName string // usemtl name, empty when the faces had none
	Geometry     *Geometry
	Material     *Material

	// NeedsDefaultMaterial is set when no material could be resolved;
	// normalization assigns DefaultMaterial to these parts.
	NeedsDefaultMaterial bool
}

// Bounds returns the bounding box over all parts.
func (d *Descriptor) Bounds() math.Box3 {
	box := math.EmptyBox3()
	for _, p := range d.Parts {
		p.Geometry.extendBounds(&box)
	}
	return box
}

// TriangleCount returns the total number of triangles.
func (d *Descriptor) TriangleCount() int {
	n := 0
	for _, p := range d.Parts {
		n += p.Geometry.TriangleCount()
	}
	return n
}

// Clone returns a deep copy. Decoded textures are shared since they are
// never mutated after loading.
func (d *Descriptor) Clone() *Descriptor {
	out := &Descriptor{
		Source:      d.Source,
		MaterialLib: d.MaterialLib,
		Parts:       make([]*Part, len(d.Parts)),
	}
	for i, p := range d.Parts {
		cp := *p
		cp.Geometry = p.Geometry.Clone()
		if p.Material != nil {
			cp.Material = p.Material.Clone()
		}
		out.Parts[i] = &cp
	}
	return out
}
