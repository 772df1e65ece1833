package normalize

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/relive/internal/engine/scene"
	"github.com/Faultbox/relive/pkg/math"
	"github.com/Faultbox/relive/pkg/mesh"
)

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-3
}

// quad spans x in [2,6], y in [0,2], z = -1, two indexed triangles facing +Z.
func quad() *mesh.Geometry {
	return &mesh.Geometry{
		Positions: []float32{2, 0, -1, 6, 0, -1, 6, 2, -1, 2, 2, -1},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		UVs:       []float32{0, 0, 1, 0, 1, 1, 0, 1},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

func descriptor() *mesh.Descriptor {
	red := mesh.DefaultMaterial()
	red.Name = "red"
	red.Color = [3]float32{1, 0, 0}
	red.Roughness = 0.2
	return &mesh.Descriptor{
		Source: "room.obj",
		Parts: []*mesh.Part{
			{Name: "walls", Geometry: quad(), Material: red},
			{Name: "bare", Geometry: quad(), NeedsDefaultMaterial: true},
		},
	}
}

func TestObjectMode(t *testing.T) {
	desc := descriptor()
	node, err := Normalize(desc, scene.ModeObject, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	// Largest dimension is 4 (x), target 2.
	if !near(node.Transform.Scale, 0.5) {
		t.Errorf("scale = %v, want 0.5", node.Transform.Scale)
	}
	wb := node.WorldBounds()
	if c := wb.Center(); !near(c.X, 0) || !near(c.Y, 0) || !near(c.Z, 0) {
		t.Errorf("world center = %+v, want origin", c)
	}
	if !near(wb.MaxDim(), 2) {
		t.Errorf("world max dim = %v, want 2", wb.MaxDim())
	}
	if node.Transform.Rotation != (math.Vec3{}) {
		t.Errorf("object mode should not rotate, got %+v", node.Transform.Rotation)
	}

	walls := node.Parts[0]
	if !walls.Geometry.Indexed() {
		t.Error("object mode should keep indexing")
	}
	if walls.Material.Side != mesh.SideFront || walls.Material.Color != [3]float32{1, 0, 0} {
		t.Errorf("existing material changed: %+v", walls.Material)
	}
	if walls.Geometry.Normals[2] != 1 {
		t.Error("object mode should keep normals")
	}
}

func TestPanoramaMode(t *testing.T) {
	opts := DefaultOptions()
	node, err := Normalize(descriptor(), scene.ModePanorama, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !near(node.Transform.Scale, 500) {
		t.Errorf("scale = %v, want 500", node.Transform.Scale)
	}
	if node.Transform.Position != opts.PanoramaOffset {
		t.Errorf("position = %+v", node.Transform.Position)
	}
	if !near(node.Transform.Rotation.Y, gomath.Pi) {
		t.Errorf("yaw = %v, want π", node.Transform.Rotation.Y)
	}

	for _, p := range node.Parts {
		g := p.Geometry
		if g.Indexed() || g.VertexCount() != 6 {
			t.Errorf("%s: want 6 de-indexed vertices, got %d (indexed=%v)", p.Name, g.VertexCount(), g.Indexed())
		}
		if p.Material.Side != mesh.SideBack {
			t.Errorf("%s: side = %v", p.Name, p.Material.Side)
		}
		for i := 1; i < len(g.Positions); i += 3 {
			if g.Positions[i] > 0 {
				t.Fatalf("%s: y not mirrored: %v", p.Name, g.Positions[i])
			}
		}
		// Mirroring reverses the winding, so the recomputed face normal is
		// -Z; inverting it points back to +Z.
		for i := 0; i+2 < len(g.Normals); i += 3 {
			if !near(g.Normals[i+2], 1) {
				t.Fatalf("%s: normal %v", p.Name, g.Normals[i:i+3])
			}
		}
	}
}

func TestDefaultMaterialAssigned(t *testing.T) {
	for _, mode := range []scene.Mode{scene.ModeObject, scene.ModePanorama} {
		node, err := Normalize(descriptor(), mode, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		bare := node.Parts[1].Material
		if bare == nil {
			t.Fatalf("%v: no material assigned", mode)
		}
		if bare.Roughness != 0.5 || bare.Metalness != 0 || bare.Color != [3]float32{1, 1, 1} {
			t.Errorf("%v: default material = %+v", mode, bare)
		}
		if node.Parts[0].Material.Roughness != 0.2 {
			t.Errorf("%v: existing material discarded", mode)
		}
	}
}

func TestInputUntouched(t *testing.T) {
	desc := descriptor()
	before := desc.Clone()
	if _, err := Normalize(desc, scene.ModePanorama, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	for i, p := range desc.Parts {
		b := before.Parts[i]
		if len(p.Geometry.Positions) != len(b.Geometry.Positions) || !p.Geometry.Indexed() {
			t.Fatalf("part %d geometry was replaced", i)
		}
		for j := range p.Geometry.Positions {
			if p.Geometry.Positions[j] != b.Geometry.Positions[j] {
				t.Fatalf("part %d position %d mutated", i, j)
			}
		}
	}
	if desc.Parts[0].Material.Side != mesh.SideFront {
		t.Error("source material mutated")
	}
	if desc.Parts[1].Material != nil {
		t.Error("source part gained a material")
	}
}

func TestDetachedAndNotUploaded(t *testing.T) {
	node, err := Normalize(descriptor(), scene.ModeObject, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if node.Uploaded() {
		t.Error("normalized node should not be uploaded")
	}
}

func TestDegenerate(t *testing.T) {
	point := &mesh.Descriptor{Parts: []*mesh.Part{{
		Name:     "p",
		Geometry: &mesh.Geometry{Positions: []float32{3, 3, 3, 3, 3, 3, 3, 3, 3}},
	}}}
	node, err := Normalize(point, scene.ModeObject, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if node.Transform.Scale != 1 {
		t.Errorf("degenerate scale = %v, want 1", node.Transform.Scale)
	}

	tests := []struct {
		name string
		desc *mesh.Descriptor
	}{
		{"nil", nil},
		{"no parts", &mesh.Descriptor{}},
		{"empty geometry", &mesh.Descriptor{Parts: []*mesh.Part{{Geometry: &mesh.Geometry{}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Normalize(tt.desc, scene.ModeObject, DefaultOptions()); !errors.Is(err, ErrEmpty) {
				t.Errorf("err = %v, want ErrEmpty", err)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	b := Bounds(descriptor())
	if b.Min[0] != 2 || b.Max[0] != 6 || b.Min[1] != 0 || b.Max[1] != 2 || b.Min[2] != -1 || b.Max[2] != -1 {
		t.Errorf("bounds = %+v", b)
	}
}
