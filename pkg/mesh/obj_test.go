package mesh

import (
	"errors"
	"strings"
	"testing"
)

const cubeFaceOBJ = `# two materials, one quad each
mtllib room.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl wall
f 1/1/1 2/2/1 3/3/1 4/4/1
usemtl floor
f 1/1/1 2/2/1 6/3/1
f 1/1/1 6/3/1 5/4/1
`

func TestDecodeOBJ_Groups(t *testing.T) {
	desc, err := DecodeOBJ(strings.NewReader(cubeFaceOBJ))
	if err != nil {
		t.Fatalf("DecodeOBJ: %v", err)
	}

	if desc.MaterialLib != "room.mtl" {
		t.Errorf("expected mtllib 'room.mtl', got %q", desc.MaterialLib)
	}
	if len(desc.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(desc.Parts))
	}

	wall := desc.Parts[0]
	if wall.MaterialName != "wall" {
		t.Errorf("expected first part 'wall', got %q", wall.MaterialName)
	}
	// Quad is fan-triangulated into two triangles over four shared corners
	if got := wall.Geometry.TriangleCount(); got != 2 {
		t.Errorf("wall: expected 2 triangles, got %d", got)
	}
	if got := wall.Geometry.VertexCount(); got != 4 {
		t.Errorf("wall: expected 4 deduplicated vertices, got %d", got)
	}
	if !wall.NeedsDefaultMaterial {
		t.Error("parts should be flagged for default material until MTL resolves them")
	}

	if got := desc.TriangleCount(); got != 4 {
		t.Errorf("expected 4 triangles total, got %d", got)
	}
}

func TestDecodeOBJ_Bounds(t *testing.T) {
	desc, err := DecodeOBJ(strings.NewReader(cubeFaceOBJ))
	if err != nil {
		t.Fatalf("DecodeOBJ: %v", err)
	}

	b := desc.Bounds()
	if b.Min.X != 0 || b.Min.Y != 0 || b.Min.Z != 0 {
		t.Errorf("unexpected min %v", b.Min)
	}
	if b.Max.X != 1 || b.Max.Y != 1 || b.Max.Z != 1 {
		t.Errorf("unexpected max %v", b.Max)
	}
}

func TestDecodeOBJ_MissingNormals(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	desc, err := DecodeOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeOBJ: %v", err)
	}

	g := desc.Parts[0].Geometry
	if len(g.Normals) != 9 {
		t.Fatalf("expected 9 normal components, got %d", len(g.Normals))
	}
	// Counter-clockwise in the XY plane faces +Z
	if g.Normals[2] < 0.99 {
		t.Errorf("expected +Z normal, got (%v, %v, %v)", g.Normals[0], g.Normals[1], g.Normals[2])
	}
	if desc.Parts[0].Name != "default" {
		t.Errorf("expected unnamed group to be 'default', got %q", desc.Parts[0].Name)
	}
}

func TestDecodeOBJ_CornerAttributes(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0.25 0.5
vt 0.75 0.5
vt 0.5 1
vn 0 0 1
vn 0 1 0
f 1/3/2 2/2/1 3/1/1
`
	desc, err := DecodeOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeOBJ: %v", err)
	}

	g := desc.Parts[0].Geometry
	wantUVs := []float32{0.5, 1, 0.75, 0.5, 0.25, 0.5}
	wantNormals := []float32{0, 1, 0, 0, 0, 1, 0, 0, 1}
	if len(g.UVs) != len(wantUVs) || len(g.Normals) != len(wantNormals) {
		t.Fatalf("expected %d uv and %d normal components, got %d and %d",
			len(wantUVs), len(wantNormals), len(g.UVs), len(g.Normals))
	}
	for i, want := range wantUVs {
		if g.UVs[i] != want {
			t.Errorf("uv[%d]: expected %v, got %v", i, want, g.UVs[i])
		}
	}
	for i, want := range wantNormals {
		if g.Normals[i] != want {
			t.Errorf("normal[%d]: expected %v, got %v", i, want, g.Normals[i])
		}
	}
}

func TestDecodeOBJ_RelativeIndices(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"vertex only", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"},
		{"with uv and normal", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvn 0 0 1\nf -3/-1/-1 -2/1/-1 -1/-1/1\n"},
		{"normal only", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf -3//-1 -2//-1 -1//-1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := DecodeOBJ(strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("DecodeOBJ: %v", err)
			}
			g := desc.Parts[0].Geometry
			want := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
			if len(g.Positions) != len(want) {
				t.Fatalf("expected %d position components, got %d", len(want), len(g.Positions))
			}
			for i := range want {
				if g.Positions[i] != want[i] {
					t.Fatalf("positions: expected %v, got %v", want, g.Positions)
				}
			}
			if g.Normals[2] < 0.99 {
				t.Errorf("expected +Z normal, got (%v, %v, %v)", g.Normals[0], g.Normals[1], g.Normals[2])
			}
		})
	}
}

func TestDecodeOBJ_RelativeIndexOutOfRange(t *testing.T) {
	_, err := DecodeOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nf -4 -2 -1\n"))
	if !errors.Is(err, ErrMalformedOBJ) {
		t.Errorf("expected ErrMalformedOBJ, got %v", err)
	}
}

func TestDecodeOBJ_NoFaces(t *testing.T) {
	_, err := DecodeOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\n"))
	if !errors.Is(err, ErrNoGeometry) {
		t.Errorf("expected ErrNoGeometry, got %v", err)
	}
}

func TestGeometry_NonIndexed(t *testing.T) {
	g := &Geometry{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		UVs:       []float32{0, 0, 1, 0, 0, 1, 1, 1},
		Indices:   []uint32{0, 1, 2, 2, 1, 3},
	}

	flat := g.NonIndexed()
	if flat.Indexed() {
		t.Fatal("NonIndexed result should have no index buffer")
	}
	if got := flat.VertexCount(); got != 6 {
		t.Errorf("expected 6 vertices, got %d", got)
	}
	if got := flat.TriangleCount(); got != 2 {
		t.Errorf("expected 2 triangles, got %d", got)
	}
	if len(flat.UVs) != 12 {
		t.Errorf("expected 12 uv components, got %d", len(flat.UVs))
	}
	// Fourth expanded vertex is original vertex 2
	if flat.Positions[9] != 0 || flat.Positions[10] != 1 {
		t.Errorf("unexpected expanded position (%v, %v)", flat.Positions[9], flat.Positions[10])
	}
	// Source untouched
	if !g.Indexed() || g.VertexCount() != 4 {
		t.Error("NonIndexed must not modify the source geometry")
	}
}

func TestGeometry_ScaleAxesMirrorsNormals(t *testing.T) {
	g := &Geometry{
		Positions: []float32{1, 2, 3},
		Normals:   []float32{0, 1, 0},
	}
	g.ScaleAxes(1, -1, 1)

	if g.Positions[1] != -2 {
		t.Errorf("expected mirrored Y -2, got %v", g.Positions[1])
	}
	if g.Normals[1] != -1 {
		t.Errorf("expected mirrored normal -1, got %v", g.Normals[1])
	}
}

func TestGeometry_ReverseWinding(t *testing.T) {
	g := &Geometry{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
	}
	g.ComputeFlatNormals()
	if g.Normals[2] <= 0 {
		t.Fatalf("expected +Z before reversing, got %v", g.Normals[2])
	}

	g.ReverseWinding()
	g.ComputeFlatNormals()
	if g.Normals[2] >= 0 {
		t.Errorf("expected -Z after reversing, got %v", g.Normals[2])
	}
}

func TestDefaultMaterial(t *testing.T) {
	m := DefaultMaterial()
	if m.Metalness != 0 {
		t.Errorf("default material should be non-metallic, got %v", m.Metalness)
	}
	if m.Roughness != 0.5 {
		t.Errorf("default material roughness should be 0.5, got %v", m.Roughness)
	}
	if m.Side != SideFront {
		t.Errorf("default material should render front faces, got %s", m.Side)
	}
	if m.Transparent() {
		t.Error("default material should be opaque")
	}
}
