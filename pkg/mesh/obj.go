package mesh

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	gobj "github.com/flywave/go-obj"
)

// OBJ decoding errors.
var (
	ErrMalformedOBJ = errors.New("malformed OBJ document")
	ErrNoGeometry   = errors.New("OBJ document has no faces")
)

// cornerKey identifies a unique (position, uv, normal) combination.
type cornerKey struct {
	v, vt, vn int
}

// partBuilder accumulates indexed geometry for one material group.
type partBuilder struct {
	part        *Part
	lookup      map[cornerKey]uint32
	missingNorm bool
}

// DecodeOBJ parses a Wavefront OBJ document. Faces are fan-triangulated and
// grouped into one Part per usemtl name, with shared corners deduplicated
// into an index buffer. Materials are not resolved here; every part starts
// with NeedsDefaultMaterial set until a material library assigns one.
func DecodeOBJ(r io.Reader) (*Descriptor, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOBJ, err)
	}

	reader := &gobj.ObjReader{}
	if err := reader.Read(bytes.NewReader(resolveRelative(src))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOBJ, err)
	}

	desc := &Descriptor{MaterialLib: reader.MTL}
	builders := make(map[string]*partBuilder)

	for _, face := range reader.F {
		if len(face.Corners) < 3 {
			continue
		}

		b, ok := builders[face.Material]
		if !ok {
			name := face.Material
			if name == "" {
				name = "default"
			}
			b = &partBuilder{
				part: &Part{
					Name:                 name,
					MaterialName:         face.Material,
					Geometry:             &Geometry{Indices: []uint32{}},
					NeedsDefaultMaterial: true,
				},
				lookup: make(map[cornerKey]uint32),
			}
			builders[face.Material] = b
			desc.Parts = append(desc.Parts, b.part)
		}

		for i := 1; i+1 < len(face.Corners); i++ {
			for _, k := range [3]int{0, i, i + 1} {
				fc := face.Corners[k]
				idx, err := b.corner(reader, fc.VertexIndex, fc.TexcoordIndex, fc.NormalIndex)
				if err != nil {
					return nil, err
				}
				b.part.Geometry.Indices = append(b.part.Geometry.Indices, idx)
			}
		}
	}

	if len(desc.Parts) == 0 {
		return nil, ErrNoGeometry
	}

	for _, b := range builders {
		g := b.part.Geometry
		if b.missingNorm {
			g.ComputeVertexNormals()
		}
	}

	return desc, nil
}

// corner returns the index of the vertex for the zero-based position, uv and
// normal indices, appending it when new.
func (b *partBuilder) corner(reader *gobj.ObjReader, v, vt, vn int) (uint32, error) {
	if v < 0 || v >= len(reader.V) {
		return 0, fmt.Errorf("%w: vertex index %d out of range", ErrMalformedOBJ, v)
	}

	key := cornerKey{v, vt, vn}
	if idx, ok := b.lookup[key]; ok {
		return idx, nil
	}

	g := b.part.Geometry
	idx := uint32(g.VertexCount())
	b.lookup[key] = idx

	p := reader.V[v]
	g.Positions = append(g.Positions, p[0], p[1], p[2])

	if vn >= 0 && vn < len(reader.VN) {
		n := reader.VN[vn]
		g.Normals = append(g.Normals, n[0], n[1], n[2])
	} else {
		g.Normals = append(g.Normals, 0, 1, 0)
		b.missingNorm = true
	}

	if vt >= 0 && vt < len(reader.VT) {
		t := reader.VT[vt]
		g.UVs = append(g.UVs, t[0], t[1])
	} else {
		g.UVs = append(g.UVs, 0, 0)
	}

	return idx, nil
}

// resolveRelative rewrites negative face indices, which count back from the
// most recent v, vt or vn line, into absolute ones. The parser only accepts
// positive indices. Out-of-range results are left for the range checks.
func resolveRelative(src []byte) []byte {
	if !bytes.Contains(src, []byte("-")) {
		return src
	}

	lines := bytes.Split(src, []byte("\n"))
	var counts [3]int // v, vt, vn
	changed := false
	for li, line := range lines {
		fields := strings.Fields(string(line))
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "v":
			counts[0]++
			continue
		case "vt":
			counts[1]++
			continue
		case "vn":
			counts[2]++
			continue
		case "f":
		default:
			continue
		}
		if !bytes.Contains(line, []byte("-")) {
			continue
		}

		for fi := 1; fi < len(fields); fi++ {
			parts := strings.Split(fields[fi], "/")
			for k, part := range parts {
				if k > 2 || !strings.HasPrefix(part, "-") {
					continue
				}
				n, err := strconv.Atoi(part)
				if err != nil {
					continue
				}
				parts[k] = strconv.Itoa(counts[k] + n + 1)
			}
			fields[fi] = strings.Join(parts, "/")
		}
		lines[li] = []byte(strings.Join(fields, " "))
		changed = true
	}
	if !changed {
		return src
	}
	return bytes.Join(lines, []byte("\n"))
}
