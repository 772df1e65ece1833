package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/relive/internal/engine/gpu"
	"github.com/Faultbox/relive/pkg/mesh"
)

type glGeometry struct {
	vao, vbo, ebo uint32
	count         int32
	indexed       bool
	mode          uint32
}

// CreateGeometry uploads g as interleaved position/normal/texcoord vertices.
func (r *Renderer) CreateGeometry(g *mesh.Geometry, prim gpu.Primitive) (gpu.Geometry, error) {
	if r.released {
		return 0, gpu.ErrReleased
	}
	if g == nil || g.VertexCount() == 0 {
		return 0, fmt.Errorf("create geometry: no vertices")
	}

	vertices := gpu.Interleave(g)
	geo := &glGeometry{mode: gl.TRIANGLES}
	if prim == gpu.Lines {
		geo.mode = gl.LINES
	}

	gl.GenVertexArrays(1, &geo.vao)
	gl.BindVertexArray(geo.vao)

	gl.GenBuffers(1, &geo.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, geo.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	if g.Indexed() && len(g.Indices) > 0 {
		gl.GenBuffers(1, &geo.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, geo.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, unsafe.Pointer(&g.Indices[0]), gl.STATIC_DRAW)
		geo.indexed = true
		geo.count = int32(len(g.Indices))
	} else {
		geo.count = int32(g.VertexCount())
	}

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, gpu.VertexStride, gpu.OffsetPosition)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, gpu.VertexStride, gpu.OffsetNormal)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, gpu.VertexStride, gpu.OffsetTexCoord)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.next++
	h := gpu.Geometry(r.next)
	r.geometries[h] = geo
	return h, nil
}

// CreateTexture uploads img with mipmaps and repeat wrapping.
func (r *Renderer) CreateTexture(img *image.RGBA) (gpu.Texture, error) {
	if r.released {
		return 0, gpu.ErrReleased
	}
	b := img.Bounds()
	if b.Empty() {
		return 0, fmt.Errorf("create texture: empty image")
	}
	if img.Stride != b.Dx()*4 {
		img = compact(img)
	}

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(b.Dx()), int32(b.Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	r.next++
	h := gpu.Texture(r.next)
	r.textures[h] = texID
	return h, nil
}

// ReleaseGeometry frees a geometry. Unknown handles are logged and ignored.
func (r *Renderer) ReleaseGeometry(h gpu.Geometry) {
	geo, ok := r.geometries[h]
	if !ok {
		r.log.Warn("release of unknown geometry")
		return
	}
	deleteGeometry(geo)
	delete(r.geometries, h)
}

// ReleaseTexture frees a texture. Unknown handles are logged and ignored.
func (r *Renderer) ReleaseTexture(h gpu.Texture) {
	id, ok := r.textures[h]
	if !ok {
		r.log.Warn("release of unknown texture")
		return
	}
	gl.DeleteTextures(1, &id)
	delete(r.textures, h)
}

func deleteGeometry(geo *glGeometry) {
	if geo.vao != 0 {
		gl.DeleteVertexArrays(1, &geo.vao)
	}
	if geo.vbo != 0 {
		gl.DeleteBuffers(1, &geo.vbo)
	}
	if geo.ebo != 0 {
		gl.DeleteBuffers(1, &geo.ebo)
	}
}

// compact copies img into a tightly packed RGBA image.
func compact(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		copy(out.Pix[y*out.Stride:(y+1)*out.Stride], src[:b.Dx()*4])
	}
	return out
}
