// Package renderer implements gpu.Surface and gpu.Device on OpenGL 4.1.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/relive/internal/engine/debug"
	"github.com/Faultbox/relive/internal/engine/gpu"
	"github.com/Faultbox/relive/internal/engine/lighting"
	"github.com/Faultbox/relive/internal/engine/shader"
	"github.com/Faultbox/relive/internal/engine/shadow"
	"github.com/Faultbox/relive/pkg/math"
	"github.com/Faultbox/relive/pkg/mesh"
)

// Config holds renderer configuration.
type Config struct {
	Width   int
	Height  int
	Shadows bool
}

// Renderer draws gpu.Frames to the current GL framebuffer.
type Renderer struct {
	width, height int
	log           *zap.Logger

	program *shader.Program
	depth   *shader.Program
	shadows *shadow.Map

	next       uint32
	geometries map[gpu.Geometry]*glGeometry
	textures   map[gpu.Texture]uint32
	released   bool
}

// New creates a renderer.
// IMPORTANT: Must be called AFTER the OpenGL context is created and current.
func New(cfg Config, log *zap.Logger) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	r := &Renderer{
		width:      cfg.Width,
		height:     cfg.Height,
		log:        log,
		geometries: make(map[gpu.Geometry]*glGeometry),
		textures:   make(map[gpu.Texture]uint32),
	}

	var err error
	if r.program, err = shader.NewProgram(meshVertexShader, meshFragmentShader); err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}

	if cfg.Shadows {
		if r.depth, err = shader.NewProgram(depthVertexShader, depthFragmentShader); err != nil {
			r.program.Delete()
			return nil, fmt.Errorf("depth shader: %w", err)
		}
		if r.shadows, err = shadow.NewMap(shadow.DefaultResolution); err != nil {
			// Shadows are optional; render without them.
			log.Warn("shadow map unavailable", zap.Error(err))
			r.depth.Delete()
			r.depth = nil
		}
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Viewport(0, 0, int32(r.width), int32(r.height))

	return r, nil
}

// Device returns the renderer itself; it allocates its own resources.
func (r *Renderer) Device() gpu.Device { return r }

// Size returns the drawable size in pixels.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.width = width
	r.height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Draw renders one frame. Opaque items are drawn before transparent ones.
func (r *Renderer) Draw(f *gpu.Frame) error {
	if r.released {
		return gpu.ErrReleased
	}

	ambient, dirs := lighting.Split(f.Lights)
	lightSpace := math.Identity()
	shadowLight := -1
	if r.shadows != nil {
		for i, l := range dirs {
			if l.CastShadow {
				shadowLight = i
				lightSpace = shadow.LightMatrix(l.Direction, f.Bounds)
				r.depthPass(f, lightSpace)
				break
			}
		}
	}

	gl.Viewport(0, 0, int32(r.width), int32(r.height))
	gl.ClearColor(f.Clear[0], f.Clear[1], f.Clear[2], 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	p := r.program
	p.Use()
	gl.UniformMatrix4fv(p.Uniform("uProjection"), 1, false, f.Projection.Ptr())
	gl.UniformMatrix4fv(p.Uniform("uView"), 1, false, f.View.Ptr())
	gl.UniformMatrix4fv(p.Uniform("uLightSpace"), 1, false, lightSpace.Ptr())
	gl.Uniform3f(p.Uniform("uEye"), f.Eye.X, f.Eye.Y, f.Eye.Z)
	gl.Uniform3f(p.Uniform("uAmbient"), ambient[0], ambient[1], ambient[2])
	gl.Uniform1i(p.Uniform("uLightCount"), int32(len(dirs)))
	for i, l := range dirs {
		c := l.Radiance()
		gl.Uniform3f(p.Uniform(fmt.Sprintf("uLightDir[%d]", i)), l.Direction.X, l.Direction.Y, l.Direction.Z)
		gl.Uniform3f(p.Uniform(fmt.Sprintf("uLightColor[%d]", i)), c[0], c[1], c[2])
	}
	gl.Uniform1i(p.Uniform("uShadowLight"), int32(shadowLight))
	gl.Uniform1i(p.Uniform("uTexture"), 0)
	gl.Uniform1i(p.Uniform("uShadowMap"), 1)
	if r.shadows != nil {
		r.shadows.BindTexture(gl.TEXTURE1)
	}

	for _, transparent := range []bool{false, true} {
		gl.DepthMask(!transparent)
		for i := range f.Items {
			it := &f.Items[i]
			if (it.Material.Opacity < 1) != transparent {
				continue
			}
			if err := r.drawItem(it, shadowLight >= 0); err != nil {
				gl.DepthMask(true)
				return err
			}
		}
	}
	gl.DepthMask(true)
	gl.BindVertexArray(0)
	return nil
}

func (r *Renderer) drawItem(it *gpu.DrawItem, shadowed bool) error {
	geo, ok := r.geometries[it.Geometry]
	if !ok {
		return fmt.Errorf("draw %q: unknown geometry %d", it.Name, it.Geometry)
	}
	p := r.program
	m := it.Material

	gl.UniformMatrix4fv(p.Uniform("uModel"), 1, false, it.Model.Ptr())
	gl.Uniform3f(p.Uniform("uColor"), m.Color[0], m.Color[1], m.Color[2])
	gl.Uniform1f(p.Uniform("uOpacity"), m.Opacity)
	gl.Uniform1f(p.Uniform("uRoughness"), m.Roughness)
	gl.Uniform1f(p.Uniform("uMetalness"), m.Metalness)
	gl.Uniform1i(p.Uniform("uUnlit"), boolInt(it.Primitive == gpu.Lines))
	gl.Uniform1i(p.Uniform("uReceiveShadow"), boolInt(shadowed && it.ReceiveShadow))

	gl.ActiveTexture(gl.TEXTURE0)
	if tex, ok := r.textures[m.Texture]; ok {
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.Uniform1i(p.Uniform("uUseTexture"), 1)
	} else {
		gl.BindTexture(gl.TEXTURE_2D, 0)
		gl.Uniform1i(p.Uniform("uUseTexture"), 0)
	}

	switch m.Side {
	case mesh.SideBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	case mesh.SideDouble:
		gl.Disable(gl.CULL_FACE)
	default:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}

	geo.draw()
	return nil
}

func (r *Renderer) depthPass(f *gpu.Frame, lightSpace math.Mat4) {
	r.shadows.Bind()
	r.depth.Use()
	gl.UniformMatrix4fv(r.depth.Uniform("uLightSpace"), 1, false, lightSpace.Ptr())
	for i := range f.Items {
		it := &f.Items[i]
		if !it.CastShadow || it.Primitive != gpu.Triangles {
			continue
		}
		geo, ok := r.geometries[it.Geometry]
		if !ok {
			continue
		}
		gl.UniformMatrix4fv(r.depth.Uniform("uModel"), 1, false, it.Model.Ptr())
		geo.draw()
	}
	r.shadows.Unbind()
}

func (geo *glGeometry) draw() {
	gl.BindVertexArray(geo.vao)
	if geo.indexed {
		gl.DrawElements(geo.mode, geo.count, gl.UNSIGNED_INT, gl.PtrOffset(0))
	} else {
		gl.DrawArrays(geo.mode, 0, geo.count)
	}
}

// ReadPixels reads back the default framebuffer as a top-down image.
func (r *Renderer) ReadPixels() (*image.RGBA, error) {
	if r.released {
		return nil, gpu.ErrReleased
	}
	if r.width <= 0 || r.height <= 0 {
		return nil, fmt.Errorf("read pixels: empty surface %dx%d", r.width, r.height)
	}
	pixels := make([]byte, r.width*r.height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(r.width), int32(r.height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return debug.FlipPixels(pixels, r.width, r.height)
}

// Release frees every remaining GPU resource. Leftover handles indicate a
// caller that did not release its nodes and are logged.
func (r *Renderer) Release() {
	if r.released {
		return
	}
	r.released = true

	if n := len(r.geometries) + len(r.textures); n > 0 {
		r.log.Warn("releasing leaked GPU resources", zap.Int("count", n))
	}
	for h, geo := range r.geometries {
		deleteGeometry(geo)
		delete(r.geometries, h)
	}
	for h, id := range r.textures {
		gl.DeleteTextures(1, &id)
		delete(r.textures, h)
	}
	if r.shadows != nil {
		r.shadows.Destroy()
	}
	if r.depth != nil {
		r.depth.Delete()
	}
	r.program.Delete()
	r.log.Info("renderer released")
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
