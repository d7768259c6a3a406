// Package renderer draws bound meshes with their material textures.
package renderer

import (
	"fmt"
	"strconv"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/glprojects/internal/engine/gpu"
	"github.com/Faultbox/glprojects/internal/logger"
	"github.com/Faultbox/glprojects/pkg/mesh"
)

// MaterialPrefix is the struct name texture samplers are declared under.
const MaterialPrefix = "material."

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [4]float32
}

// InitGL loads the GL function pointers and sets the default pipeline state.
// Must be called after the OpenGL context is created.
func InitGL(cfg Config) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return nil
}

// Resize updates the viewport.
func Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("viewport resized", zap.Int("width", width), zap.Int("height", height))
}

// Begin clears the color and depth buffers.
func Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// ReadPixels reads the back buffer as bottom-up RGBA rows.
func ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

// UniformNames returns the sampler uniform for each texture in order. Numbering
// is per kind and starts at 1, so [diffuse, specular, diffuse] maps to
// material.texture_diffuse1, material.texture_specular1, material.texture_diffuse2.
func UniformNames(textures []gpu.BoundTexture) []string {
	counters := make(map[mesh.TextureKind]int, len(mesh.Kinds))
	names := make([]string, len(textures))
	for i, tex := range textures {
		counters[tex.Kind]++
		names[i] = MaterialPrefix + string(tex.Kind) + strconv.Itoa(counters[tex.Kind])
	}
	return names
}

// Renderer issues draw calls for bindings.
type Renderer struct {
	dev gpu.Device

	drawCalls int
	triangles int
}

// New creates a renderer over dev.
func New(dev gpu.Device) *Renderer {
	return &Renderer{dev: dev}
}

// Draw renders each binding with program, which must already be in use. The
// n-th texture of a binding goes to texture unit n.
func (r *Renderer) Draw(program uint32, bindings []*gpu.Binding) {
	for _, b := range bindings {
		r.DrawBinding(program, b)
	}
}

// DrawBinding renders one binding.
func (r *Renderer) DrawBinding(program uint32, b *gpu.Binding) {
	names := UniformNames(b.Textures)
	for i, tex := range b.Textures {
		r.dev.ActiveTexture(gl.TEXTURE0 + uint32(i))
		r.dev.Uniform1i(r.dev.UniformLocation(program, names[i]), int32(i))
		r.dev.BindTexture(gl.TEXTURE_2D, tex.Handle)
	}

	r.dev.BindVertexArray(b.VAO)
	r.dev.DrawElements(gl.TRIANGLES, b.IndexCount, gl.UNSIGNED_INT, 0)
	r.dev.BindVertexArray(0)

	if len(b.Textures) > 0 {
		r.dev.ActiveTexture(gl.TEXTURE0)
	}
	r.drawCalls++
	r.triangles += int(b.IndexCount) / 3
}

// FrameStats returns draw calls and triangles since the last call, then resets them.
func (r *Renderer) FrameStats() (drawCalls, triangles int) {
	drawCalls, triangles = r.drawCalls, r.triangles
	r.drawCalls, r.triangles = 0, 0
	return drawCalls, triangles
}
