package app

import (
	"go.uber.org/zap"

	"github.com/Faultbox/glprojects/internal/asset/texture"
	"github.com/Faultbox/glprojects/internal/config"
	"github.com/Faultbox/glprojects/internal/engine/gpu"
	"github.com/Faultbox/glprojects/internal/engine/renderer"
	"github.com/Faultbox/glprojects/internal/engine/shader"
	"github.com/Faultbox/glprojects/internal/engine/shader/shaders"
	"github.com/Faultbox/glprojects/internal/logger"
	"github.com/Faultbox/glprojects/pkg/mesh"
)

// Basic3DScene draws rotated cubes textured with two blended images.
type Basic3DScene struct {
	session *Session
	cfg     config.SceneConfig

	program  *shader.Program
	binder   *gpu.Binder
	renderer *renderer.Renderer
	cube     *gpu.Binding
}

// NewBasic3DScene creates the demo.
func NewBasic3DScene(s *Session, cfg config.SceneConfig) *Basic3DScene {
	return &Basic3DScene{session: s, cfg: cfg}
}

// Init compiles the shader, decodes the textures and uploads the cube.
func (d *Basic3DScene) Init() error {
	var err error
	d.program, err = shader.New("scene", shaders.SceneVertexShader, shaders.SceneFragmentShader)
	if err != nil {
		return err
	}

	rec := Cube("textured cube")
	rec.Textures = resolveTextures(texture.NewResolver(d.cfg.TextureDir, nil), d.cfg.Textures)

	d.binder = gpu.NewBinder(d.session.Device)
	d.cube, err = d.binder.Bind(rec)
	if err != nil {
		return err
	}
	d.renderer = renderer.New(d.session.Device)
	return nil
}

// resolveTextures decodes each path as a diffuse texture. Paths that fail to
// decode are skipped with a warning.
func resolveTextures(res *texture.Resolver, paths []string) []*mesh.TextureRef {
	refs := make([]*mesh.TextureRef, 0, len(paths))
	for _, p := range paths {
		ref, err := res.ResolvePath(p, mesh.Diffuse)
		if err != nil {
			logger.Warn("scene texture unavailable", zap.String("path", p), zap.Error(err))
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// Run draws the scene until the window is closed.
func (d *Basic3DScene) Run() error {
	runLoop(d.session, func() {
		d.program.Use()
		d.program.SetMat4("projection", d.session.Projection())
		d.program.SetMat4("view", d.session.View())
		for i, pos := range cubePositions {
			d.program.SetMat4("model", sceneModel(i, pos))
			d.renderer.DrawBinding(d.program.ID, d.cube)
		}
	})
	return nil
}

// Close releases GPU resources.
func (d *Basic3DScene) Close() {
	if d.binder != nil {
		d.binder.Release()
	}
	if d.program != nil {
		d.program.Delete()
	}
}
