package app

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/glprojects/internal/asset"
	"github.com/Faultbox/glprojects/internal/asset/importer"
	"github.com/Faultbox/glprojects/internal/config"
	"github.com/Faultbox/glprojects/internal/engine/gpu"
	"github.com/Faultbox/glprojects/internal/engine/renderer"
	"github.com/Faultbox/glprojects/internal/engine/shader"
	"github.com/Faultbox/glprojects/internal/engine/shader/shaders"
	"github.com/Faultbox/glprojects/internal/logger"
	"github.com/Faultbox/glprojects/pkg/mesh"
)

// ModelLoading imports a model file and draws it with its diffuse textures.
type ModelLoading struct {
	session *Session
	cfg     config.ModelConfig

	program  *shader.Program
	binder   *gpu.Binder
	renderer *renderer.Renderer
	bindings []*gpu.Binding
	model    mgl32.Mat4
}

// NewModelLoading creates the demo; nothing is loaded until Init.
func NewModelLoading(s *Session, cfg config.ModelConfig) *ModelLoading {
	return &ModelLoading{session: s, cfg: cfg}
}

// Init compiles the shader, imports the model and uploads it.
func (d *ModelLoading) Init() error {
	prog, err := shader.New("model", shaders.ModelVertexShader, shaders.ModelFragmentShader)
	if err != nil {
		return err
	}
	d.program = prog

	loader := asset.NewLoader()
	loader.Options = importer.Options{Triangulate: d.cfg.Triangulate, FlipUVs: d.cfg.FlipUVs}
	m, err := loader.Load(d.cfg.Path)
	if err != nil {
		return err
	}

	d.binder = gpu.NewBinder(d.session.Device)
	d.bindings, err = d.binder.BindAll(m.Records)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", d.cfg.Path, err)
	}
	d.renderer = renderer.New(d.session.Device)
	d.model = fitModel(m.Records)

	stats := d.binder.Stats()
	logger.Info("model ready",
		zap.String("path", d.cfg.Path),
		zap.Int("meshes", stats.Meshes),
		zap.Int("textures", stats.Textures),
		zap.Int("texture_bytes", stats.TextureBytes),
		zap.Int("skipped", stats.Skipped),
	)
	return nil
}

// Run draws the model until the window is closed.
func (d *ModelLoading) Run() error {
	runLoop(d.session, func() {
		d.program.Use()
		d.program.SetMat4("projection", d.session.Projection())
		d.program.SetMat4("view", d.session.View())
		d.program.SetMat4("model", d.model)

		for _, b := range d.bindings {
			d.program.SetInt("hasDiffuse", boolInt(hasKind(b, mesh.Diffuse)))
			d.renderer.DrawBinding(d.program.ID, b)
		}
	})
	return nil
}

// Close releases GPU resources.
func (d *ModelLoading) Close() {
	if d.binder != nil {
		d.binder.Release()
	}
	if d.program != nil {
		d.program.Delete()
	}
}

// fitModel centers the model's bounds at the origin and scales its largest
// extent to three units.
func fitModel(recs []*mesh.Record) mgl32.Mat4 {
	lo, hi, ok := bounds(recs)
	if !ok {
		return mgl32.Ident4()
	}
	size := hi.Sub(lo)
	extent := max(size.X(), size.Y(), size.Z())
	scale := float32(1)
	if extent > 0 {
		scale = 3 / extent
	}
	center := lo.Add(size.Mul(0.5))
	return mgl32.Scale3D(scale, scale, scale).Mul4(mgl32.Translate3D(-center.X(), -center.Y(), -center.Z()))
}

func bounds(recs []*mesh.Record) (lo, hi mgl32.Vec3, ok bool) {
	for _, rec := range recs {
		for _, v := range rec.Vertices {
			if !ok {
				lo, hi, ok = v.Position, v.Position, true
				continue
			}
			for i := 0; i < 3; i++ {
				lo[i] = min(lo[i], v.Position[i])
				hi[i] = max(hi[i], v.Position[i])
			}
		}
	}
	return lo, hi, ok
}

func hasKind(b *gpu.Binding, kind mesh.TextureKind) bool {
	for _, t := range b.Textures {
		if t.Kind == kind {
			return true
		}
	}
	return false
}

func boolInt(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
