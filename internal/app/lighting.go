package app

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glprojects/internal/engine/gpu"
	"github.com/Faultbox/glprojects/internal/engine/lighting"
	"github.com/Faultbox/glprojects/internal/engine/renderer"
	"github.com/Faultbox/glprojects/internal/engine/shader"
	"github.com/Faultbox/glprojects/internal/engine/shader/shaders"
)

var objectColor = mgl32.Vec3{1.0, 0.5, 0.31}

const lampScale = 0.2

// BasicLighting draws a Phong-lit cube next to a small lamp cube.
type BasicLighting struct {
	session *Session
	light   lighting.PointLight

	phong    *shader.Program
	lamp     *shader.Program
	binder   *gpu.Binder
	renderer *renderer.Renderer
	cube     *gpu.Binding
}

// NewBasicLighting creates the demo with the light at (1.2, 1.0, 2.0).
func NewBasicLighting(s *Session) *BasicLighting {
	return &BasicLighting{session: s, light: lighting.NewPointLight(mgl32.Vec3{1.2, 1.0, 2.0})}
}

// Init compiles both shaders and uploads the cube.
func (d *BasicLighting) Init() error {
	var err error
	d.phong, err = shader.New("lighting", shaders.LightingVertexShader, shaders.LightingFragmentShader)
	if err != nil {
		return err
	}
	d.lamp, err = shader.New("lamp", shaders.LightingVertexShader, shaders.LampFragmentShader)
	if err != nil {
		return err
	}

	d.binder = gpu.NewBinder(d.session.Device)
	d.cube, err = d.binder.Bind(Cube("cube"))
	if err != nil {
		return err
	}
	d.renderer = renderer.New(d.session.Device)
	return nil
}

// Run draws the scene until the window is closed.
func (d *BasicLighting) Run() error {
	runLoop(d.session, func() {
		projection, view := d.session.Projection(), d.session.View()

		d.phong.Use()
		d.phong.SetVec3("objectColor", objectColor)
		d.light.Apply(d.phong, d.session.Camera.Position)
		d.phong.SetMat4("projection", projection)
		d.phong.SetMat4("view", view)
		d.phong.SetMat4("model", mgl32.Ident4())
		d.renderer.DrawBinding(d.phong.ID, d.cube)

		d.lamp.Use()
		d.lamp.SetMat4("projection", projection)
		d.lamp.SetMat4("view", view)
		d.lamp.SetMat4("model", d.light.LampModel(lampScale))
		d.renderer.DrawBinding(d.lamp.ID, d.cube)
	})
	return nil
}

// Close releases GPU resources.
func (d *BasicLighting) Close() {
	if d.binder != nil {
		d.binder.Release()
	}
	if d.phong != nil {
		d.phong.Delete()
	}
	if d.lamp != nil {
		d.lamp.Delete()
	}
}
