// Package lighting provides Phong light parameters for shader upload.
package lighting

import "github.com/go-gl/mathgl/mgl32"

// Uniforms is the subset of a shader program lights are written to.
type Uniforms interface {
	SetVec3(name string, v mgl32.Vec3)
	SetFloat(name string, v float32)
}

// PointLight is a single Phong point light.
type PointLight struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3

	AmbientStrength  float32
	SpecularStrength float32
	Shininess        float32
}

// NewPointLight creates a white light at pos with the classic Phong terms.
func NewPointLight(pos mgl32.Vec3) PointLight {
	return PointLight{
		Position:         pos,
		Color:            mgl32.Vec3{1, 1, 1},
		AmbientStrength:  0.1,
		SpecularStrength: 0.5,
		Shininess:        32,
	}
}

// Apply writes the light and the viewer position to u.
func (l PointLight) Apply(u Uniforms, viewPos mgl32.Vec3) {
	u.SetVec3("lightPos", l.Position)
	u.SetVec3("lightColor", l.Color)
	u.SetVec3("viewPos", viewPos)
	u.SetFloat("ambientStrength", l.AmbientStrength)
	u.SetFloat("specularStrength", l.SpecularStrength)
	u.SetFloat("shininess", l.Shininess)
}

// LampModel returns the model matrix for a small cube drawn at the light.
func (l PointLight) LampModel(scale float32) mgl32.Mat4 {
	p := l.Position
	return mgl32.Translate3D(p.X(), p.Y(), p.Z()).Mul4(mgl32.Scale3D(scale, scale, scale))
}
