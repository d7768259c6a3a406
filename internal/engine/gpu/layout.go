package gpu

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/glprojects/pkg/mesh"
)

// Attribute locations shared with the shaders.
const (
	AttribPosition uint32 = 0
	AttribNormal   uint32 = 1
	AttribTexCoord uint32 = 2
)

// Attribute describes one float attribute inside an interleaved vertex.
type Attribute struct {
	Name       string
	Index      uint32
	Components int32
	Offset     uintptr
}

// VertexLayout describes how a vertex buffer is split into attributes.
type VertexLayout struct {
	Stride     int32
	Attributes []Attribute
}

// DefaultLayout returns the layout of mesh.Vertex: position at 0, normal at
// 3 floats, texture coordinate at 6 floats.
func DefaultLayout() VertexLayout {
	const f = 4
	return VertexLayout{
		Stride: mesh.VertexSize,
		Attributes: []Attribute{
			{Name: "aPos", Index: AttribPosition, Components: 3, Offset: 0},
			{Name: "aNormal", Index: AttribNormal, Components: 3, Offset: 3 * f},
			{Name: "aTexCoords", Index: AttribTexCoord, Components: 2, Offset: 6 * f},
		},
	}
}

// Apply configures the attributes for the currently bound vertex array and buffer.
func (l VertexLayout) Apply(dev Device) {
	for _, a := range l.Attributes {
		dev.VertexAttribPointer(a.Index, a.Components, gl.FLOAT, false, l.Stride, a.Offset)
		dev.EnableVertexAttribArray(a.Index)
	}
}
