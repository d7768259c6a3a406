// Package mesh defines flattened mesh data ready for GPU upload.
package mesh

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex represents a mesh vertex with position, normal, and texture coordinates.
// The layout is 8 tightly packed float32 values.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

// VertexSize is the size of one Vertex in bytes.
const VertexSize = 8 * 4

// IndexSize is the size of one index in bytes.
const IndexSize = 4

// TextureKind is the semantic role of a texture within a material.
type TextureKind string

// Texture kinds. The string values double as shader sampler name prefixes.
const (
	Diffuse  TextureKind = "texture_diffuse"
	Specular TextureKind = "texture_specular"
)

// Kinds lists the texture kinds in the order they are resolved for a material.
var Kinds = []TextureKind{Diffuse, Specular}

// TextureRef is a decoded texture together with its role and source path.
// Records share a TextureRef by pointer when they reference the same path.
type TextureRef struct {
	Image *image.RGBA
	Kind  TextureKind
	Path  string
}

// Size returns the texture dimensions, or zero if nothing was decoded.
func (t *TextureRef) Size() (int, int) {
	if t == nil || t.Image == nil {
		return 0, 0
	}
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Record holds one flattened mesh: vertices, a triangle list, and textures.
type Record struct {
	Name          string
	MaterialIndex int
	Vertices      []Vertex
	Indices       []uint32
	Textures      []*TextureRef
}

// VertexBytes returns the size of the vertex data in bytes.
func (r *Record) VertexBytes() int {
	return len(r.Vertices) * VertexSize
}

// IndexBytes returns the size of the index data in bytes.
func (r *Record) IndexBytes() int {
	return len(r.Indices) * IndexSize
}

// TriangleCount returns the number of triangles in the index list.
func (r *Record) TriangleCount() int {
	return len(r.Indices) / 3
}

// Validate checks that the index list is a triangle list within vertex bounds.
func (r *Record) Validate() error {
	if len(r.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: index count %d is not a multiple of 3", r.Name, len(r.Indices))
	}
	n := uint32(len(r.Vertices))
	for i, idx := range r.Indices {
		if idx >= n {
			return fmt.Errorf("mesh %q: index %d at position %d out of range (vertex count %d)", r.Name, idx, i, n)
		}
	}
	return nil
}
