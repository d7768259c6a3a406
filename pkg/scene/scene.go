// Package scene defines the importer-neutral scene graph produced by asset import.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glprojects/pkg/mesh"
)

// Graph is an imported scene: a node hierarchy referencing shared meshes and materials.
type Graph struct {
	Root      *Node
	Meshes    []*SourceMesh
	Materials []*Material

	// Dir is the directory texture paths are resolved against.
	Dir string
}

// Node is a scene graph node. Meshes holds indices into Graph.Meshes.
type Node struct {
	Name     string
	Meshes   []int
	Children []*Node
}

// SourceMesh is a mesh as delivered by the importer.
type SourceMesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3

	// TexCoords0 is texture coordinate channel 0; nil when the channel is absent.
	TexCoords0 []mgl32.Vec2

	// Faces holds per-face vertex indices. After triangulation every face has 3.
	Faces [][]uint32

	MaterialIndex int
}

// Material maps texture kinds to the source paths of their slots, in slot order.
type Material struct {
	Name     string
	Textures map[mesh.TextureKind][]string
}

// TextureCount returns the number of slots of the given kind.
func (m *Material) TextureCount(kind mesh.TextureKind) int {
	if m == nil {
		return 0
	}
	return len(m.Textures[kind])
}

// AddTexture appends a slot of the given kind.
func (m *Material) AddTexture(kind mesh.TextureKind, path string) {
	if m.Textures == nil {
		m.Textures = make(map[mesh.TextureKind][]string)
	}
	m.Textures[kind] = append(m.Textures[kind], path)
}

// Material returns the material at index i, or nil if out of range.
func (g *Graph) Material(i int) *Material {
	if i < 0 || i >= len(g.Materials) {
		return nil
	}
	return g.Materials[i]
}

// Walk visits nodes depth-first in pre-order, children in declared order.
// Returning false from fn stops the walk.
func (g *Graph) Walk(fn func(n *Node, depth int) bool) {
	if g == nil || g.Root == nil {
		return
	}
	walk(g.Root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) bool {
	if !fn(n, depth) {
		return false
	}
	for _, c := range n.Children {
		if !walk(c, depth+1, fn) {
			return false
		}
	}
	return true
}

// MeshRefs returns the mesh indices reachable from the root in pre-order.
func (g *Graph) MeshRefs() []int {
	var refs []int
	g.Walk(func(n *Node, _ int) bool {
		refs = append(refs, n.Meshes...)
		return true
	})
	return refs
}
