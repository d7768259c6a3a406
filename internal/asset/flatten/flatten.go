// Package flatten converts an imported scene graph into flat mesh records.
package flatten

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/glprojects/internal/logger"
	"github.com/Faultbox/glprojects/pkg/mesh"
	"github.com/Faultbox/glprojects/pkg/scene"
)

// ErrInvalidMesh is wrapped by errors for meshes that fail validation.
var ErrInvalidMesh = errors.New("invalid mesh")

// TextureSource resolves the texture slots of one kind in a material.
type TextureSource interface {
	Resolve(mat *scene.Material, kind mesh.TextureKind) []*mesh.TextureRef
}

// Flatten walks g depth-first in pre-order and returns one record per mesh
// reference. Textures are resolved diffuse first, then specular. res may be nil,
// in which case records carry no textures.
func Flatten(g *scene.Graph, res TextureSource) ([]*mesh.Record, error) {
	if g == nil || g.Root == nil {
		return nil, fmt.Errorf("flatten: %w: scene has no root node", ErrInvalidMesh)
	}

	var records []*mesh.Record
	var walkErr error
	g.Walk(func(n *scene.Node, _ int) bool {
		for _, mi := range n.Meshes {
			if mi < 0 || mi >= len(g.Meshes) {
				walkErr = fmt.Errorf("flatten: node %q: %w: mesh index %d out of range", n.Name, ErrInvalidMesh, mi)
				return false
			}
			rec, err := Mesh(g.Meshes[mi], g, res)
			if err != nil {
				walkErr = fmt.Errorf("flatten: node %q: %w", n.Name, err)
				return false
			}
			records = append(records, rec)
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	logger.Debug("scene flattened",
		zap.Int("records", len(records)),
		zap.Int("meshes", len(g.Meshes)),
	)
	return records, nil
}

// Mesh converts one source mesh into a record.
func Mesh(src *scene.SourceMesh, g *scene.Graph, res TextureSource) (*mesh.Record, error) {
	rec := &mesh.Record{
		Name:          src.Name,
		MaterialIndex: src.MaterialIndex,
		Vertices:      make([]mesh.Vertex, len(src.Positions)),
	}

	hasUV := src.TexCoords0 != nil
	for i, p := range src.Positions {
		v := mesh.Vertex{Position: p}
		if i < len(src.Normals) {
			v.Normal = src.Normals[i]
		}
		if hasUV && i < len(src.TexCoords0) {
			v.TexCoord = src.TexCoords0[i]
		} else {
			v.TexCoord = mgl32.Vec2{0, 0}
		}
		rec.Vertices[i] = v
	}

	for _, face := range src.Faces {
		rec.Indices = append(rec.Indices, face...)
	}

	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMesh, err)
	}

	// Every mesh is treated as having a material; an index with no material
	// behind it just leaves the record untextured.
	if res != nil {
		mat := g.Material(src.MaterialIndex)
		for _, kind := range mesh.Kinds {
			rec.Textures = append(rec.Textures, res.Resolve(mat, kind)...)
		}
	}

	return rec, nil
}

// Count returns how many records Flatten produces for g.
func Count(g *scene.Graph) int {
	return len(g.MeshRefs())
}
