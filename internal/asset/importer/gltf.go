package importer

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/glprojects/internal/logger"
	"github.com/Faultbox/glprojects/pkg/mesh"
	"github.com/Faultbox/glprojects/pkg/scene"
)

const (
	extSpecular           = "KHR_materials_specular"
	extSpecularGlossiness = "KHR_materials_pbrSpecularGlossiness"
)

func loadGLTF(path string) (*scene.Graph, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}
	return fromDocument(doc, filepath.Dir(path))
}

// fromDocument builds a scene graph from a decoded glTF document. Every
// primitive becomes one source mesh; the active scene's root nodes become
// children of a synthetic root.
func fromDocument(doc *gltf.Document, dir string) (*scene.Graph, error) {
	g := &scene.Graph{Dir: dir}

	for _, m := range doc.Materials {
		g.Materials = append(g.Materials, gltfMaterial(doc, m))
	}

	// primitives[i] holds the scene mesh indices produced by glTF mesh i.
	primitives := make([][]int, len(doc.Meshes))
	for mi, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			src, err := gltfPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			if src == nil {
				continue
			}
			src.Name = m.Name
			if len(m.Primitives) > 1 {
				src.Name = fmt.Sprintf("%s#%d", m.Name, pi)
			}
			primitives[mi] = append(primitives[mi], len(g.Meshes))
			g.Meshes = append(g.Meshes, src)
		}
	}

	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}
	if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) || len(doc.Scenes[sceneIdx].Nodes) == 0 {
		return nil, ErrNoRoot
	}

	sc := doc.Scenes[sceneIdx]
	g.Root = &scene.Node{Name: sc.Name}
	visiting := make(map[int]bool)
	for _, ni := range sc.Nodes {
		child, err := gltfNode(doc, ni, primitives, visiting)
		if err != nil {
			return nil, err
		}
		g.Root.Children = append(g.Root.Children, child)
	}

	return g, nil
}

func gltfNode(doc *gltf.Document, idx int, primitives [][]int, visiting map[int]bool) (*scene.Node, error) {
	if idx < 0 || idx >= len(doc.Nodes) {
		return nil, fmt.Errorf("%w: node index %d out of range", ErrIncomplete, idx)
	}
	if visiting[idx] {
		return nil, fmt.Errorf("%w: node %d is its own ancestor", ErrIncomplete, idx)
	}
	visiting[idx] = true
	defer delete(visiting, idx)

	src := doc.Nodes[idx]
	n := &scene.Node{Name: src.Name}
	if src.Mesh != nil {
		if *src.Mesh < 0 || *src.Mesh >= len(primitives) {
			return nil, fmt.Errorf("%w: node %d references mesh %d", ErrIncomplete, idx, *src.Mesh)
		}
		n.Meshes = append(n.Meshes, primitives[*src.Mesh]...)
	}
	for _, ci := range src.Children {
		child, err := gltfNode(doc, ci, primitives, visiting)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// gltfPrimitive reads one primitive. Point and line primitives return nil.
func gltfPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*scene.SourceMesh, error) {
	switch prim.Mode {
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
	default:
		logger.Named("importer").Debug("skipping non-triangle primitive", zap.Int("mode", int(prim.Mode)))
		return nil, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("%w: primitive has no POSITION attribute", ErrIncomplete)
	}
	acc, err := accessor(doc, posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	src := &scene.SourceMesh{
		Positions:     make([]mgl32.Vec3, len(positions)),
		MaterialIndex: -1,
	}
	for i, p := range positions {
		src.Positions[i] = p
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acc, err := accessor(doc, idx)
		if err != nil {
			return nil, err
		}
		normals, err := modeler.ReadNormal(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		src.Normals = make([]mgl32.Vec3, len(normals))
		for i, n := range normals {
			src.Normals[i] = n
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acc, err := accessor(doc, idx)
		if err != nil {
			return nil, err
		}
		uvs, err := modeler.ReadTextureCoord(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("reading texcoords: %w", err)
		}
		// glTF puts the UV origin top-left; store bottom-left like OBJ so
		// FlipUVs means the same for every format.
		src.TexCoords0 = make([]mgl32.Vec2, len(uvs))
		for i, uv := range uvs {
			src.TexCoords0[i] = mgl32.Vec2{uv[0], 1 - uv[1]}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		acc, err := accessor(doc, *prim.Indices)
		if err != nil {
			return nil, err
		}
		indices, err = modeler.ReadIndices(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	src.Faces = primitiveFaces(prim.Mode, indices)

	if prim.Material != nil {
		if *prim.Material < 0 || *prim.Material >= len(doc.Materials) {
			return nil, fmt.Errorf("%w: material %d out of range", ErrIncomplete, *prim.Material)
		}
		src.MaterialIndex = *prim.Material
	}

	return src, nil
}

// primitiveFaces splits an index stream into triangles according to mode.
func primitiveFaces(mode gltf.PrimitiveMode, idx []uint32) [][]uint32 {
	var faces [][]uint32
	switch mode {
	case gltf.PrimitiveTriangleStrip:
		for i := 2; i < len(idx); i++ {
			if i%2 == 0 {
				faces = append(faces, []uint32{idx[i-2], idx[i-1], idx[i]})
			} else {
				faces = append(faces, []uint32{idx[i-1], idx[i-2], idx[i]})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 2; i < len(idx); i++ {
			faces = append(faces, []uint32{idx[0], idx[i-1], idx[i]})
		}
	default:
		for i := 0; i+2 < len(idx); i += 3 {
			faces = append(faces, []uint32{idx[i], idx[i+1], idx[i+2]})
		}
	}
	return faces
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d out of range", ErrIncomplete, idx)
	}
	return doc.Accessors[idx], nil
}

func gltfMaterial(doc *gltf.Document, m *gltf.Material) *scene.Material {
	mat := &scene.Material{Name: m.Name}

	if pbr := m.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		addImage(doc, mat, mesh.Diffuse, pbr.BaseColorTexture.Index)
	}

	var spec struct {
		SpecularTexture *textureInfo `json:"specularTexture"`
	}
	if extension(m.Extensions, extSpecular, &spec) && spec.SpecularTexture != nil {
		addImage(doc, mat, mesh.Specular, spec.SpecularTexture.Index)
	}

	var sg struct {
		DiffuseTexture            *textureInfo `json:"diffuseTexture"`
		SpecularGlossinessTexture *textureInfo `json:"specularGlossinessTexture"`
	}
	if extension(m.Extensions, extSpecularGlossiness, &sg) {
		if sg.DiffuseTexture != nil && mat.TextureCount(mesh.Diffuse) == 0 {
			addImage(doc, mat, mesh.Diffuse, sg.DiffuseTexture.Index)
		}
		if sg.SpecularGlossinessTexture != nil {
			addImage(doc, mat, mesh.Specular, sg.SpecularGlossinessTexture.Index)
		}
	}

	return mat
}

type textureInfo struct {
	Index int `json:"index"`
}

// extension decodes a material extension that the gltf package keeps as raw JSON.
func extension(exts gltf.Extensions, name string, v any) bool {
	raw, ok := exts[name]
	if !ok {
		return false
	}
	var data []byte
	switch r := raw.(type) {
	case json.RawMessage:
		data = r
	case []byte:
		data = r
	default:
		var err error
		if data, err = json.Marshal(r); err != nil {
			return false
		}
	}
	return json.Unmarshal(data, v) == nil
}

// addImage appends the file path behind a glTF texture to mat. Embedded
// images have no path on disk and are skipped.
func addImage(doc *gltf.Document, mat *scene.Material, kind mesh.TextureKind, texIdx int) {
	if texIdx < 0 || texIdx >= len(doc.Textures) || doc.Textures[texIdx].Source == nil {
		logger.Warn("material references missing texture", zap.String("material", mat.Name), zap.Int("texture", texIdx))
		return
	}
	imgIdx := *doc.Textures[texIdx].Source
	if imgIdx < 0 || imgIdx >= len(doc.Images) {
		logger.Warn("texture references missing image", zap.String("material", mat.Name), zap.Int("image", imgIdx))
		return
	}

	uri := doc.Images[imgIdx].URI
	if uri == "" || strings.HasPrefix(uri, "data:") {
		logger.Debug("skipping embedded image", zap.String("material", mat.Name), zap.Int("image", imgIdx))
		return
	}
	if p, err := url.PathUnescape(uri); err == nil {
		uri = p
	}
	mat.AddTexture(kind, uri)
}
