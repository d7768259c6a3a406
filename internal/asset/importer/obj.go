package importer

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glprojects/pkg/mesh"
	"github.com/Faultbox/glprojects/pkg/scene"
)

func loadOBJ(path string) (*scene.Graph, error) {
	objData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	mtlData, err := readMaterialLib(objData, path)
	if err != nil {
		return nil, err
	}

	dec, err := obj.DecodeReader(bytes.NewReader(objData), bytes.NewReader(mtlData))
	if err != nil {
		return nil, err
	}

	g, err := fromOBJ(dec, textureMaps(mtlData))
	if err != nil {
		return nil, err
	}
	g.Dir = dir
	return g, nil
}

// readMaterialLib returns the contents of the material library named by the
// first mtllib statement, falling back to <name>.mtl next to the OBJ file.
// A missing library yields empty data.
func readMaterialLib(objData []byte, objPath string) ([]byte, error) {
	dir := filepath.Dir(objPath)
	candidates := make([]string, 0, 2)

	sc := bufio.NewScanner(bytes.NewReader(objData))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if name, ok := strings.CutPrefix(line, "mtllib "); ok {
			candidates = append(candidates, filepath.Join(dir, strings.TrimSpace(name)))
			break
		}
	}
	base := filepath.Base(objPath)
	candidates = append(candidates, filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".mtl"))

	for _, c := range candidates {
		data, err := os.ReadFile(c)
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return nil, nil
}

// mtlTextureStatements maps MTL texture statements to the slot they fill.
var mtlTextureStatements = map[string]mesh.TextureKind{
	"map_Kd": mesh.Diffuse,
	"map_Ks": mesh.Specular,
}

// textureMaps collects texture map statements per material. The g3n decoder
// keeps only map_Kd and takes its first field, which is wrong when options
// such as -s or -bm come before the file name.
func textureMaps(mtlData []byte) map[string]map[mesh.TextureKind][]string {
	maps := make(map[string]map[mesh.TextureKind][]string)
	var current string
	sc := bufio.NewScanner(bytes.NewReader(mtlData))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[0] == "newmtl" {
			current = fields[1]
			continue
		}
		kind, ok := mtlTextureStatements[fields[0]]
		if !ok {
			continue
		}
		if maps[current] == nil {
			maps[current] = make(map[mesh.TextureKind][]string)
		}
		// The file name is the last field; options come before it.
		maps[current][kind] = append(maps[current][kind], fields[len(fields)-1])
	}
	return maps
}

type objVertexKey struct {
	pos, uv, normal int
}

// fromOBJ builds a graph with one child node per OBJ object. Faces of an object
// are split into one mesh per material, in first-use order.
func fromOBJ(dec *obj.Decoder, maps map[string]map[mesh.TextureKind][]string) (*scene.Graph, error) {
	g := &scene.Graph{Root: &scene.Node{Name: "obj"}}

	names := make([]string, 0, len(dec.Materials))
	for name := range dec.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	matIndex := make(map[string]int, len(names))
	for i, name := range names {
		m := dec.Materials[name]
		mat := &scene.Material{Name: name}
		scanned := maps[name]
		diffuse := scanned[mesh.Diffuse]
		if len(diffuse) == 0 && m.MapKd != "" {
			diffuse = []string{m.MapKd}
		}
		for _, kd := range diffuse {
			mat.AddTexture(mesh.Diffuse, kd)
		}
		for _, ks := range scanned[mesh.Specular] {
			mat.AddTexture(mesh.Specular, ks)
		}
		matIndex[name] = i
		g.Materials = append(g.Materials, mat)
	}

	for oi := range dec.Objects {
		o := &dec.Objects[oi]
		node := &scene.Node{Name: o.Name}

		byMaterial := make(map[string]*objMeshBuilder)
		var order []string
		for fi := range o.Faces {
			f := &o.Faces[fi]
			b, ok := byMaterial[f.Material]
			if !ok {
				mi, found := matIndex[f.Material]
				if !found {
					mi = -1
				}
				b = newOBJMeshBuilder(o.Name, mi)
				byMaterial[f.Material] = b
				order = append(order, f.Material)
			}
			if err := b.addFace(dec, f); err != nil {
				return nil, fmt.Errorf("object %q face %d: %w", o.Name, fi, err)
			}
		}

		for _, name := range order {
			node.Meshes = append(node.Meshes, len(g.Meshes))
			g.Meshes = append(g.Meshes, byMaterial[name].build())
		}
		g.Root.Children = append(g.Root.Children, node)
	}

	return g, nil
}

// objMeshBuilder deduplicates (position, uv, normal) tuples into vertices.
type objMeshBuilder struct {
	src    *scene.SourceMesh
	lookup map[objVertexKey]uint32
	hasUV  bool
	hasN   bool
}

func newOBJMeshBuilder(name string, material int) *objMeshBuilder {
	return &objMeshBuilder{
		src:    &scene.SourceMesh{Name: name, MaterialIndex: material},
		lookup: make(map[objVertexKey]uint32),
	}
}

func (b *objMeshBuilder) addFace(dec *obj.Decoder, f *obj.Face) error {
	face := make([]uint32, 0, len(f.Vertices))
	for j, vi := range f.Vertices {
		if vi < 0 || 3*vi+2 >= len(dec.Vertices) {
			return fmt.Errorf("%w: vertex %d out of range", ErrIncomplete, vi)
		}
		key := objVertexKey{pos: vi, uv: -1, normal: -1}
		if j < len(f.Uvs) && f.Uvs[j] >= 0 && 2*f.Uvs[j]+1 < len(dec.Uvs) {
			key.uv = f.Uvs[j]
		}
		if j < len(f.Normals) && f.Normals[j] >= 0 && 3*f.Normals[j]+2 < len(dec.Normals) {
			key.normal = f.Normals[j]
		}

		idx, ok := b.lookup[key]
		if !ok {
			idx = b.addVertex(dec, key)
			b.lookup[key] = idx
		}
		face = append(face, idx)
	}
	b.src.Faces = append(b.src.Faces, face)
	return nil
}

func (b *objMeshBuilder) addVertex(dec *obj.Decoder, key objVertexKey) uint32 {
	idx := uint32(len(b.src.Positions))
	b.src.Positions = append(b.src.Positions, mgl32.Vec3{
		dec.Vertices[3*key.pos], dec.Vertices[3*key.pos+1], dec.Vertices[3*key.pos+2],
	})

	var n mgl32.Vec3
	if key.normal >= 0 {
		b.hasN = true
		n = mgl32.Vec3{dec.Normals[3*key.normal], dec.Normals[3*key.normal+1], dec.Normals[3*key.normal+2]}
	}
	b.src.Normals = append(b.src.Normals, n)

	var uv mgl32.Vec2
	if key.uv >= 0 {
		b.hasUV = true
		uv = mgl32.Vec2{dec.Uvs[2*key.uv], dec.Uvs[2*key.uv+1]}
	}
	b.src.TexCoords0 = append(b.src.TexCoords0, uv)
	return idx
}

func (b *objMeshBuilder) build() *scene.SourceMesh {
	if !b.hasUV {
		b.src.TexCoords0 = nil
	}
	if !b.hasN {
		b.src.Normals = nil
	}
	return b.src
}
