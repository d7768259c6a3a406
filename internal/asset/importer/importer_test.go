package importer

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/glprojects/internal/logger"
	"github.com/Faultbox/glprojects/pkg/mesh"
	"github.com/Faultbox/glprojects/pkg/scene"
)

// quadDocument builds a two-level glTF scene: parent -> child, where child
// carries a mesh with a textured primitive and an untextured one.
func quadDocument() *gltf.Document {
	doc := &gltf.Document{}
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}})
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 0.25}, {1, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 2, 1, 3})

	doc.Images = []*gltf.Image{{URI: "wood.png"}, {URI: "wood%20spec.png"}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}, {Source: gltf.Index(1)}}
	doc.Materials = []*gltf.Material{{
		Name:                 "wood",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 0}},
		Extensions:           gltf.Extensions{extSpecular: json.RawMessage(`{"specularTexture":{"index":1}}`)},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{
			{
				Attributes: map[string]int{gltf.POSITION: pos, gltf.NORMAL: nrm, gltf.TEXCOORD_0: uv},
				Indices:    gltf.Index(idx),
				Material:   gltf.Index(0),
			},
			{
				Attributes: map[string]int{gltf.POSITION: pos},
				Indices:    gltf.Index(idx),
			},
		},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "parent", Children: []int{1}},
		{Name: "child", Mesh: gltf.Index(0)},
	}
	doc.Scenes = []*gltf.Scene{{Name: "scene", Nodes: []int{0}}}
	doc.Scene = gltf.Index(0)
	return doc
}

func TestFromDocument(t *testing.T) {
	g, err := fromDocument(quadDocument(), "assets")
	if err != nil {
		t.Fatalf("fromDocument: %v", err)
	}

	if len(g.Meshes) != 2 {
		t.Fatalf("got %d meshes, want one per primitive (2)", len(g.Meshes))
	}
	if g.Root == nil || len(g.Root.Children) != 1 {
		t.Fatalf("unexpected root: %+v", g.Root)
	}
	parent := g.Root.Children[0]
	if parent.Name != "parent" || len(parent.Children) != 1 {
		t.Fatalf("unexpected parent node: %+v", parent)
	}
	if got := parent.Children[0].Meshes; !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("child meshes = %v, want [0 1]", got)
	}

	textured := g.Meshes[0]
	if textured.MaterialIndex != 0 {
		t.Errorf("material index = %d, want 0", textured.MaterialIndex)
	}
	if !reflect.DeepEqual(textured.Faces, [][]uint32{{0, 1, 2}, {2, 1, 3}}) {
		t.Errorf("faces = %v", textured.Faces)
	}
	if textured.TexCoords0[2] != (mgl32.Vec2{0, 0.75}) {
		t.Errorf("texcoord not converted to bottom-left origin: %v", textured.TexCoords0[2])
	}

	plain := g.Meshes[1]
	if plain.TexCoords0 != nil || plain.Normals != nil {
		t.Error("untextured primitive should have no texcoord or normal channel")
	}
	if plain.MaterialIndex != -1 {
		t.Errorf("primitive without material has index %d", plain.MaterialIndex)
	}

	mat := g.Materials[0]
	if got := mat.Textures[mesh.Diffuse]; !reflect.DeepEqual(got, []string{"wood.png"}) {
		t.Errorf("diffuse slots = %v", got)
	}
	if got := mat.Textures[mesh.Specular]; !reflect.DeepEqual(got, []string{"wood spec.png"}) {
		t.Errorf("specular slots = %v", got)
	}
}

func TestFromDocument_PrimitiveModes(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	doc.Meshes = []*gltf.Mesh{{
		Name: "mixed",
		Primitives: []*gltf.Primitive{
			{Attributes: map[string]int{gltf.POSITION: pos}, Mode: gltf.PrimitivePoints},
			{Attributes: map[string]int{gltf.POSITION: pos}, Mode: gltf.PrimitiveLines},
			{Attributes: map[string]int{gltf.POSITION: pos}},
		},
	}}
	doc.Nodes = []*gltf.Node{{Name: "node", Mesh: gltf.Index(0)}}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}

	g, err := fromDocument(doc, "")
	if err != nil {
		t.Fatalf("fromDocument: %v", err)
	}
	if len(g.Meshes) != 1 {
		t.Fatalf("got %d meshes, want only the triangle primitive", len(g.Meshes))
	}
	if got := g.Root.Children[0].Meshes; !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("node meshes = %v, want [0]", got)
	}
	if g.Meshes[0].Name != "mixed#2" {
		t.Errorf("mesh name = %q, want mixed#2", g.Meshes[0].Name)
	}
	if !reflect.DeepEqual(g.Meshes[0].Faces, [][]uint32{{0, 1, 2}}) {
		t.Errorf("non-indexed faces = %v, want [[0 1 2]]", g.Meshes[0].Faces)
	}
}

func TestPrimitiveFaces(t *testing.T) {
	tests := []struct {
		name string
		mode gltf.PrimitiveMode
		idx  []uint32
		want [][]uint32
	}{
		{"triangles", gltf.PrimitiveTriangles, []uint32{0, 1, 2, 3, 4, 5}, [][]uint32{{0, 1, 2}, {3, 4, 5}}},
		{"triangles trailing indices dropped", gltf.PrimitiveTriangles, []uint32{0, 1, 2, 3, 4}, [][]uint32{{0, 1, 2}}},
		{"strip alternates winding", gltf.PrimitiveTriangleStrip, []uint32{0, 1, 2, 3, 4},
			[][]uint32{{0, 1, 2}, {2, 1, 3}, {2, 3, 4}}},
		{"fan shares first vertex", gltf.PrimitiveTriangleFan, []uint32{0, 1, 2, 3, 4},
			[][]uint32{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}}},
		{"strip too short", gltf.PrimitiveTriangleStrip, []uint32{0, 1}, nil},
		{"fan too short", gltf.PrimitiveTriangleFan, []uint32{0}, nil},
		{"empty", gltf.PrimitiveTriangles, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := primitiveFaces(tt.mode, tt.idx); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("primitiveFaces = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromDocument_Incomplete(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc *gltf.Document)
		want   error
	}{
		{"no scenes", func(doc *gltf.Document) { doc.Scenes = nil; doc.Scene = nil }, ErrNoRoot},
		{"empty scene", func(doc *gltf.Document) { doc.Scenes[0].Nodes = nil }, ErrNoRoot},
		{"node out of range", func(doc *gltf.Document) { doc.Nodes[0].Children = []int{7} }, ErrIncomplete},
		{"mesh out of range", func(doc *gltf.Document) { doc.Nodes[1].Mesh = gltf.Index(3) }, ErrIncomplete},
		{"node cycle", func(doc *gltf.Document) { doc.Nodes[1].Children = []int{0} }, ErrIncomplete},
		{"accessor out of range", func(doc *gltf.Document) {
			doc.Meshes[0].Primitives[1].Attributes[gltf.POSITION] = 42
		}, ErrIncomplete},
		{"material out of range", func(doc *gltf.Document) {
			doc.Meshes[0].Primitives[0].Material = gltf.Index(9)
		}, ErrIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := quadDocument()
			tt.mutate(doc)
			g, err := fromDocument(doc, "")
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if g != nil {
				t.Error("expected no graph on failure")
			}
		})
	}
}

func TestImport_GLB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.glb")
	if err := gltf.SaveBinary(quadDocument(), path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}

	g, err := Import(path, DefaultOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if g.Dir != filepath.Dir(path) {
		t.Errorf("Dir = %q, want %q", g.Dir, filepath.Dir(path))
	}
	if len(g.MeshRefs()) != 2 {
		t.Errorf("reachable meshes = %d, want 2", len(g.MeshRefs()))
	}
	// FlipUVs undoes the bottom-left conversion, giving back the stored value.
	if got := g.Meshes[0].TexCoords0[2]; got != (mgl32.Vec2{0, 0.25}) {
		t.Errorf("flipped texcoord = %v, want (0, 0.25)", got)
	}
	if got := g.Materials[0].Textures[mesh.Specular]; len(got) != 1 {
		t.Errorf("specular extension lost in round trip: %v", got)
	}
}

const boxOBJ = `mtllib scene.mtl
o Box
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl wood
f 1/1/1 2/2/1 3/3/1 4/4/1
o Tri
v 0 0 1
v 1 0 1
v 0 1 1
usemtl metal
f 5/1/1 6/2/1 7/3/1
`

const boxMTL = `newmtl wood
Kd 1 1 1
map_Kd wood.png
map_Ks wood_spec.png

newmtl metal
Kd 0.5 0.5 0.5
map_Kd metal.png
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestImport_OBJ(t *testing.T) {
	dir := writeFiles(t, map[string]string{"scene.obj": boxOBJ, "scene.mtl": boxMTL})

	g, err := Import(filepath.Join(dir, "scene.obj"), DefaultOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if len(g.Root.Children) != 2 {
		t.Fatalf("got %d object nodes, want 2", len(g.Root.Children))
	}
	if g.Root.Children[0].Name != "Box" || g.Root.Children[1].Name != "Tri" {
		t.Errorf("object order = %s, %s", g.Root.Children[0].Name, g.Root.Children[1].Name)
	}

	box := g.Meshes[g.Root.Children[0].Meshes[0]]
	if len(box.Positions) != 4 {
		t.Errorf("box has %d vertices, want 4", len(box.Positions))
	}
	if !reflect.DeepEqual(box.Faces, [][]uint32{{0, 1, 2}, {0, 2, 3}}) {
		t.Errorf("quad not fan-triangulated: %v", box.Faces)
	}
	if box.TexCoords0[2] != (mgl32.Vec2{1, 0}) {
		t.Errorf("texcoord = %v, want flipped (1, 0)", box.TexCoords0[2])
	}

	// Materials are indexed in name order: metal, wood.
	if g.Materials[box.MaterialIndex].Name != "wood" {
		t.Errorf("box material = %s", g.Materials[box.MaterialIndex].Name)
	}
	wood := g.Materials[box.MaterialIndex]
	if !reflect.DeepEqual(wood.Textures[mesh.Diffuse], []string{"wood.png"}) {
		t.Errorf("wood diffuse = %v", wood.Textures[mesh.Diffuse])
	}
	if !reflect.DeepEqual(wood.Textures[mesh.Specular], []string{"wood_spec.png"}) {
		t.Errorf("wood specular = %v", wood.Textures[mesh.Specular])
	}
}

func TestImport_OBJTextureOptions(t *testing.T) {
	mtl := "newmtl wood\nKd 1 1 1\nmap_Kd -s 1 1 1 tex.png\nmap_Ks -s 1 1 1 spec.png\n\nnewmtl metal\nmap_Kd -bm 0.5 metal.png\n"
	dir := writeFiles(t, map[string]string{"scene.obj": boxOBJ, "scene.mtl": mtl})

	g, err := Import(filepath.Join(dir, "scene.obj"), DefaultOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	byName := make(map[string]*scene.Material)
	for _, m := range g.Materials {
		byName[m.Name] = m
	}
	wood := byName["wood"]
	if wood == nil {
		t.Fatal("wood material missing")
	}
	if got := wood.Textures[mesh.Diffuse]; !reflect.DeepEqual(got, []string{"tex.png"}) {
		t.Errorf("wood diffuse = %v, want [tex.png]", got)
	}
	if got := wood.Textures[mesh.Specular]; !reflect.DeepEqual(got, []string{"spec.png"}) {
		t.Errorf("wood specular = %v, want [spec.png]", got)
	}
	if got := byName["metal"].Textures[mesh.Diffuse]; !reflect.DeepEqual(got, []string{"metal.png"}) {
		t.Errorf("metal diffuse = %v, want [metal.png]", got)
	}
}

func TestTextureMaps(t *testing.T) {
	got := textureMaps([]byte("map_Kd orphan.png\nnewmtl a\nmap_Kd -o 0 0 a.png\nmap_Ks\nmap_Ks a_spec.png\nmap_Bump n.png\nnewmtl b\n"))
	want := map[string]map[mesh.TextureKind][]string{
		"":  {mesh.Diffuse: {"orphan.png"}},
		"a": {mesh.Diffuse: {"a.png"}, mesh.Specular: {"a_spec.png"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("textureMaps = %v, want %v", got, want)
	}
}

func TestImport_OBJWithoutTexCoords(t *testing.T) {
	src := "o Tri\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	dir := writeFiles(t, map[string]string{"tri.obj": src})

	g, err := Import(filepath.Join(dir, "tri.obj"), DefaultOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	m := g.Meshes[0]
	if m.TexCoords0 != nil {
		t.Errorf("expected no texcoord channel, got %v", m.TexCoords0)
	}
	if m.Normals != nil {
		t.Errorf("expected no normals, got %v", m.Normals)
	}
	if mat := g.Material(m.MaterialIndex); mat.TextureCount(mesh.Diffuse) != 0 {
		t.Error("mesh without material library should be untextured")
	}
}

func TestImport_LogsUnderImporterName(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	dir := writeFiles(t, map[string]string{"tri.obj": "o Tri\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"})
	if _, err := Import(filepath.Join(dir, "tri.obj"), DefaultOptions()); err != nil {
		t.Fatalf("Import: %v", err)
	}

	entries := logs.FilterMessage("scene imported").All()
	if len(entries) != 1 {
		t.Fatalf("got %d import log entries, want 1", len(entries))
	}
	if entries[0].LoggerName != "importer" {
		t.Errorf("logger name = %q, want importer", entries[0].LoggerName)
	}
}

func TestImport_Errors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"broken.obj": "o Bad\nv 0 0 0\nv 1 0 0\nf 1 2 9\n",
		"model.fbx":  "binary",
	})

	tests := []struct {
		name string
		path string
		want error
	}{
		{"unsupported extension", filepath.Join(dir, "model.fbx"), ErrUnsupportedFormat},
		{"missing file", filepath.Join(dir, "nope.obj"), os.ErrNotExist},
		// The OBJ decoder may reject this itself; either way it is an ImportError.
		{"index past vertex count", filepath.Join(dir, "broken.obj"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Import(tt.path, DefaultOptions())
			var ie *ImportError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *ImportError, got %v", err)
			}
			if ie.Path != tt.path {
				t.Errorf("ImportError.Path = %q", ie.Path)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if g != nil {
				t.Error("expected no graph on failure")
			}
		})
	}
}

func TestPostProcess_Incomplete(t *testing.T) {
	tests := []struct {
		name string
		g    *scene.Graph
	}{
		{"index past vertex count", &scene.Graph{
			Root:   &scene.Node{Meshes: []int{0}},
			Meshes: []*scene.SourceMesh{{Positions: make([]mgl32.Vec3, 2), Faces: [][]uint32{{0, 1, 2}}}},
		}},
		{"node references missing mesh", &scene.Graph{
			Root:   &scene.Node{Children: []*scene.Node{{Name: "leaf", Meshes: []int{1}}}},
			Meshes: []*scene.SourceMesh{{Positions: make([]mgl32.Vec3, 3), Faces: [][]uint32{{0, 1, 2}}}},
		}},
		{"mesh without positions", &scene.Graph{
			Root:   &scene.Node{Meshes: []int{0}},
			Meshes: []*scene.SourceMesh{{}},
		}},
		{"normal count mismatch", &scene.Graph{
			Root:   &scene.Node{Meshes: []int{0}},
			Meshes: []*scene.SourceMesh{{Positions: make([]mgl32.Vec3, 3), Normals: make([]mgl32.Vec3, 1)}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := PostProcess(tt.g, DefaultOptions()); !errors.Is(err, ErrIncomplete) {
				t.Errorf("expected ErrIncomplete, got %v", err)
			}
		})
	}
}

func TestPostProcess(t *testing.T) {
	g := &scene.Graph{
		Root: &scene.Node{Meshes: []int{0}},
		Meshes: []*scene.SourceMesh{{
			Positions:  make([]mgl32.Vec3, 5),
			TexCoords0: []mgl32.Vec2{{0, 0}, {0, 1}, {0, 0.25}, {1, 1}, {1, 0}},
			Faces:      [][]uint32{{0, 1}, {0, 1, 2}, {0, 1, 2, 3, 4}},
		}},
	}

	if err := PostProcess(g, DefaultOptions()); err != nil {
		t.Fatalf("PostProcess: %v", err)
	}
	m := g.Meshes[0]
	want := [][]uint32{{0, 1, 2}, {0, 1, 2}, {0, 2, 3}, {0, 3, 4}}
	if !reflect.DeepEqual(m.Faces, want) {
		t.Errorf("faces = %v, want %v", m.Faces, want)
	}
	if m.TexCoords0[1] != (mgl32.Vec2{0, 0}) || m.TexCoords0[2] != (mgl32.Vec2{0, 0.75}) {
		t.Errorf("uvs not flipped: %v", m.TexCoords0)
	}
}

func TestPostProcess_NoOptions(t *testing.T) {
	g := &scene.Graph{
		Root: &scene.Node{Meshes: []int{0}},
		Meshes: []*scene.SourceMesh{{
			Positions:  make([]mgl32.Vec3, 4),
			TexCoords0: []mgl32.Vec2{{0, 0.25}, {}, {}, {}},
			Faces:      [][]uint32{{0, 1, 2, 3}},
		}},
	}
	if err := PostProcess(g, Options{}); err != nil {
		t.Fatalf("PostProcess: %v", err)
	}
	if len(g.Meshes[0].Faces) != 1 || g.Meshes[0].TexCoords0[0][1] != 0.25 {
		t.Error("post-processing applied without being requested")
	}
	if err := PostProcess(&scene.Graph{}, Options{}); !errors.Is(err, ErrNoRoot) {
		t.Errorf("expected ErrNoRoot, got %v", err)
	}
}

func TestSupportedExtensions(t *testing.T) {
	want := []string{".glb", ".gltf", ".obj"}
	if got := SupportedExtensions(); !reflect.DeepEqual(got, want) {
		t.Errorf("SupportedExtensions() = %v, want %v", got, want)
	}
}
