// Package importer loads 3D asset files into a scene graph.
//
// glTF (.gltf, .glb) is read with qmuntal/gltf and Wavefront OBJ with the g3n
// OBJ decoder. Both backends produce the same scene.Graph, which is then
// post-processed (triangulation, UV flip) and checked for completeness.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/glprojects/internal/logger"
	"github.com/Faultbox/glprojects/pkg/scene"
)

// Import failure causes, matched with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported asset format")
	ErrNoRoot            = errors.New("scene has no root node")
	ErrIncomplete        = errors.New("scene is incomplete")
)

// ImportError reports an asset that could not be imported.
type ImportError struct {
	Path string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s: %v", e.Path, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// Options selects post-processing steps.
type Options struct {
	// Triangulate splits polygons into triangles and drops degenerate faces.
	Triangulate bool
	// FlipUVs maps texture coordinate v to 1-v.
	FlipUVs bool
}

// DefaultOptions requests triangulation and UV flipping.
func DefaultOptions() Options {
	return Options{Triangulate: true, FlipUVs: true}
}

type backend func(path string) (*scene.Graph, error)

var backends = map[string]backend{
	".gltf": loadGLTF,
	".glb":  loadGLTF,
	".obj":  loadOBJ,
}

// SupportedExtensions returns the file extensions Import understands.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(backends))
	for ext := range backends {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Import reads the asset at path. On failure it returns an *ImportError and no graph.
func Import(path string, opts Options) (*scene.Graph, error) {
	ext := strings.ToLower(filepath.Ext(path))
	load, ok := backends[ext]
	if !ok {
		return nil, &ImportError{Path: path, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)}
	}

	if _, err := os.Stat(path); err != nil {
		return nil, &ImportError{Path: path, Err: err}
	}

	g, err := load(path)
	if err != nil {
		return nil, &ImportError{Path: path, Err: err}
	}
	if g.Dir == "" {
		g.Dir = filepath.Dir(path)
	}

	if err := PostProcess(g, opts); err != nil {
		return nil, &ImportError{Path: path, Err: err}
	}

	logger.Named("importer").Info("scene imported",
		zap.String("path", path),
		zap.Int("meshes", len(g.Meshes)),
		zap.Int("materials", len(g.Materials)),
	)
	return g, nil
}

// PostProcess applies opts to g and verifies the graph is complete.
func PostProcess(g *scene.Graph, opts Options) error {
	if g == nil || g.Root == nil {
		return ErrNoRoot
	}

	for _, m := range g.Meshes {
		if opts.Triangulate {
			m.Faces = triangulate(m.Faces)
		}
		if opts.FlipUVs {
			for i := range m.TexCoords0 {
				m.TexCoords0[i][1] = 1 - m.TexCoords0[i][1]
			}
		}
	}

	return checkComplete(g)
}

// triangulate fan-splits polygons and drops faces with fewer than 3 indices.
func triangulate(faces [][]uint32) [][]uint32 {
	out := make([][]uint32, 0, len(faces))
	for _, f := range faces {
		switch {
		case len(f) < 3:
			continue
		case len(f) == 3:
			out = append(out, f)
		default:
			for i := 2; i < len(f); i++ {
				out = append(out, []uint32{f[0], f[i-1], f[i]})
			}
		}
	}
	return out
}

func checkComplete(g *scene.Graph) error {
	var err error
	g.Walk(func(n *scene.Node, _ int) bool {
		for _, mi := range n.Meshes {
			if mi < 0 || mi >= len(g.Meshes) {
				err = fmt.Errorf("%w: node %q references mesh %d of %d", ErrIncomplete, n.Name, mi, len(g.Meshes))
				return false
			}
		}
		return true
	})
	if err != nil {
		return err
	}

	for i, m := range g.Meshes {
		if len(m.Positions) == 0 {
			return fmt.Errorf("%w: mesh %d (%s) has no positions", ErrIncomplete, i, m.Name)
		}
		if m.Normals != nil && len(m.Normals) != len(m.Positions) {
			return fmt.Errorf("%w: mesh %d (%s) has %d normals for %d positions", ErrIncomplete, i, m.Name, len(m.Normals), len(m.Positions))
		}
		if m.TexCoords0 != nil && len(m.TexCoords0) != len(m.Positions) {
			return fmt.Errorf("%w: mesh %d (%s) has %d texcoords for %d positions", ErrIncomplete, i, m.Name, len(m.TexCoords0), len(m.Positions))
		}
		n := uint32(len(m.Positions))
		for _, f := range m.Faces {
			for _, idx := range f {
				if idx >= n {
					return fmt.Errorf("%w: mesh %d (%s) index %d past vertex count %d", ErrIncomplete, i, m.Name, idx, n)
				}
			}
		}
	}
	return nil
}
