// Package asset loads a model file into flat mesh records in one import session.
package asset

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/glprojects/internal/asset/flatten"
	"github.com/Faultbox/glprojects/internal/asset/importer"
	"github.com/Faultbox/glprojects/internal/asset/texture"
	"github.com/Faultbox/glprojects/internal/logger"
	"github.com/Faultbox/glprojects/pkg/mesh"
	"github.com/Faultbox/glprojects/pkg/scene"
)

// Model is the result of loading one asset file.
type Model struct {
	Path    string
	Records []*mesh.Record

	// Textures holds every decoded texture, each once, in first-use order.
	Textures []*mesh.TextureRef
}

// Loader imports, resolves textures and flattens asset files.
type Loader struct {
	Options importer.Options
	Decoder texture.Decoder
}

// NewLoader returns a loader with triangulation and UV flipping enabled.
func NewLoader() *Loader {
	return &Loader{
		Options: importer.DefaultOptions(),
		Decoder: texture.ImageDecoder{},
	}
}

// Load imports path and flattens it. Each call uses a fresh texture cache.
// Import and flatten failures are returned as *importer.ImportError; a record
// that fails validation also matches importer.ErrIncomplete.
func (l *Loader) Load(path string) (*Model, error) {
	start := time.Now()

	g, err := importer.Import(path, l.Options)
	if err != nil {
		return nil, err
	}

	m, err := l.flatten(path, g)
	if err != nil {
		return nil, err
	}
	logger.Info("model loaded",
		zap.String("path", path),
		zap.Int("records", len(m.Records)),
		zap.Int("vertices", m.vertexCount()),
		zap.Int("triangles", m.triangleCount()),
		zap.Int("textures", len(m.Textures)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}

func (l *Loader) flatten(path string, g *scene.Graph) (*Model, error) {
	res := texture.NewResolver(g.Dir, l.Decoder)
	records, err := flatten.Flatten(g, res)
	if err != nil {
		return nil, &importer.ImportError{Path: path, Err: fmt.Errorf("%w: %w", importer.ErrIncomplete, err)}
	}
	return &Model{Path: path, Records: records, Textures: res.Cache()}, nil
}

func (m *Model) vertexCount() int {
	var n int
	for _, r := range m.Records {
		n += len(r.Vertices)
	}
	return n
}

func (m *Model) triangleCount() int {
	var n int
	for _, r := range m.Records {
		n += r.TriangleCount()
	}
	return n
}
