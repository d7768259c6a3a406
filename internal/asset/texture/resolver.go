package texture

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/glprojects/internal/logger"
	"github.com/Faultbox/glprojects/pkg/mesh"
	"github.com/Faultbox/glprojects/pkg/scene"
)

// DecodeError reports a texture slot whose image could not be decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("texture %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Resolver turns material texture slots into TextureRefs. Each unique source
// path is decoded at most once per Resolver; one Resolver serves one import.
type Resolver struct {
	dir     string
	decoder Decoder

	cache   []*mesh.TextureRef
	failed  map[string]error
	decodes int
}

// NewResolver creates a resolver that reads textures relative to dir.
func NewResolver(dir string, dec Decoder) *Resolver {
	if dec == nil {
		dec = ImageDecoder{}
	}
	return &Resolver{
		dir:     dir,
		decoder: dec,
		failed:  make(map[string]error),
	}
}

// Resolve returns the TextureRefs for every slot of kind in mat, in slot order.
// Slots that fail to decode are logged and skipped.
func (r *Resolver) Resolve(mat *scene.Material, kind mesh.TextureKind) []*mesh.TextureRef {
	if mat == nil {
		return nil
	}

	var refs []*mesh.TextureRef
	for _, path := range mat.Textures[kind] {
		ref, err := r.ResolvePath(path, kind)
		if err != nil {
			logger.Warn("texture slot skipped",
				zap.String("material", mat.Name),
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// ResolvePath returns the cached TextureRef for path or decodes a new one.
// A cached entry is reused whatever kind it was first resolved as.
func (r *Resolver) ResolvePath(path string, kind mesh.TextureKind) (*mesh.TextureRef, error) {
	for _, ref := range r.cache {
		if ref.Path == path {
			return ref, nil
		}
	}
	if err, ok := r.failed[path]; ok {
		return nil, &DecodeError{Path: path, Err: err}
	}

	r.decodes++
	img, err := r.decoder.Decode(filepath.Join(r.dir, filepath.FromSlash(path)))
	if err != nil {
		r.failed[path] = err
		return nil, &DecodeError{Path: path, Err: err}
	}

	ref := &mesh.TextureRef{Image: img, Kind: kind, Path: path}
	r.cache = append(r.cache, ref)

	w, h := ref.Size()
	logger.Debug("texture decoded",
		zap.String("path", path),
		zap.String("kind", string(kind)),
		zap.Int("width", w),
		zap.Int("height", h),
	)
	return ref, nil
}

// Cache returns the resolved textures in first-resolved order.
func (r *Resolver) Cache() []*mesh.TextureRef {
	return r.cache
}

// Decodes returns how many decode attempts were made.
func (r *Resolver) Decodes() int {
	return r.decodes
}
