package gpu

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/glprojects/internal/logger"
	"github.com/Faultbox/glprojects/pkg/mesh"
)

// ErrEmptyMesh is returned when a record has no vertices or no indices.
var ErrEmptyMesh = errors.New("mesh has no vertex or index data")

// ResourceError reports a failure to create or fill a GPU resource.
type ResourceError struct {
	Op   string
	Mesh string
	Err  error
}

func (e *ResourceError) Error() string {
	if e.Mesh == "" {
		return fmt.Sprintf("gpu %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gpu %s (mesh %q): %v", e.Op, e.Mesh, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// BoundTexture is an uploaded texture and its role in the material.
type BoundTexture struct {
	Handle uint32
	Kind   mesh.TextureKind
}

// Binding holds the GPU handles needed to draw one mesh record.
type Binding struct {
	Name       string
	VAO        uint32
	VBO        uint32
	EBO        uint32
	Layout     VertexLayout
	IndexCount int32
	Textures   []BoundTexture
}

// Stats counts the resources a Binder has created.
type Stats struct {
	Meshes       int
	Textures     int
	VertexBytes  int
	IndexBytes   int
	TextureBytes int

	// Skipped counts records left out by BindAll because they have no indices.
	Skipped int
}

// Binder uploads mesh records. Each call to Bind creates new buffers, so a
// record must be bound once; textures are uploaded once per TextureRef.
type Binder struct {
	dev    Device
	layout VertexLayout

	textures map[*mesh.TextureRef]uint32
	bindings []*Binding
	stats    Stats
	log      *zap.Logger
}

// NewBinder creates a binder that issues calls to dev.
func NewBinder(dev Device) *Binder {
	return &Binder{
		dev:      dev,
		layout:   DefaultLayout(),
		textures: make(map[*mesh.TextureRef]uint32),
		log:      logger.Named("gpu"),
	}
}

// Bind creates the vertex array, vertex and index buffers for rec and uploads
// any of its textures that are not on the GPU yet.
func (b *Binder) Bind(rec *mesh.Record) (*Binding, error) {
	if len(rec.Vertices) == 0 || len(rec.Indices) == 0 {
		return nil, &ResourceError{Op: "bind", Mesh: rec.Name, Err: ErrEmptyMesh}
	}

	bind := &Binding{
		Name:       rec.Name,
		Layout:     b.layout,
		IndexCount: int32(len(rec.Indices)),
	}

	bind.VAO = b.dev.GenVertexArray()
	b.dev.BindVertexArray(bind.VAO)

	bind.VBO = b.dev.GenBuffer()
	b.dev.BindBuffer(gl.ARRAY_BUFFER, bind.VBO)
	b.dev.BufferData(gl.ARRAY_BUFFER, rec.VertexBytes(), unsafe.Pointer(&rec.Vertices[0]), gl.STATIC_DRAW)

	bind.EBO = b.dev.GenBuffer()
	b.dev.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, bind.EBO)
	b.dev.BufferData(gl.ELEMENT_ARRAY_BUFFER, rec.IndexBytes(), unsafe.Pointer(&rec.Indices[0]), gl.STATIC_DRAW)

	b.layout.Apply(b.dev)
	b.dev.BindVertexArray(0)

	b.bindings = append(b.bindings, bind)
	b.stats.Meshes++
	b.stats.VertexBytes += rec.VertexBytes()
	b.stats.IndexBytes += rec.IndexBytes()

	if err := b.checkError("upload mesh", rec.Name); err != nil {
		return nil, err
	}

	for _, ref := range rec.Textures {
		handle, err := b.uploadTexture(ref)
		if err != nil {
			return nil, &ResourceError{Op: "upload texture", Mesh: rec.Name, Err: err}
		}
		bind.Textures = append(bind.Textures, BoundTexture{Handle: handle, Kind: ref.Kind})
	}

	b.log.Debug("mesh bound",
		zap.String("mesh", rec.Name),
		zap.Uint32("vao", bind.VAO),
		zap.Int("vertices", len(rec.Vertices)),
		zap.Int32("indices", bind.IndexCount),
		zap.Int("textures", len(bind.Textures)),
	)
	return bind, nil
}

// BindAll binds every record in order and stops at the first failure.
// Records with vertices but no indices draw nothing and are skipped.
// Resources created before a failure stay owned by the Binder.
func (b *Binder) BindAll(recs []*mesh.Record) ([]*Binding, error) {
	out := make([]*Binding, 0, len(recs))
	for _, rec := range recs {
		if len(rec.Vertices) > 0 && len(rec.Indices) == 0 {
			b.stats.Skipped++
			b.log.Warn("skipping mesh without indices",
				zap.String("mesh", rec.Name),
				zap.Int("vertices", len(rec.Vertices)),
			)
			continue
		}
		bind, err := b.Bind(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, bind)
	}
	return out, nil
}

// uploadTexture returns the handle for ref, uploading it on first use.
func (b *Binder) uploadTexture(ref *mesh.TextureRef) (uint32, error) {
	if handle, ok := b.textures[ref]; ok {
		return handle, nil
	}
	w, h := ref.Size()
	if w == 0 || h == 0 {
		return 0, fmt.Errorf("texture %s has no pixel data", ref.Path)
	}

	handle := b.dev.GenTexture()
	b.dev.BindTexture(gl.TEXTURE_2D, handle)
	b.dev.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&ref.Image.Pix[0]))
	b.dev.GenerateMipmap(gl.TEXTURE_2D)
	b.dev.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	b.dev.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	b.dev.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	b.dev.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	b.dev.BindTexture(gl.TEXTURE_2D, 0)

	b.textures[ref] = handle
	b.stats.Textures++
	b.stats.TextureBytes += len(ref.Image.Pix)

	if err := b.checkError("upload texture", ""); err != nil {
		return 0, err
	}

	b.log.Debug("texture uploaded",
		zap.String("path", ref.Path),
		zap.Uint32("handle", handle),
		zap.Int("width", w),
		zap.Int("height", h),
	)
	return handle, nil
}

func (b *Binder) checkError(op, name string) error {
	if code := b.dev.GetError(); code != gl.NO_ERROR {
		return &ResourceError{Op: op, Mesh: name, Err: fmt.Errorf("GL error 0x%04X", code)}
	}
	return nil
}

// Texture returns the handle uploaded for ref, if any.
func (b *Binder) Texture(ref *mesh.TextureRef) (uint32, bool) {
	h, ok := b.textures[ref]
	return h, ok
}

// Bindings returns every binding created so far.
func (b *Binder) Bindings() []*Binding {
	return b.bindings
}

// Stats returns resource counters.
func (b *Binder) Stats() Stats {
	return b.stats
}

// Release deletes every buffer, vertex array and texture the binder created.
func (b *Binder) Release() {
	for _, bind := range b.bindings {
		b.dev.DeleteBuffer(bind.VBO)
		b.dev.DeleteBuffer(bind.EBO)
		b.dev.DeleteVertexArray(bind.VAO)
	}
	for _, handle := range b.textures {
		b.dev.DeleteTexture(handle)
	}

	b.log.Debug("gpu resources released",
		zap.Int("meshes", len(b.bindings)),
		zap.Int("textures", len(b.textures)),
	)

	b.bindings = nil
	b.textures = make(map[*mesh.TextureRef]uint32)
	b.stats = Stats{}
}
