// Package texture resolves material texture slots to decoded images.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for image files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Decoder decodes an image file into RGBA pixel data.
type Decoder interface {
	Decode(path string) (*image.RGBA, error)
}

type decodeFunc func(io.Reader) (image.Image, error)

// Decoders are picked by extension. TGA has no magic number, so sniffing with
// image.Decode is not an option once it is registered.
var decoders = map[string]decodeFunc{
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".bmp":  bmp.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
	".webp": webp.Decode,
	".tga":  tga.Decode,
}

// SupportedExtension reports whether files with the given extension can be decoded.
func SupportedExtension(ext string) bool {
	_, ok := decoders[strings.ToLower(ext)]
	return ok
}

// ImageDecoder decodes image files from disk.
type ImageDecoder struct{}

// Decode reads path and decodes it according to its extension.
func (ImageDecoder) Decode(path string) (*image.RGBA, error) {
	dec, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%s: %w", filepath.Ext(path), ErrUnsupportedFormat)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	img, err := dec(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return ToRGBA(img), nil
}

// ToRGBA converts any image to *image.RGBA with its origin at (0, 0).
func ToRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	if rgba, ok := src.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
