package texture

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/Faultbox/glprojects/pkg/mesh"
	"github.com/Faultbox/glprojects/pkg/scene"
)

// countingDecoder records decode calls and fails for paths listed in missing.
type countingDecoder struct {
	calls   map[string]int
	missing map[string]bool
}

func newCountingDecoder(missing ...string) *countingDecoder {
	d := &countingDecoder{calls: make(map[string]int), missing: make(map[string]bool)}
	for _, m := range missing {
		d.missing[m] = true
	}
	return d
}

func (d *countingDecoder) Decode(path string) (*image.RGBA, error) {
	d.calls[path]++
	if d.missing[filepath.Base(path)] {
		return nil, os.ErrNotExist
	}
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func (d *countingDecoder) total() int {
	n := 0
	for _, c := range d.calls {
		n += c
	}
	return n
}

func material(slots ...[2]string) *scene.Material {
	m := &scene.Material{Name: "test"}
	for _, s := range slots {
		m.AddTexture(mesh.TextureKind(s[1]), s[0])
	}
	return m
}

func TestResolver_SamePathReturnsSameRef(t *testing.T) {
	dec := newCountingDecoder()
	r := NewResolver("/assets", dec)

	first, err := r.ResolvePath("wood.png", mesh.Diffuse)
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	second, err := r.ResolvePath("wood.png", mesh.Diffuse)
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}

	if first != second {
		t.Error("expected identical TextureRef for the same path")
	}
	if dec.total() != 1 {
		t.Errorf("decode called %d times, want 1", dec.total())
	}
	if _, ok := dec.calls[filepath.Join("/assets", "wood.png")]; !ok {
		t.Errorf("decode not called with asset-relative path: %v", dec.calls)
	}
}

func TestResolver_MixedKindsShareCache(t *testing.T) {
	dec := newCountingDecoder()
	r := NewResolver("dir", dec)

	mat := material(
		[2]string{"wood.png", string(mesh.Diffuse)},
		[2]string{"wood.png", string(mesh.Specular)},
		[2]string{"metal.png", string(mesh.Specular)},
	)

	diffuse := r.Resolve(mat, mesh.Diffuse)
	specular := r.Resolve(mat, mesh.Specular)

	if len(diffuse) != 1 || len(specular) != 2 {
		t.Fatalf("got %d diffuse, %d specular refs", len(diffuse), len(specular))
	}
	if len(r.Cache()) != 2 {
		t.Errorf("cache has %d entries, want 2", len(r.Cache()))
	}
	if dec.total() != 2 {
		t.Errorf("decode called %d times, want 2", dec.total())
	}
	if r.Decodes() != 2 {
		t.Errorf("Decodes() = %d, want 2", r.Decodes())
	}
	if diffuse[0] != specular[0] {
		t.Error("wood.png should resolve to the cached diffuse ref")
	}
	if specular[0].Kind != mesh.Diffuse {
		t.Errorf("reused ref kind = %s, want first-resolved kind %s", specular[0].Kind, mesh.Diffuse)
	}

	paths := []string{r.Cache()[0].Path, r.Cache()[1].Path}
	if paths[0] != "wood.png" || paths[1] != "metal.png" {
		t.Errorf("cache order = %v", paths)
	}
}

func TestResolver_DecodeFailureSkipsSlot(t *testing.T) {
	dec := newCountingDecoder("missing.png")
	r := NewResolver("dir", dec)

	mat := material(
		[2]string{"missing.png", string(mesh.Diffuse)},
		[2]string{"ok.png", string(mesh.Diffuse)},
	)

	refs := r.Resolve(mat, mesh.Diffuse)
	if len(refs) != 1 || refs[0].Path != "ok.png" {
		t.Fatalf("expected only ok.png to resolve, got %v", refs)
	}

	_, err := r.ResolvePath("missing.png", mesh.Diffuse)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped ErrNotExist, got %v", err)
	}
	if dec.calls[filepath.Join("dir", "missing.png")] != 1 {
		t.Errorf("failed path decoded %d times, want 1", dec.calls[filepath.Join("dir", "missing.png")])
	}
}

func TestResolver_NilMaterial(t *testing.T) {
	r := NewResolver("", newCountingDecoder())
	if refs := r.Resolve(nil, mesh.Diffuse); refs != nil {
		t.Errorf("expected nil refs, got %v", refs)
	}
}

func TestImageDecoder_Formats(t *testing.T) {
	dir := t.TempDir()
	// Columns are uniform so the check holds whichever row order a format uses.
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		src.SetNRGBA(0, y, color.NRGBA{R: 255, A: 255})
		src.SetNRGBA(1, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		src.SetNRGBA(2, y, color.NRGBA{B: 255, A: 255})
	}

	writePNG(t, filepath.Join(dir, "a.png"), src)
	writeBMP(t, filepath.Join(dir, "a.bmp"), src)
	writeTGA(t, filepath.Join(dir, "a.tga"), src)

	for _, name := range []string{"a.png", "a.bmp", "a.tga"} {
		t.Run(name, func(t *testing.T) {
			img, err := ImageDecoder{}.Decode(filepath.Join(dir, name))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
				t.Fatalf("bounds = %v", img.Bounds())
			}
			if got := img.RGBAAt(0, 0); got.R != 255 || got.B != 0 {
				t.Errorf("pixel (0,0) = %v, want red", got)
			}
			if got := img.RGBAAt(2, 1); got.B != 255 || got.R != 0 {
				t.Errorf("pixel (2,1) = %v, want blue", got)
			}
		})
	}
}

func TestImageDecoder_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ImageDecoder{}.Decode(filepath.Join(dir, "a.xyz"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	_, err = ImageDecoder{}.Decode(filepath.Join(dir, "nope.png"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}

	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := (ImageDecoder{}).Decode(bad); err == nil {
		t.Error("expected error for corrupt png")
	}
}

func TestSupportedExtension(t *testing.T) {
	for _, ext := range []string{".png", ".JPG", ".tga", ".bmp", ".webp"} {
		if !SupportedExtension(ext) {
			t.Errorf("%s should be supported", ext)
		}
	}
	if SupportedExtension(".dds") {
		t.Error(".dds should not be supported")
	}
}

func TestToRGBA_OffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 8))
	src.SetRGBA(5, 5, color.RGBA{G: 200, A: 255})

	dst := ToRGBA(src)
	if dst.Bounds().Min != (image.Point{}) || dst.Bounds().Dx() != 2 || dst.Bounds().Dy() != 3 {
		t.Fatalf("bounds = %v", dst.Bounds())
	}
	if dst.RGBAAt(0, 0).G != 200 {
		t.Errorf("pixel not moved to origin: %v", dst.RGBAAt(0, 0))
	}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeBMP(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := bmp.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// writeTGA writes an uncompressed 24-bit top-to-bottom TGA.
func writeTGA(t *testing.T, path string, img *image.NRGBA) {
	t.Helper()
	b := img.Bounds()
	data := make([]byte, 18, 18+b.Dx()*b.Dy()*3)
	data[2] = 2
	data[12] = byte(b.Dx())
	data[13] = byte(b.Dx() >> 8)
	data[14] = byte(b.Dy())
	data[15] = byte(b.Dy() >> 8)
	data[16] = 24
	data[17] = 0x20
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			data = append(data, c.B, c.G, c.R)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}
