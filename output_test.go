package buddhabrot

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	return img
}

func TestEncodePNGAndTIFF(t *testing.T) {
	src := testImage()
	for _, f := range []Format{FormatPNG, FormatTIFF} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, src, f); err != nil {
				t.Fatal(err)
			}
			var (
				got image.Image
				err error
			)
			if f == FormatPNG {
				got, err = png.Decode(&buf)
			} else {
				got, err = tiff.Decode(&buf)
			}
			if err != nil {
				t.Fatal(err)
			}
			r, g, b, _ := got.At(1, 1).RGBA()
			if r>>8 != 200 || g>>8 != 100 || b>>8 != 50 {
				t.Errorf("pixel (1,1) = %d,%d,%d after round trip", r>>8, g>>8, b>>8)
			}
		})
	}
	if err := Encode(&bytes.Buffer{}, src, "bmp"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("bmp err = %v, want ErrUnknownFormat", err)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "nested/b.tiff", "c.TIF"} {
		path := filepath.Join(dir, name)
		if err := Save(path, testImage()); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
		if st, err := os.Stat(path); err != nil || st.Size() == 0 {
			t.Fatalf("%s not written: %v", name, err)
		}
	}
	if err := Save(filepath.Join(dir, "d.jpg"), testImage()); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("jpg err = %v, want ErrUnknownFormat", err)
	}
}
