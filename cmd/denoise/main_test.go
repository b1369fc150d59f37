package main

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	buddhabrot "github.com/Magnoblitz/buddhabrot-rendering"
	"github.com/Magnoblitz/buddhabrot-rendering/denoise"
)

func TestRunDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "noisy.png")
	src := image.NewGray(image.Rect(0, 0, 20, 16))
	for i := range src.Pix {
		src.Pix[i] = uint8(100 + (i*37)%21 - 10)
	}
	src.SetGray(0, 0, color.Gray{Y: 100})
	if err := buddhabrot.Save(in, src); err != nil {
		t.Fatal(err)
	}

	if err := run([]string{"-search", "7", "-template", "3", in}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "noisy-denoised.png")); err != nil {
		t.Fatal(err)
	}
}

func TestRunErrors(t *testing.T) {
	if err := run([]string{filepath.Join(t.TempDir(), "missing.png")}); !errors.Is(err, denoise.ErrImageNotFound) {
		t.Errorf("missing input: err = %v, want ErrImageNotFound", err)
	}
	if err := run([]string{"-search", "4", "x.png"}); !errors.Is(err, denoise.ErrInvalidParams) {
		t.Errorf("even window: err = %v, want ErrInvalidParams", err)
	}
	if err := run(nil); err == nil {
		t.Error("run without input succeeded")
	}
}
