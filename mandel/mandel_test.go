package mandel

import (
	"bytes"
	"errors"
	"image"
	"testing"

	buddhabrot "github.com/Magnoblitz/buddhabrot-rendering"
)

func TestIterations(t *testing.T) {
	tests := []struct {
		name   string
		cr, ci float64
		want   int
	}{
		{"origin", 0, 0, 39},
		{"far", 5, 0, 1},
		{"cardioid", -0.5, 0, 39},
		{"just outside", 0.5, 0, 5},
	}
	for _, tt := range tests {
		if got := Iterations(tt.cr, tt.ci, 40, buddhabrot.Standard); got != tt.want {
			t.Errorf("%s: Iterations = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestIterationsInSetStopsAtLastIndex(t *testing.T) {
	for _, maxIter := range []int{1, 2, 40, 200} {
		if got := Iterations(0, 0, maxIter, buddhabrot.Standard); got != maxIter-1 {
			t.Errorf("maxIter %d: Iterations(0,0) = %d, want %d", maxIter, got, maxIter-1)
		}
	}
	if got := Shade(Iterations(-0.5, 0, 40, buddhabrot.Standard), 40); got != 248 {
		t.Errorf("in-set shade = %d, want 248", got)
	}
}

func TestShade(t *testing.T) {
	if Shade(0, 40) != 0 || Shade(40, 40) != 255 || Shade(20, 40) != 127 {
		t.Errorf("Shade = %d %d %d", Shade(0, 40), Shade(40, 40), Shade(20, 40))
	}
}

func TestRenderDeterministic(t *testing.T) {
	p := DefaultParams()
	p.Width, p.Height = 130, 70
	a, err := Render(p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Render(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatal("two renders differ")
	}
	// the camera centre sits inside the set: 39/40 of full white
	if got := a.GrayAt(65, 35).Y; got != 248 {
		t.Errorf("centre = %d, want 248", got)
	}
	if got := a.GrayAt(0, 0).Y; got >= 255/4 {
		t.Errorf("corner = %d, want a fast escape", got)
	}
}

func TestRenderValidates(t *testing.T) {
	for _, p := range []Params{
		{Width: 0, Height: 10, MaxIter: 10, Camera: DefaultCamera},
		{Width: 10, Height: 10, MaxIter: 0, Camera: DefaultCamera},
		{Width: 10, Height: 10, MaxIter: 10},
	} {
		if _, err := Render(p); !errors.Is(err, buddhabrot.ErrInvalidConfig) {
			t.Errorf("Render(%+v) err = %v, want ErrInvalidConfig", p, err)
		}
	}
}

func TestSplitRect(t *testing.T) {
	tiles := splitRect(image.Rect(10, 20, 110, 70), 64, 32)
	want := []image.Rectangle{
		image.Rect(10, 20, 74, 52),
		image.Rect(74, 20, 110, 52),
		image.Rect(10, 52, 74, 70),
		image.Rect(74, 52, 110, 70),
	}
	if len(tiles) != len(want) {
		t.Fatalf("got %d tiles, want %d", len(tiles), len(want))
	}
	for i := range want {
		if tiles[i] != want[i] {
			t.Errorf("tile %d = %v, want %v", i, tiles[i], want[i])
		}
	}
}

func TestRenderRegion(t *testing.T) {
	img, err := RenderRegion(buddhabrot.Full, 100, 80, 200)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
		t.Fatalf("bounds = %v", b)
	}
	// (-0.5, 0) is in the set and drawn black
	if c := img.RGBAAt(50, 40); c.R != 0 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Errorf("centre = %+v, want opaque black", c)
	}
	// a far corner escapes and gets a colour
	if c := img.RGBAAt(0, 0); c.R == 0 && c.G == 0 && c.B == 0 {
		t.Errorf("corner = %+v, want coloured", c)
	}

	tile := RenderTile(buddhabrot.Full, image.Rect(40, 30, 60, 50), 100, 80, 200)
	if tile.Bounds() != image.Rect(40, 30, 60, 50) {
		t.Fatalf("tile bounds = %v", tile.Bounds())
	}
	if tile.RGBAAt(50, 40) != img.RGBAAt(50, 40) {
		t.Error("tile pixel differs from assembled image")
	}

	if _, err := RenderRegion(buddhabrot.Region{ReMin: 1, ReMax: 0, ImMin: 0, ImMax: 1}, 10, 10, 10); !errors.Is(err, buddhabrot.ErrInvalidConfig) {
		t.Errorf("degenerate region err = %v", err)
	}
}
