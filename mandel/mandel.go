// Package mandel is a plain escape-time renderer: every pixel is shaded by
// the number of iterations its point needs to escape.
package mandel

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"

	buddhabrot "github.com/Magnoblitz/buddhabrot-rendering"
)

// Camera positions the view. Zoom 1 fits the imaginary range [-1,1] into the image height.
type Camera struct {
	X, Y float64
	Zoom float64
}

// DefaultCamera frames the whole set.
var DefaultCamera = Camera{X: -0.5, Y: 0, Zoom: 0.8}

type Params struct {
	Width, Height int
	MaxIter       int
	Camera        Camera
	Variant       buddhabrot.Variant
}

func DefaultParams() Params {
	return Params{Width: 512, Height: 512, MaxIter: 40, Camera: DefaultCamera}
}

func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return &buddhabrot.ConfigError{Field: "size", Reason: fmt.Sprintf("must be positive, got %dx%d", p.Width, p.Height)}
	}
	if p.MaxIter <= 0 {
		return &buddhabrot.ConfigError{Field: "maxIter", Reason: fmt.Sprintf("must be > 0, got %d", p.MaxIter)}
	}
	if !(p.Camera.Zoom > 0) {
		return &buddhabrot.ConfigError{Field: "zoom", Reason: fmt.Sprintf("must be > 0, got %g", p.Camera.Zoom)}
	}
	return nil
}

// point maps pixel (x, y) into the complex plane.
func (p Params) point(x, y int) (cr, ci float64) {
	h := float64(p.Height)
	cr = (float64(x*2-p.Width))/h/p.Camera.Zoom + p.Camera.X
	ci = (float64(y*2-p.Height))/h/p.Camera.Zoom + p.Camera.Y
	return cr, ci
}

// Iterations counts the steps taken before |z|^2 exceeds 4. The count
// stops at the last loop index, maxIter-1, so points of the set share
// the value of points escaping on the final step.
func Iterations(cr, ci float64, maxIter int, v buddhabrot.Variant) int {
	var zr, zi float64
	last := maxIter - 1
	for i := 0; i < last; i++ {
		if float64(zr*zr)+float64(zi*zi) > 4 {
			return i
		}
		zr, zi = v.Step(zr, zi, cr, ci)
	}
	return last
}

// Shade maps an iteration count to a gray level.
func Shade(n, maxIter int) uint8 {
	return uint8(float64(n) / float64(maxIter) * 255)
}

// Render shades every pixel. Tiles are rendered concurrently; the result
// does not depend on scheduling.
func Render(p Params) (*image.Gray, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	forEachTile(img.Bounds(), 64, func(tile image.Rectangle) {
		for y := tile.Min.Y; y < tile.Max.Y; y++ {
			for x := tile.Min.X; x < tile.Max.X; x++ {
				cr, ci := p.point(x, y)
				img.SetGray(x, y, color.Gray{Y: Shade(Iterations(cr, ci, p.MaxIter, p.Variant), p.MaxIter)})
			}
		}
	})
	buddhabrot.Logger().Info("mandelbrot rendered", "width", p.Width, "height", p.Height, "maxIter", p.MaxIter)
	return img, nil
}

// forEachTile runs fn over every tile of r on GOMAXPROCS goroutines.
func forEachTile(r image.Rectangle, size int, fn func(image.Rectangle)) {
	tiles := splitRect(r, size, size)
	ch := make(chan image.Rectangle)
	var wg sync.WaitGroup
	workers := min(runtime.GOMAXPROCS(0), len(tiles))
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for t := range ch {
				fn(t)
			}
		}()
	}
	for _, t := range tiles {
		ch <- t
	}
	close(ch)
	wg.Wait()
}

// splitRect splits r into tiles of size tileW × tileH.
// Tiles at the right and bottom edges are smaller if r is not divisible.
func splitRect(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	if tileW <= 0 || tileH <= 0 {
		panic("tile dimensions must be positive")
	}

	w := r.Dx()
	h := r.Dy()

	var tiles []image.Rectangle

	for oy := 0; oy < h; oy += tileH {
		th := min(tileH, h-oy)
		for ox := 0; ox < w; ox += tileW {
			tw := min(tileW, w-ox)
			tiles = append(tiles, image.Rect(
				r.Min.X+ox,
				r.Min.Y+oy,
				r.Min.X+ox+tw,
				r.Min.Y+oy+th,
			))
		}
	}

	return tiles
}
