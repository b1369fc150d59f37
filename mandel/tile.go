package mandel

import (
	"image"
	"image/color"
	"math"

	buddhabrot "github.com/Magnoblitz/buddhabrot-rendering"
)

// RenderTile renders the part of an imgW × imgH view of region covered by
// tile, with smooth iteration colouring and an orbit trap on the imaginary
// axis. The returned image keeps global coordinates (tile.Min .. tile.Max).
func RenderTile(r buddhabrot.Region, tile image.Rectangle, imgW, imgH, maxIter int) *image.RGBA {
	img := image.NewRGBA(tile)

	for py := tile.Min.Y; py < tile.Max.Y; py++ {
		// row 0 is the top of the view
		yf := r.ImMax - (float64(py)/float64(imgH))*(r.ImMax-r.ImMin)

		for px := tile.Min.X; px < tile.Max.X; px++ {
			xf := r.ReMin + (float64(px)/float64(imgW))*(r.ReMax-r.ReMin)

			mu, trap := SmoothOrbit(xf, yf, maxIter)

			var col color.RGBA
			if mu >= float64(maxIter) {
				col = color.RGBA{A: 255}
			} else {
				tnorm := math.Exp(-5 * trap)
				hue := math.Mod(mu*0.02+tnorm*0.3, 1.0)
				col = hsv(hue, 1, 1)
			}

			img.SetRGBA(px, py, col)
		}
	}

	return img
}

// RenderRegion assembles a full colour preview of region from tiles.
func RenderRegion(r buddhabrot.Region, imgW, imgH, maxIter int) (*image.RGBA, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := (Params{Width: imgW, Height: imgH, MaxIter: maxIter, Camera: DefaultCamera}).Validate(); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, imgW, imgH))
	forEachTile(img.Bounds(), 64, func(tile image.Rectangle) {
		t := RenderTile(r, tile, imgW, imgH, maxIter)
		// tiles are disjoint, so concurrent copies never overlap
		for y := tile.Min.Y; y < tile.Max.Y; y++ {
			copy(img.Pix[img.PixOffset(tile.Min.X, y):img.PixOffset(tile.Max.X, y)],
				t.Pix[t.PixOffset(tile.Min.X, y):t.PixOffset(tile.Max.X, y)])
		}
	})
	return img, nil
}

// SmoothOrbit returns the smooth (fractional) escape count of c and the
// closest approach of its orbit to the imaginary axis.
func SmoothOrbit(cr, ci float64, maxIter int) (smooth float64, trap float64) {
	var zr, zi float64
	minTrap := math.MaxFloat64

	for i := 0; i < maxIter; i++ {
		zr, zi = buddhabrot.Standard.Step(zr, zi, cr, ci)

		// trap: distance to Re=0
		if d := math.Abs(zr); d < minTrap {
			minTrap = d
		}

		if m2 := zr*zr + zi*zi; m2 > 4 {
			smooth = float64(i) + 1 - math.Log(math.Log(math.Sqrt(m2)))/math.Log(2)
			return smooth, minTrap
		}
	}

	// Inside the set
	return float64(maxIter), minTrap
}

// Simple HSV → RGB
func hsv(h, s, v float64) color.RGBA {
	h = math.Mod(h, 1)
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}
