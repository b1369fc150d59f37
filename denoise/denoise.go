// Package denoise implements a non-local-means filter for rendered images.
//
// Luma and chroma are filtered separately on YCbCr planes: luma with
// Params.H and both chroma planes with Params.HColor, the same split the
// usual colored NLM filters make.
package denoise

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"runtime"
	"sync"

	_ "golang.org/x/image/tiff"

	buddhabrot "github.com/Magnoblitz/buddhabrot-rendering"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrInvalidParams = errors.New("invalid denoise parameters")
)

// Params controls the filter strength and neighbourhood sizes.
type Params struct {
	// H is the luminance filter strength; larger removes more noise and detail.
	H float64
	// HColor is the same for the two chroma planes.
	HColor float64
	// TemplateWindow is the odd side length of the compared patches.
	TemplateWindow int
	// SearchWindow is the odd side length of the area searched for similar patches.
	SearchWindow int
}

// DefaultParams matches the common 10/10/7/21 setting.
func DefaultParams() Params {
	return Params{H: 10, HColor: 10, TemplateWindow: 7, SearchWindow: 21}
}

func (p Params) Validate() error {
	if p.H < 0 || p.HColor < 0 {
		return fmt.Errorf("%w: strengths must be >= 0, got h=%g hColor=%g", ErrInvalidParams, p.H, p.HColor)
	}
	if p.TemplateWindow <= 0 || p.TemplateWindow%2 == 0 {
		return fmt.Errorf("%w: template window must be odd and positive, got %d", ErrInvalidParams, p.TemplateWindow)
	}
	if p.SearchWindow <= 0 || p.SearchWindow%2 == 0 {
		return fmt.Errorf("%w: search window must be odd and positive, got %d", ErrInvalidParams, p.SearchWindow)
	}
	return nil
}

// File loads in, denoises it and writes the result to out. A missing or
// undecodable input yields an error wrapping ErrImageNotFound.
func File(in, out string, p Params) (image.Image, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	f, err := os.Open(in)
	if err != nil {
		return nil, fmt.Errorf("%w: could not load image %s: %v", ErrImageNotFound, in, err)
	}
	src, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: could not load image %s: %v", ErrImageNotFound, in, err)
	}

	dst, err := Denoise(src, p)
	if err != nil {
		return nil, err
	}
	if err := buddhabrot.Save(out, dst); err != nil {
		return nil, fmt.Errorf("save denoised image: %w", err)
	}
	return dst, nil
}

// Denoise returns a filtered copy of img.
func Denoise(img image.Image, p Params) (*image.NRGBA, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	yp, cb, cr := make([]float64, w*h), make([]float64, w*h), make([]float64, w*h)
	alpha := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			Y, Cb, Cr := color.RGBToYCbCr(c.R, c.G, c.B)
			i := y*w + x
			yp[i], cb[i], cr[i], alpha[i] = float64(Y), float64(Cb), float64(Cr), c.A
		}
	}

	tr, sr := p.TemplateWindow/2, p.SearchWindow/2
	yp = nlm(yp, w, h, p.H, tr, sr)
	cb = nlm(cb, w, h, p.HColor, tr, sr)
	cr = nlm(cr, w, h, p.HColor, tr, sr)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range yp {
		r, g, bl := color.YCbCrToRGB(toByte(yp[i]), toByte(cb[i]), toByte(cr[i]))
		out.Pix[i*4+0] = r
		out.Pix[i*4+1] = g
		out.Pix[i*4+2] = bl
		out.Pix[i*4+3] = alpha[i]
	}
	buddhabrot.Logger().Debug("denoised", "width", w, "height", h, "h", p.H, "hColor", p.HColor)
	return out, nil
}

func toByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// nlm filters one plane. For every search offset it builds the squared
// difference image against the shifted plane, box-filters it through an
// integral image to get patch distances, and accumulates weighted
// candidates. Offsets are spread over workers with private accumulators.
func nlm(plane []float64, w, h int, strength float64, tr, sr int) []float64 {
	if strength <= 0 || w == 0 || h == 0 {
		return plane
	}
	h2 := strength * strength

	type offset struct{ dx, dy int }
	offsets := make([]offset, 0, (2*sr+1)*(2*sr+1))
	for dy := -sr; dy <= sr; dy++ {
		for dx := -sr; dx <= sr; dx++ {
			offsets = append(offsets, offset{dx, dy})
		}
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(offsets) {
		workers = len(offsets)
	}
	sumW := make([][]float64, workers)
	sumWP := make([][]float64, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for wid := 0; wid < workers; wid++ {
		go func(wid int) {
			defer wg.Done()
			sw, swp := make([]float64, w*h), make([]float64, w*h)
			diff := make([]float64, w*h)
			integral := make([]float64, (w+1)*(h+1))
			for oi := wid; oi < len(offsets); oi += workers {
				o := offsets[oi]
				for y := 0; y < h; y++ {
					sy := clampInt(y+o.dy, 0, h-1)
					for x := 0; x < w; x++ {
						sx := clampInt(x+o.dx, 0, w-1)
						d := plane[y*w+x] - plane[sy*w+sx]
						diff[y*w+x] = d * d
					}
				}
				buildIntegral(diff, integral, w, h)
				for y := 0; y < h; y++ {
					sy := clampInt(y+o.dy, 0, h-1)
					y0, y1 := clampInt(y-tr, 0, h-1), clampInt(y+tr, 0, h-1)
					for x := 0; x < w; x++ {
						sx := clampInt(x+o.dx, 0, w-1)
						x0, x1 := clampInt(x-tr, 0, w-1), clampInt(x+tr, 0, w-1)
						n := float64((x1 - x0 + 1) * (y1 - y0 + 1))
						dist := boxSum(integral, w, x0, y0, x1, y1) / n
						weight := math.Exp(-dist / h2)
						sw[y*w+x] += weight
						swp[y*w+x] += weight * plane[sy*w+sx]
					}
				}
			}
			sumW[wid], sumWP[wid] = sw, swp
		}(wid)
	}
	wg.Wait()

	out := make([]float64, w*h)
	for i := range out {
		var tw, twp float64
		for wid := 0; wid < workers; wid++ {
			tw += sumW[wid][i]
			twp += sumWP[wid][i]
		}
		// the zero offset always contributes weight 1, so tw > 0
		out[i] = twp / tw
	}
	return out
}

// buildIntegral fills a (w+1)×(h+1) summed-area table of src.
func buildIntegral(src, dst []float64, w, h int) {
	stride := w + 1
	for x := 0; x <= w; x++ {
		dst[x] = 0
	}
	for y := 0; y < h; y++ {
		var row float64
		dst[(y+1)*stride] = 0
		for x := 0; x < w; x++ {
			row += src[y*w+x]
			dst[(y+1)*stride+x+1] = dst[y*stride+x+1] + row
		}
	}
}

// boxSum returns the sum over the inclusive rectangle [x0,x1]×[y0,y1].
func boxSum(integral []float64, w, x0, y0, x1, y1 int) float64 {
	stride := w + 1
	return integral[(y1+1)*stride+x1+1] - integral[y0*stride+x1+1] -
		integral[(y1+1)*stride+x0] + integral[y0*stride+x0]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
