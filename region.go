package buddhabrot

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Region is a rectangle in the complex plane.
type Region struct {
	ReMin float64 `json:"reMin"`
	ReMax float64 `json:"reMax"`
	ImMin float64 `json:"imMin"`
	ImMax float64 `json:"imMax"`
}

// Full covers the whole set and is the default sampling region.
var Full = Region{ReMin: -2.0, ReMax: 1.0, ImMin: -1.5, ImMax: 1.5}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Region{ReMin: -0.8, ReMax: -0.7, ImMin: 0.05, ImMax: 0.15}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Region{ReMin: -1.85, ReMax: -1.75, ImMin: -0.10, ImMax: -0.02}

	// Spiral Minibrot – small copy with tight spiral arms
	SpiralMinibrot = Region{ReMin: -0.7435, ReMax: -0.7420, ImMin: 0.1310, ImMax: 0.1325}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Region{ReMin: -0.7480, ReMax: -0.7450, ImMin: 0.0950, ImMax: 0.0980}

	// Valley of the Dragon – deep spiral filaments
	ValleyOfTheDragon = Region{ReMin: -0.7400, ReMax: -0.7350, ImMin: 0.1800, ImMax: 0.1850}

	// Minibrot in a Mini-Spiral – self-similar copy inside a spiral arm
	MinibrotInMiniSpiral = Region{ReMin: -1.7390, ReMax: -1.7375, ImMin: -0.0235, ImMax: -0.0220}
)

var namedRegions = map[string]Region{
	"full":                    Full,
	"seahorse-valley":         SeahorseValley,
	"elephant-valley":         ElephantValley,
	"spiral-minibrot":         SpiralMinibrot,
	"triple-spiral":           TripleSpiral,
	"valley-of-the-dragon":    ValleyOfTheDragon,
	"minibrot-in-mini-spiral": MinibrotInMiniSpiral,
}

// RegionByName looks up a preset region, case-insensitively.
func RegionByName(name string) (Region, error) {
	r, ok := namedRegions[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Region{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownRegion, name, strings.Join(RegionNames(), ", "))
	}
	return r, nil
}

// RegionNames lists the preset names in sorted order.
func RegionNames() []string {
	names := make([]string, 0, len(namedRegions))
	for n := range namedRegions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate reports a degenerate or non-finite rectangle.
func (r Region) Validate() error {
	for _, v := range []float64{r.ReMin, r.ReMax, r.ImMin, r.ImMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigError{Field: "region", Reason: fmt.Sprintf("non-finite bound in %v", r)}
		}
	}
	if r.ReMin >= r.ReMax {
		return &ConfigError{Field: "region", Reason: fmt.Sprintf("reMin %g >= reMax %g", r.ReMin, r.ReMax)}
	}
	if r.ImMin >= r.ImMax {
		return &ConfigError{Field: "region", Reason: fmt.Sprintf("imMin %g >= imMax %g", r.ImMin, r.ImMax)}
	}
	return nil
}

// Point maps two uniforms in [0,1) to a point inside the rectangle.
func (r Region) Point(r1, r2 float64) (re, im float64) {
	re = float64(r1*(r.ReMax-r.ReMin)) + r.ReMin
	im = float64(r2*(r.ImMax-r.ImMin)) + r.ImMin
	return re, im
}

func (r Region) String() string {
	return fmt.Sprintf("[%g,%g]x[%g,%g]", r.ReMin, r.ReMax, r.ImMin, r.ImMax)
}

// Projector maps complex values onto a width×height pixel grid.
// Row 0 is the ImMax edge so that the positive imaginary axis points up.
type Projector struct {
	Width, Height int

	reMin, imMax     float64
	reScale, imScale float64
}

// Projector precomputes the affine transform onto a width×height grid.
func (r Region) Projector(width, height int) Projector {
	return Projector{
		Width:   width,
		Height:  height,
		reMin:   r.ReMin,
		imMax:   r.ImMax,
		reScale: float64(width-1) / (r.ReMax - r.ReMin),
		imScale: float64(height-1) / (r.ImMax - r.ImMin),
	}
}

// Project returns the pixel holding (re, im); ok is false outside the grid.
// Coordinates are truncated toward zero, so values in (-1, 0) land in
// row or column 0.
func (p Projector) Project(re, im float64) (x, y int, ok bool) {
	fx := (re - p.reMin) * p.reScale
	fy := (p.imMax - im) * p.imScale
	// the comparison also rejects NaN and keeps int() within range
	if !(fx > -1 && fx < float64(p.Width) && fy > -1 && fy < float64(p.Height)) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}
