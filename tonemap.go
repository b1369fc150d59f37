package buddhabrot

import (
	"fmt"
	"math"
	"slices"
)

// TonemapParams shape the log/percentile curve of one tier.
type TonemapParams struct {
	// Exposure scales counts before log compression.
	Exposure float64 `json:"exposure"`
	// Deadzone is the percentile (0..1) clipped to black.
	Deadzone float64 `json:"deadzone"`
	// Knee is the percentile (0..1) of the floored grid mapped to 1.0.
	Knee float64 `json:"knee"`
}

func (p TonemapParams) Validate() error {
	if !(p.Exposure > 0) || math.IsInf(p.Exposure, 0) {
		return &ConfigError{Field: "exposure", Reason: fmt.Sprintf("must be > 0, got %g", p.Exposure)}
	}
	if !(p.Deadzone >= 0 && p.Deadzone < 1) {
		return &ConfigError{Field: "deadzone", Reason: fmt.Sprintf("must be in [0,1), got %g", p.Deadzone)}
	}
	if !(p.Knee >= 0 && p.Knee < 1) {
		return &ConfigError{Field: "knee", Reason: fmt.Sprintf("must be in [0,1), got %g", p.Knee)}
	}
	return nil
}

// Intensity is a width×height grid of values in [0,1], row-major.
type Intensity struct {
	Width, Height int
	Pix           []float64
}

func (in *Intensity) At(x, y int) float64 { return in.Pix[y*in.Width+x] }

// Quantize converts every value to 8 bits.
func (in *Intensity) Quantize() []uint8 {
	out := make([]uint8, len(in.Pix))
	for i, v := range in.Pix {
		out[i] = Quantize(v)
	}
	return out
}

// Percentile returns the q-quantile (q in [0,1]) of values using linear
// interpolation between the two closest ranks. values is not modified.
func Percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return percentileSorted(sorted, q)
}

func percentileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Tonemap converts raw counts into display intensities:
//
//  1. v = ln(1 + count*exposure)
//  2. subtract the deadzone percentile, clamping at 0
//  3. divide by the knee percentile of the floored grid when it is positive
//  4. clamp to [0,1]
//
// The normalisation is global: one floor and one scale per grid.
func Tonemap(h *Histogram, p TonemapParams) *Intensity {
	counts := h.Counts()
	pix := make([]float64, len(counts))
	for i, c := range counts {
		// huge exposures overflow to +Inf, and Inf-Inf below would be NaN
		pix[i] = math.Min(math.Log1p(float64(c)*p.Exposure), math.MaxFloat64)
	}

	floor := Percentile(pix, p.Deadzone)
	for i, v := range pix {
		v -= floor
		if v < 0 {
			v = 0
		}
		pix[i] = v
	}

	knee := Percentile(pix, p.Knee)
	if knee > 0 {
		for i := range pix {
			pix[i] /= knee
		}
	} else {
		Logger().Warn("tonemap: knee percentile not positive, skipping normalisation",
			"knee", p.Knee, "value", knee)
	}

	for i, v := range pix {
		pix[i] = clamp01(v)
	}
	Logger().Debug("tonemap", "floor", floor, "knee", knee, "exposure", p.Exposure)
	return &Intensity{Width: h.Width, Height: h.Height, Pix: pix}
}

// clamp01 maps NaN to 0.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
