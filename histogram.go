package buddhabrot

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Histogram is a width×height grid of hit counts, row-major.
// Counts only ever grow and saturate at math.MaxUint32 instead of wrapping.
// Increment and Add are safe for concurrent use.
type Histogram struct {
	Width, Height int
	cells         []uint32
}

// NewHistogram allocates a zero-filled grid.
func NewHistogram(width, height int) *Histogram {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("histogram dimensions must be positive, got %dx%d", width, height))
	}
	return &Histogram{Width: width, Height: height, cells: make([]uint32, width*height)}
}

// Increment adds one hit to (x, y). Out-of-range cells are ignored.
func (h *Histogram) Increment(x, y int) { h.Add(x, y, 1) }

// Add adds n hits to (x, y). Out-of-range cells are ignored.
func (h *Histogram) Add(x, y int, n uint32) {
	if x < 0 || x >= h.Width || y < 0 || y >= h.Height {
		return
	}
	addSaturating(&h.cells[y*h.Width+x], n)
}

func addSaturating(cell *uint32, n uint32) {
	for {
		old := atomic.LoadUint32(cell)
		sum := old + n
		if sum < old {
			sum = math.MaxUint32
		}
		if sum == old || atomic.CompareAndSwapUint32(cell, old, sum) {
			return
		}
	}
}

// Count reads one cell; out-of-range cells read as zero.
func (h *Histogram) Count(x, y int) uint32 {
	if x < 0 || x >= h.Width || y < 0 || y >= h.Height {
		return 0
	}
	return atomic.LoadUint32(&h.cells[y*h.Width+x])
}

// Counts returns a copy of the grid, row-major.
func (h *Histogram) Counts() []uint32 {
	out := make([]uint32, len(h.cells))
	for i := range h.cells {
		out[i] = atomic.LoadUint32(&h.cells[i])
	}
	return out
}

// Total is the sum over all cells.
func (h *Histogram) Total() uint64 {
	var sum uint64
	for i := range h.cells {
		sum += uint64(atomic.LoadUint32(&h.cells[i]))
	}
	return sum
}

// Max is the largest cell value.
func (h *Histogram) Max() uint32 {
	var m uint32
	for i := range h.cells {
		if v := atomic.LoadUint32(&h.cells[i]); v > m {
			m = v
		}
	}
	return m
}

// Equal reports whether both grids have the same shape and counts.
func (h *Histogram) Equal(o *Histogram) bool {
	if h.Width != o.Width || h.Height != o.Height {
		return false
	}
	for i := range h.cells {
		if atomic.LoadUint32(&h.cells[i]) != atomic.LoadUint32(&o.cells[i]) {
			return false
		}
	}
	return true
}

// Histograms holds one independent grid per tier.
type Histograms [NumTiers]*Histogram

// NewHistograms allocates a zeroed grid for every tier.
func NewHistograms(width, height int) *Histograms {
	var hs Histograms
	for _, t := range Tiers {
		hs[t] = NewHistogram(width, height)
	}
	return &hs
}

// Accumulate increments (x, y) in the grid of tier.
func (hs *Histograms) Accumulate(tier Tier, x, y int) { hs.AccumulateN(tier, x, y, 1) }

// AccumulateN adds n hits to (x, y) in the grid of tier.
func (hs *Histograms) AccumulateN(tier Tier, x, y int, n uint32) {
	if !tier.valid() || hs[tier] == nil {
		return
	}
	hs[tier].Add(x, y, n)
}

// Tier returns the grid of t.
func (hs *Histograms) Tier(t Tier) *Histogram { return hs[t] }

// For binds one tier of the set as an Accumulator.
func (hs *Histograms) For(t Tier) Accumulator { return tierAccumulator{hs: hs, tier: t} }

type tierAccumulator struct {
	hs   *Histograms
	tier Tier
}

func (a tierAccumulator) Increment(x, y int)        { a.hs.Accumulate(a.tier, x, y) }
func (a tierAccumulator) Add(x, y int, n uint32) { a.hs.AccumulateN(a.tier, x, y, n) }
