package buddhabrot

import (
	"fmt"
	"strings"
)

// Variant selects how z is folded before squaring.
type Variant int

const (
	// Standard is z <- z^2 + c.
	Standard Variant = iota
	// Tricorn negates the imaginary part first (conjugate map).
	Tricorn
	// BurningShip takes the absolute value of both parts first.
	BurningShip
)

func (v Variant) String() string {
	switch v {
	case Standard:
		return "standard"
	case Tricorn:
		return "tricorn"
	case BurningShip:
		return "burning-ship"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant accepts the names printed by String.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "mandelbrot":
		return Standard, nil
	case "tricorn", "mandelbar":
		return Tricorn, nil
	case "burning-ship", "burningship", "burning_ship":
		return BurningShip, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

func (v Variant) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Variant) UnmarshalText(b []byte) error {
	p, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// Step applies one iteration of the map. Both classifier passes use it.
// The explicit float64 conversions keep the compiler from fusing
// multiply-adds.
func (v Variant) Step(zr, zi, cr, ci float64) (float64, float64) {
	switch v {
	case Tricorn:
		zi = -zi
	case BurningShip:
		if zr < 0 {
			zr = -zr
		}
		if zi < 0 {
			zi = -zi
		}
	}
	return float64(zr*zr) - float64(zi*zi) + cr, float64(2*zr*zi) + ci
}

// EscapeTime iterates from z=0 at most maxIter times and returns the
// 1-indexed iteration at which |z|^2 first exceeds 4, or 0 if it never does.
func EscapeTime(cr, ci float64, maxIter int, v Variant) int {
	var zr, zi float64
	for it := 1; it <= maxIter; it++ {
		zr, zi = v.Step(zr, zi, cr, ci)
		if float64(zr*zr)+float64(zi*zi) > 4 {
			return it
		}
	}
	return 0
}

// TraceOrbit re-iterates from z=0 exactly escape times and hands every
// iterate, including the escaping one, to visit.
func TraceOrbit(cr, ci float64, escape int, v Variant, visit func(zr, zi float64)) {
	var zr, zi float64
	for it := 0; it < escape; it++ {
		zr, zi = v.Step(zr, zi, cr, ci)
		visit(zr, zi)
	}
}

// Classifier runs both passes for one tier and feeds in-bounds orbit
// points to an Accumulator.
type Classifier struct {
	Region  Region
	MaxIter int
	Variant Variant

	proj Projector
	acc  Accumulator
}

// NewClassifier binds a classifier to the grid behind acc.
func NewClassifier(region Region, width, height, maxIter int, v Variant, acc Accumulator) *Classifier {
	return &Classifier{
		Region:  region,
		MaxIter: maxIter,
		Variant: v,
		proj:    region.Projector(width, height),
		acc:     acc,
	}
}

// Classify samples index idx and accumulates its orbit if it escapes.
// It returns the escape iteration (0 for points of the set).
func (c *Classifier) Classify(idx uint64) int {
	cr, ci := c.Region.Point(SamplePair(idx))
	escape := EscapeTime(cr, ci, c.MaxIter, c.Variant)
	if escape == 0 {
		return 0
	}
	TraceOrbit(cr, ci, escape, c.Variant, func(zr, zi float64) {
		if x, y, ok := c.proj.Project(zr, zi); ok {
			c.acc.Increment(x, y)
		}
	})
	return escape
}
