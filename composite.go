package buddhabrot

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
)

// ChannelMap names the tier feeding R, G and B, in that order.
type ChannelMap [3]Tier

// DefaultChannels puts high in red, mid in green and low in blue.
// Swapping high and low gives a fiery look.
var DefaultChannels = ChannelMap{TierHigh, TierMid, TierLow}

// ParseChannelMap reads "high,mid,low" style lists.
func ParseChannelMap(s string) (ChannelMap, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return ChannelMap{}, &ConfigError{Field: "channels", Reason: fmt.Sprintf("want 3 tiers, got %q", s)}
	}
	var cm ChannelMap
	for i, p := range parts {
		t, err := ParseTier(p)
		if err != nil {
			return ChannelMap{}, &ConfigError{Field: "channels", Reason: err.Error()}
		}
		cm[i] = t
	}
	return cm, nil
}

func (cm ChannelMap) String() string {
	return cm[0].String() + "," + cm[1].String() + "," + cm[2].String()
}

func (cm ChannelMap) MarshalText() ([]byte, error) { return []byte(cm.String()), nil }

func (cm *ChannelMap) UnmarshalText(b []byte) error {
	p, err := ParseChannelMap(string(b))
	if err != nil {
		return err
	}
	*cm = p
	return nil
}

func (cm ChannelMap) validate() error {
	for _, t := range cm {
		if !t.valid() {
			return &ConfigError{Field: "channels", Reason: fmt.Sprintf("invalid tier %v", t)}
		}
	}
	return nil
}

// Quantize maps t in [0,1] to round(t*255), clamped to [0,255].
func Quantize(t float64) uint8 {
	x := math.Round(t * 255)
	if !(x > 0) {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}

// Composite stacks three tonemapped layers into an opaque RGB image.
func Composite(layers [NumTiers]*Intensity, cm ChannelMap) (*image.NRGBA, error) {
	if err := cm.validate(); err != nil {
		return nil, err
	}
	ref := layers[cm[0]]
	for _, t := range cm {
		l := layers[t]
		if l == nil {
			return nil, fmt.Errorf("composite: tier %s has no layer", t)
		}
		if l.Width != ref.Width || l.Height != ref.Height {
			return nil, fmt.Errorf("composite: tier %s is %dx%d, want %dx%d", t, l.Width, l.Height, ref.Width, ref.Height)
		}
	}

	r, g, b := layers[cm[0]].Quantize(), layers[cm[1]].Quantize(), layers[cm[2]].Quantize()
	img := image.NewNRGBA(image.Rect(0, 0, ref.Width, ref.Height))
	for y := 0; y < ref.Height; y++ {
		rowOff := y * img.Stride
		for x := 0; x < ref.Width; x++ {
			i := y*ref.Width + x
			p := rowOff + x*4
			img.Pix[p+0] = r[i]
			img.Pix[p+1] = g[i]
			img.Pix[p+2] = b[i]
			img.Pix[p+3] = 255
		}
	}
	return img, nil
}

// Grayscale renders a single layer as an 8-bit gray image.
func Grayscale(layer *Intensity) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, layer.Width, layer.Height))
	for y := 0; y < layer.Height; y++ {
		for x := 0; x < layer.Width; x++ {
			img.SetGray(x, y, color.Gray{Y: Quantize(layer.At(x, y))})
		}
	}
	return img
}
