package buddhabrot

import (
	"fmt"
	"strings"
)

// Tier is one of the three iteration-depth profiles.
type Tier int

const (
	TierLow Tier = iota
	TierMid
	TierHigh

	NumTiers = 3
)

// Tiers lists every tier in rendering order.
var Tiers = [NumTiers]Tier{TierLow, TierMid, TierHigh}

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMid:
		return "mid"
	case TierHigh:
		return "high"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

func (t Tier) valid() bool { return t >= TierLow && t <= TierHigh }

// ParseTier accepts "low", "mid" or "high".
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers {
		if strings.EqualFold(strings.TrimSpace(s), t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// TierConfig carries the escape bound and tonemap parameters of one tier.
type TierConfig struct {
	MaxIter int           `json:"maxIter"`
	Tonemap TonemapParams `json:"tonemap"`
}

// Profiles are named max-iteration presets for {low, mid, high}.
var Profiles = map[string][NumTiers]int{
	// high contrast nebula
	"nebula": {500, 5000, 20000},
	// traditional nebulabrot
	"classic": {50, 200, 800},
}

// DefaultTiers returns the "nebula" profile with the default tonemap curves.
func DefaultTiers() [NumTiers]TierConfig {
	iters := Profiles["nebula"]
	return [NumTiers]TierConfig{
		TierLow:  {MaxIter: iters[TierLow], Tonemap: TonemapParams{Exposure: 1, Deadzone: 0.65, Knee: 0.65}},
		TierMid:  {MaxIter: iters[TierMid], Tonemap: TonemapParams{Exposure: 1, Deadzone: 0.75, Knee: 0.75}},
		TierHigh: {MaxIter: iters[TierHigh], Tonemap: TonemapParams{Exposure: 1, Deadzone: 0.80, Knee: 0.80}},
	}
}

// ApplyProfile overwrites the max-iteration bounds with a named profile.
func (c *Config) ApplyProfile(name string) error {
	iters, ok := Profiles[strings.ToLower(name)]
	if !ok {
		return &ConfigError{Field: "profile", Reason: fmt.Sprintf("unknown profile %q", name)}
	}
	for _, t := range Tiers {
		c.Tiers[t].MaxIter = iters[t]
	}
	return nil
}

func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tier) UnmarshalText(b []byte) error {
	p, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = p
	return nil
}
