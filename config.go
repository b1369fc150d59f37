package buddhabrot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
)

const (
	DefaultWidth     = 800
	DefaultHeight    = 800
	DefaultSamples   = 50_000_000
	DefaultBatchSize = 4096
)

// Config describes one render.
type Config struct {
	Width   int `json:"width"`
	Height  int `json:"height"`
	Samples int `json:"samples"` // drawn per tier

	Region Region `json:"region"`
	// RegionName, when set, replaces Region with a preset.
	RegionName string  `json:"regionName,omitempty"`
	Variant    Variant `json:"variant"`

	Tiers    [NumTiers]TierConfig `json:"tiers"` // low, mid, high
	Channels ChannelMap           `json:"channels"`

	Workers          int  `json:"workers,omitempty"`   // 0 = GOMAXPROCS
	BatchSize        int  `json:"batchSize,omitempty"` // samples per scheduled batch
	DecorrelateTiers bool `json:"decorrelateTiers,omitempty"`
	// Supersample renders at N times the resolution and downscales.
	Supersample int `json:"supersample,omitempty"`

	Output string `json:"output,omitempty"`
}

// DefaultConfig mirrors the classic 800x800 nebula render.
func DefaultConfig() Config {
	return Config{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Samples:     DefaultSamples,
		Region:      Full,
		Variant:     Standard,
		Tiers:       DefaultTiers(),
		Channels:    DefaultChannels,
		BatchSize:   DefaultBatchSize,
		Supersample: 1,
		Output:      "buddhabrot.png",
	}
}

// LoadConfig reads a JSON file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.resolve(); err != nil {
		return cfg, err
	}
	Logger().Debug("config loaded", "path", path, "width", cfg.Width, "height", cfg.Height,
		"samples", cfg.Samples, "region", cfg.Region.String(), "variant", cfg.Variant.String())
	return cfg, nil
}

func (c *Config) resolve() error {
	if c.RegionName == "" {
		return nil
	}
	r, err := RegionByName(c.RegionName)
	if err != nil {
		return &ConfigError{Field: "regionName", Reason: err.Error()}
	}
	c.Region = r
	return nil
}

// Validate rejects configurations that cannot produce an image.
// It runs before any sampling work starts.
func (c Config) Validate() error {
	if c.Width <= 0 {
		return &ConfigError{Field: "width", Reason: fmt.Sprintf("must be > 0, got %d", c.Width)}
	}
	if c.Height <= 0 {
		return &ConfigError{Field: "height", Reason: fmt.Sprintf("must be > 0, got %d", c.Height)}
	}
	if c.Samples <= 0 {
		return &ConfigError{Field: "samples", Reason: fmt.Sprintf("must be > 0, got %d", c.Samples)}
	}
	if err := c.Region.Validate(); err != nil {
		return err
	}
	if c.Variant < Standard || c.Variant > BurningShip {
		return &ConfigError{Field: "variant", Reason: c.Variant.String()}
	}
	for _, t := range Tiers {
		tc := c.Tiers[t]
		if tc.MaxIter <= 0 {
			return &ConfigError{Field: t.String() + ".maxIter", Reason: fmt.Sprintf("must be > 0, got %d", tc.MaxIter)}
		}
		if err := tc.Tonemap.Validate(); err != nil {
			var ce *ConfigError
			if errors.As(err, &ce) {
				return &ConfigError{Field: t.String() + "." + ce.Field, Reason: ce.Reason}
			}
			return err
		}
	}
	if err := c.Channels.validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return &ConfigError{Field: "workers", Reason: fmt.Sprintf("must be >= 0, got %d", c.Workers)}
	}
	if c.BatchSize < 0 {
		return &ConfigError{Field: "batchSize", Reason: fmt.Sprintf("must be >= 0, got %d", c.BatchSize)}
	}
	if c.Supersample < 0 {
		return &ConfigError{Field: "supersample", Reason: fmt.Sprintf("must be >= 0, got %d", c.Supersample)}
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (c Config) batchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return DefaultBatchSize
}

func (c Config) supersample() int {
	if c.Supersample > 1 {
		return c.Supersample
	}
	return 1
}

// gridSize is the histogram resolution, including supersampling.
func (c Config) gridSize() (w, h int) {
	ss := c.supersample()
	return c.Width * ss, c.Height * ss
}
