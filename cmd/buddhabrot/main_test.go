package main

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	buddhabrot "github.com/Magnoblitz/buddhabrot-rendering"
)

func TestParseArgsDefaults(t *testing.T) {
	opts, err := parseArgs(nil)
	if err != nil {
		t.Fatal(err)
	}
	def := buddhabrot.DefaultConfig()
	if opts.cfg.Width != def.Width || opts.cfg.Samples != def.Samples || opts.cfg.Region != def.Region {
		t.Errorf("parseArgs(nil) = %+v, want defaults", opts.cfg)
	}
	if opts.denoise || opts.tier != "" {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestParseArgsOverrides(t *testing.T) {
	opts, err := parseArgs([]string{
		"-width", "64", "-height", "48", "-samples", "1000",
		"-region", "seahorse-valley", "-variant", "burning-ship",
		"-profile", "classic", "-channels", "low,mid,high", "-supersample", "2",
	})
	if err != nil {
		t.Fatal(err)
	}
	cfg := opts.cfg
	if cfg.Width != 64 || cfg.Height != 48 || cfg.Samples != 1000 || cfg.Supersample != 2 {
		t.Errorf("size flags not applied: %+v", cfg)
	}
	if cfg.Region != buddhabrot.SeahorseValley {
		t.Errorf("Region = %v, want %v", cfg.Region, buddhabrot.SeahorseValley)
	}
	if cfg.Variant != buddhabrot.BurningShip {
		t.Errorf("Variant = %v", cfg.Variant)
	}
	if cfg.Tiers[buddhabrot.TierHigh].MaxIter != 800 {
		t.Errorf("classic profile not applied: %+v", cfg.Tiers)
	}
	want := buddhabrot.ChannelMap{buddhabrot.TierLow, buddhabrot.TierMid, buddhabrot.TierHigh}
	if cfg.Channels != want {
		t.Errorf("Channels = %v, want %v", cfg.Channels, want)
	}
}

func TestParseArgsFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	if err := os.WriteFile(path, []byte(`{"width": 100, "height": 100, "samples": 10}`), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err := parseArgs([]string{"-config", path, "-samples", "20"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.cfg.Width != 100 || opts.cfg.Samples != 20 {
		t.Errorf("got width %d samples %d, want 100 and 20", opts.cfg.Width, opts.cfg.Samples)
	}
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"region", []string{"-region", "nowhere"}, buddhabrot.ErrUnknownRegion},
		{"variant", []string{"-variant", "cubic"}, buddhabrot.ErrUnknownVariant},
		{"profile", []string{"-profile", "loud"}, buddhabrot.ErrInvalidConfig},
		{"channels", []string{"-channels", "red"}, buddhabrot.ErrInvalidConfig},
		{"tier", []string{"-tier", "top"}, buddhabrot.ErrUnknownTier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args)
			if !errors.Is(err, tt.want) {
				t.Errorf("parseArgs(%v) error = %v, want %v", tt.args, err, tt.want)
			}
		})
	}
}

func TestDenoisedPath(t *testing.T) {
	if got := denoisedPath("out/img.tiff"); got != "out/img-denoised.tiff" {
		t.Errorf("denoisedPath = %q", got)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "b.png")
	err := run([]string{
		"-width", "24", "-height", "24", "-samples", "3000", "-profile", "classic",
		"-workers", "3", "-out", out, "-denoise", "-denoise-search", "5", "-denoise-template", "3",
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{out, filepath.Join(dir, "b-denoised.png")} {
		f, err := os.Open(p)
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if b := img.Bounds(); b.Dx() != 24 || b.Dy() != 24 {
			t.Errorf("%s bounds = %v", p, b)
		}
	}
}

func TestRunSingleTier(t *testing.T) {
	out := filepath.Join(t.TempDir(), "low.png")
	if err := run([]string{"-width", "16", "-height", "16", "-samples", "500", "-profile", "classic", "-tier", "low", "-out", out}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}

func TestParseArgsRejectsUnknownOutputFormat(t *testing.T) {
	if _, err := parseArgs([]string{"-out", "render.jpg"}); !errors.Is(err, buddhabrot.ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}
