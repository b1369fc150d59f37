// Command buddhabrot renders a three-tier Buddhabrot and saves it as PNG or TIFF.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	buddhabrot "github.com/Magnoblitz/buddhabrot-rendering"
	"github.com/Magnoblitz/buddhabrot-rendering/denoise"
)

// main is the entry point for the renderer CLI.
func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

type options struct {
	cfg     buddhabrot.Config
	tier    string // render only this tier, as grayscale
	denoise bool
	nlm     denoise.Params
	verbose bool
}

// parseArgs builds the render configuration: defaults, then the JSON
// config file if any, then every flag that was set explicitly.
func parseArgs(args []string) (*options, error) {
	fs := flag.NewFlagSet("buddhabrot", flag.ContinueOnError)
	def := buddhabrot.DefaultConfig()
	nlm := denoise.DefaultParams()

	configPath := fs.String("config", "", "JSON config file")
	out := fs.String("out", def.Output, "output image (.png, .tif, .tiff)")
	width := fs.Int("width", def.Width, "image width in pixels")
	height := fs.Int("height", def.Height, "image height in pixels")
	samples := fs.Int("samples", def.Samples, "samples drawn per tier")
	region := fs.String("region", "full", "region preset: "+strings.Join(buddhabrot.RegionNames(), ", "))
	variant := fs.String("variant", def.Variant.String(), "iteration variant: standard, tricorn, burning-ship")
	profile := fs.String("profile", "nebula", "max-iteration profile: nebula, classic")
	channels := fs.String("channels", def.Channels.String(), "tiers feeding R,G,B")
	workers := fs.Int("workers", 0, "sampling goroutines (0 = GOMAXPROCS)")
	supersample := fs.Int("supersample", 1, "render at N times the resolution and downscale")
	decorrelate := fs.Bool("decorrelate", false, "give every tier its own sample stream")
	tier := fs.String("tier", "", "render a single tier (low, mid, high) as grayscale")
	dn := fs.Bool("denoise", false, "also write a non-local-means denoised copy")
	fs.Float64Var(&nlm.H, "denoise-h", nlm.H, "denoise luminance strength")
	fs.Float64Var(&nlm.HColor, "denoise-hcolor", nlm.HColor, "denoise colour strength")
	fs.IntVar(&nlm.TemplateWindow, "denoise-template", nlm.TemplateWindow, "denoise template window (odd)")
	fs.IntVar(&nlm.SearchWindow, "denoise-search", nlm.SearchWindow, "denoise search window (odd)")
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := def
	if *configPath != "" {
		var err error
		if cfg, err = buddhabrot.LoadConfig(*configPath); err != nil {
			return nil, err
		}
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "out":
			cfg.Output = *out
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "samples":
			cfg.Samples = *samples
		case "region":
			cfg.RegionName = *region
			cfg.Region, err = buddhabrot.RegionByName(*region)
		case "variant":
			cfg.Variant, err = buddhabrot.ParseVariant(*variant)
		case "profile":
			err = cfg.ApplyProfile(*profile)
		case "channels":
			cfg.Channels, err = buddhabrot.ParseChannelMap(*channels)
		case "workers":
			cfg.Workers = *workers
		case "supersample":
			cfg.Supersample = *supersample
		case "decorrelate":
			cfg.DecorrelateTiers = *decorrelate
		}
	})
	if err != nil {
		return nil, err
	}
	if _, err := buddhabrot.FormatFromPath(cfg.Output); err != nil {
		return nil, err
	}
	if *tier != "" {
		if _, err := buddhabrot.ParseTier(*tier); err != nil {
			return nil, err
		}
	}
	if *dn {
		if err := nlm.Validate(); err != nil {
			return nil, err
		}
	}
	return &options{cfg: cfg, tier: *tier, denoise: *dn, nlm: nlm, verbose: *verbose}, nil
}

// run renders the image, saves it and optionally writes a denoised copy.
func run(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	if opts.verbose {
		buddhabrot.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := message.NewPrinter(language.English)
	renderer, err := buddhabrot.NewRenderer(opts.cfg, buddhabrot.WithProgress(progressLogger(p)))
	if err != nil {
		return err
	}
	cfg := renderer.Config()

	// Step 1: Sample, tonemap and composite
	log.Print(p.Sprintf("Rendering %dx%d, %d samples per tier, region %s, variant %s...",
		cfg.Width, cfg.Height, cfg.Samples, cfg.Region, cfg.Variant))
	start := time.Now()

	img, err := render(ctx, renderer, opts.tier)
	if err != nil {
		return err
	}
	if err := buddhabrot.Save(cfg.Output, img); err != nil {
		return err
	}
	log.Printf("Saved %q in %.2fs", cfg.Output, time.Since(start).Seconds())

	// Step 2: Optional denoised copy
	if opts.denoise {
		dst := denoisedPath(cfg.Output)
		log.Printf("Denoising into %q...", dst)
		if _, err := denoise.File(cfg.Output, dst, opts.nlm); err != nil {
			return fmt.Errorf("denoise: %w", err)
		}
		log.Printf("Saved %q", dst)
	}
	return nil
}

// render produces either the composite or, when tier is set, one grayscale layer.
func render(ctx context.Context, r *buddhabrot.Renderer, tier string) (image.Image, error) {
	if tier == "" {
		res, err := r.Render(ctx)
		if err != nil {
			return nil, err
		}
		return res.Image, nil
	}
	t, err := buddhabrot.ParseTier(tier)
	if err != nil {
		return nil, err
	}
	gray, _, err := r.RenderGray(ctx, t)
	return gray, err
}

// progressLogger prints a line whenever a tier passes another tenth.
func progressLogger(p *message.Printer) func(buddhabrot.Progress) {
	var (
		m    sync.Mutex
		last = map[buddhabrot.Tier]int{}
	)
	return func(pr buddhabrot.Progress) {
		if pr.Total == 0 {
			return
		}
		decile := pr.Done * 10 / pr.Total
		m.Lock()
		defer m.Unlock()
		if prev, ok := last[pr.Tier]; ok && prev >= decile {
			return
		}
		last[pr.Tier] = decile
		log.Print(p.Sprintf("tier %s: %d/%d samples (%.0f%%), %d escaped, %d workers",
			pr.Tier, pr.Done, pr.Total, pr.Percent, pr.Escaped, pr.Workers))
	}
}

// denoisedPath turns "out.png" into "out-denoised.png".
func denoisedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-denoised" + ext
}
