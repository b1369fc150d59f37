// Command denoise applies non-local-means denoising to a rendered image.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Magnoblitz/buddhabrot-rendering/denoise"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func run(args []string) error {
	p := denoise.DefaultParams()
	fs := flag.NewFlagSet("denoise", flag.ContinueOnError)
	out := fs.String("out", "", "output image (default <input>-denoised.<ext>)")
	fs.Float64Var(&p.H, "h", p.H, "luminance strength")
	fs.Float64Var(&p.HColor, "hcolor", p.HColor, "colour strength")
	fs.IntVar(&p.TemplateWindow, "template", p.TemplateWindow, "template window size (odd)")
	fs.IntVar(&p.SearchWindow, "search", p.SearchWindow, "search window size (odd)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: denoise [flags] <input image>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected one input image, got %d arguments", fs.NArg())
	}

	in := fs.Arg(0)
	dst := *out
	if dst == "" {
		ext := filepath.Ext(in)
		dst = strings.TrimSuffix(in, ext) + "-denoised" + ext
	}

	log.Printf("Denoising %q (h=%g, hColor=%g, windows %d/%d)...", in, p.H, p.HColor, p.TemplateWindow, p.SearchWindow)
	start := time.Now()
	if _, err := denoise.File(in, dst, p); err != nil {
		return err
	}
	log.Printf("Saved %q in %.2fs", dst, time.Since(start).Seconds())
	return nil
}
