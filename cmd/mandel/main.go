// Command mandel renders a plain escape-time image: grayscale around a
// camera, or a smooth-coloured preview of a region preset.
package main

import (
	"flag"
	"image"
	"log"
	"os"

	buddhabrot "github.com/Magnoblitz/buddhabrot-rendering"
	"github.com/Magnoblitz/buddhabrot-rendering/mandel"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func run(args []string) error {
	p := mandel.DefaultParams()
	fs := flag.NewFlagSet("mandel", flag.ContinueOnError)
	fs.IntVar(&p.Width, "width", p.Width, "image width in pixels")
	fs.IntVar(&p.Height, "height", p.Height, "image height in pixels")
	fs.IntVar(&p.MaxIter, "iter", p.MaxIter, "maximum iterations")
	fs.Float64Var(&p.Camera.X, "x", p.Camera.X, "camera centre, real part")
	fs.Float64Var(&p.Camera.Y, "y", p.Camera.Y, "camera centre, imaginary part")
	fs.Float64Var(&p.Camera.Zoom, "zoom", p.Camera.Zoom, "camera zoom")
	variant := fs.String("variant", "standard", "iteration variant: standard, tricorn, burning-ship")
	region := fs.String("region", "", "render a coloured preview of this region preset instead")
	out := fs.String("out", "mandel.png", "output image (.png, .tif, .tiff)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		img image.Image
		err error
	)
	if *region != "" {
		r, rerr := buddhabrot.RegionByName(*region)
		if rerr != nil {
			return rerr
		}
		log.Printf("Rendering %dx%d preview of %s...", p.Width, p.Height, *region)
		img, err = mandel.RenderRegion(r, p.Width, p.Height, p.MaxIter)
	} else {
		if p.Variant, err = buddhabrot.ParseVariant(*variant); err != nil {
			return err
		}
		log.Printf("Rendering %dx%d at (%g, %g) zoom %g...", p.Width, p.Height, p.Camera.X, p.Camera.Y, p.Camera.Zoom)
		img, err = mandel.Render(p)
	}
	if err != nil {
		return err
	}

	if err := buddhabrot.Save(*out, img); err != nil {
		return err
	}
	log.Printf("Saved %q", *out)
	return nil
}
