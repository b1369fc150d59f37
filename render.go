package buddhabrot

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"golang.org/x/image/draw"
)

// Renderer runs the sampling → classification → accumulation → tonemap →
// composite pipeline for one Config.
type Renderer struct {
	cfg        Config
	onProgress func(Progress)

	mu      sync.Mutex
	current *tierRun
	remotes map[*remoteWorker]struct{}
}

// tierRun is the sampling of one tier, shared by local and remote workers.
type tierRun struct {
	sched *batchScheduler
	acc   Accumulator
	job   SampleJob // Start and End are filled per batch

	ctx    context.Context
	wg     sync.WaitGroup // remote goroutines
	closed bool           // guarded by Renderer.mu
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithProgress registers a callback invoked after every finished batch.
// It is called from worker goroutines and must be safe for concurrent use.
func WithProgress(fn func(Progress)) Option {
	return func(r *Renderer) { r.onProgress = fn }
}

// WithWorkers overrides the number of sampling goroutines.
func WithWorkers(n int) Option {
	return func(r *Renderer) { r.cfg.Workers = n }
}

// NewRenderer validates cfg and returns a renderer for it.
func NewRenderer(cfg Config, opts ...Option) (*Renderer, error) {
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	r := &Renderer{cfg: cfg, remotes: make(map[*remoteWorker]struct{})}
	for _, o := range opts {
		o(r)
	}
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Config returns the configuration the renderer was built with.
func (r *Renderer) Config() Config { return r.cfg }

// Progress returns the state of the tier currently being sampled.
func (r *Renderer) Progress() (Progress, bool) {
	r.mu.Lock()
	run := r.current
	r.mu.Unlock()
	if run == nil {
		return Progress{}, false
	}
	return run.sched.progress(), true
}

// Result bundles the products of a full render.
type Result struct {
	Histograms *Histograms
	Layers     [NumTiers]*Intensity
	Image      image.Image
}

// RenderTier samples one tier into a fresh histogram. It returns only
// after every worker has stopped, so the histogram is frozen on return.
func (r *Renderer) RenderTier(ctx context.Context, tier Tier) (*Histogram, error) {
	if !tier.valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownTier, tier)
	}
	w, h := r.cfg.gridSize()
	hist := NewHistogram(w, h)
	if err := r.sample(ctx, tier, hist); err != nil {
		return nil, err
	}
	return hist, nil
}

func (r *Renderer) sample(ctx context.Context, tier Tier, acc Accumulator) error {
	cfg := r.cfg
	w, h := cfg.gridSize()
	tc := cfg.Tiers[tier]
	s := newBatchScheduler(tier, cfg.Samples, cfg.batchSize(), r.onProgress)

	ctx, cancel := context.WithCancel(ctx)
	run := &tierRun{
		sched: s,
		acc:   acc,
		job: SampleJob{
			Region:      cfg.Region,
			Width:       w,
			Height:      h,
			MaxIter:     tc.MaxIter,
			Variant:     cfg.Variant,
			Tier:        tier,
			Samples:     cfg.Samples,
			Decorrelate: cfg.DecorrelateTiers,
		},
		ctx: ctx,
	}

	r.mu.Lock()
	r.current = run
	for rw := range r.remotes {
		r.startRemoteLocked(run, rw)
	}
	remotes := len(r.remotes)
	r.mu.Unlock()
	defer r.closeRun(run, cancel)

	c := NewClassifier(cfg.Region, w, h, tc.MaxIter, cfg.Variant, acc)
	local := localSample(c, func(i int) uint64 {
		return streamIndex(uint64(i), tier, cfg.Samples, cfg.DecorrelateTiers)
	})

	workers := cfg.workers()
	if n := len(s.unstarted); workers > n {
		workers = n
	}
	Logger().Info("sampling tier", "tier", tier.String(), "maxIter", tc.MaxIter,
		"samples", cfg.Samples, "workers", workers, "remotes", remotes)
	start := time.Now()

	for {
		if err := runWorkers(ctx, s, local, workers); err != nil {
			return fmt.Errorf("sample tier %s: %w", tier, err)
		}
		// the queue is empty but remote workers may still hold batches
		select {
		case <-s.done():
			p := s.progress()
			Logger().Info("tier sampled", "tier", tier.String(), "escaped", p.Escaped,
				"elapsed", time.Since(start).String())
			return nil
		case <-s.requeue():
		case <-ctx.Done():
			return fmt.Errorf("sample tier %s: %w", tier, ctx.Err())
		}
	}
}

// runWorkers drains the queue on n goroutines and returns the first error.
func runWorkers(ctx context.Context, s *batchScheduler, sample sampleFunc, n int) error {
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			if err := s.run(ctx, sample); err != nil {
				errOnce.Do(func() { firstErr = err })
			}
		}()
	}
	wg.Wait()
	return firstErr
}

// closeRun stops the remote goroutines of run and waits for them, so the
// histogram is frozen once sample returns.
func (r *Renderer) closeRun(run *tierRun, cancel context.CancelFunc) {
	r.mu.Lock()
	run.closed = true
	r.mu.Unlock()
	cancel()
	run.wg.Wait()
}

// Render produces the composited image of all three tiers. Tiers are
// sampled one after another, each across all workers.
func (r *Renderer) Render(ctx context.Context) (*Result, error) {
	w, h := r.cfg.gridSize()
	hists := NewHistograms(w, h)
	res := &Result{Histograms: hists}

	for _, t := range Tiers {
		if err := r.sample(ctx, t, hists.For(t)); err != nil {
			return nil, err
		}
		res.Layers[t] = Tonemap(hists.Tier(t), r.cfg.Tiers[t].Tonemap)
		Logger().Debug("tier tonemapped", "tier", t.String(), "hits", hists.Tier(t).Total(),
			"peak", hists.Tier(t).Max())
	}

	img, err := Composite(res.Layers, r.cfg.Channels)
	if err != nil {
		return nil, err
	}
	res.Image = r.downscale(img)
	return res, nil
}

// RenderGray renders a single tier as a grayscale image.
func (r *Renderer) RenderGray(ctx context.Context, tier Tier) (*image.Gray, *Histogram, error) {
	hist, err := r.RenderTier(ctx, tier)
	if err != nil {
		return nil, nil, err
	}
	gray := Grayscale(Tonemap(hist, r.cfg.Tiers[tier].Tonemap))
	if r.cfg.supersample() == 1 {
		return gray, hist, nil
	}
	dst := image.NewGray(image.Rect(0, 0, r.cfg.Width, r.cfg.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), gray, gray.Bounds(), draw.Src, nil)
	return dst, hist, nil
}

func (r *Renderer) downscale(img *image.NRGBA) image.Image {
	if r.cfg.supersample() == 1 {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, r.cfg.Width, r.cfg.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Render is a convenience wrapper around NewRenderer and Renderer.Render.
func Render(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	r, err := NewRenderer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return r.Render(ctx)
}
