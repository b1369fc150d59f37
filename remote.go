package buddhabrot

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
)

// maxJobSamples bounds one SampleJob so a worker never holds a huge batch.
const maxJobSamples = 1 << 24

// remoteWorker is a BatchSampler attached to a Renderer.
type remoteWorker struct {
	name     string
	sampler  BatchSampler
	parallel int

	ctx    context.Context // cancelled on detach
	cancel context.CancelFunc
}

// Attach adds a sampler that takes batches alongside the local workers,
// up to parallel at a time, from the tier being sampled now and every later
// one. It stays attached until detach is called or one of its batches
// fails. A failed batch goes back into the queue for another worker.
func (r *Renderer) Attach(name string, bs BatchSampler, parallel int) (detach func()) {
	if parallel <= 0 {
		parallel = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	rw := &remoteWorker{name: name, sampler: bs, parallel: parallel, ctx: ctx, cancel: cancel}

	r.mu.Lock()
	r.remotes[rw] = struct{}{}
	n := len(r.remotes)
	if run := r.current; run != nil && !run.closed {
		r.startRemoteLocked(run, rw)
	}
	r.mu.Unlock()

	Logger().Info("worker attached", "worker", name, "parallel", parallel, "remotes", n)
	return func() { r.detach(rw) }
}

// RemoteWorkers is the number of attached samplers.
func (r *Renderer) RemoteWorkers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.remotes)
}

func (r *Renderer) detach(rw *remoteWorker) {
	r.mu.Lock()
	_, found := r.remotes[rw]
	delete(r.remotes, rw)
	n := len(r.remotes)
	r.mu.Unlock()

	if !found {
		return
	}
	rw.cancel()
	Logger().Info("worker detached", "worker", rw.name, "remotes", n)
}

// startRemoteLocked runs rw on run. r.mu must be held and run not closed.
func (r *Renderer) startRemoteLocked(run *tierRun, rw *remoteWorker) {
	ctx, cancel := context.WithCancel(run.ctx)
	stop := context.AfterFunc(rw.ctx, cancel)

	sample := remoteSample(run, rw)
	var workers sync.WaitGroup
	workers.Add(rw.parallel)
	for range rw.parallel {
		run.wg.Add(1)
		go func() {
			defer run.wg.Done()
			defer workers.Done()
			err := run.sched.run(ctx, sample)
			if err != nil && ctx.Err() == nil {
				Logger().Warn("worker failed", "worker", rw.name, "err", err)
				r.detach(rw)
			}
		}()
	}
	go func() {
		workers.Wait()
		stop()
		cancel()
	}()
}

// remoteSample hands a batch to rw and merges the returned hits into the
// tier's accumulator. Nothing is merged unless the whole result is valid.
func remoteSample(run *tierRun, rw *remoteWorker) sampleFunc {
	return func(ctx context.Context, b batch) (int64, error) {
		job := run.job
		job.Start, job.End = b.Start, b.End
		res, err := rw.sampler.SampleBatch(ctx, job)
		if err != nil {
			return 0, fmt.Errorf("worker %s: %w", rw.name, err)
		}
		if err := res.check(job); err != nil {
			return 0, fmt.Errorf("worker %s: %w", rw.name, err)
		}
		for i, cell := range res.Cells {
			addHits(run.acc, int(cell)%job.Width, int(cell)/job.Width, res.Counts[i])
		}
		return res.Escaped, nil
	}
}

// check rejects a result that does not fit the grid or the batch of job.
func (res BatchResult) check(job SampleJob) error {
	if len(res.Cells) != len(res.Counts) {
		return fmt.Errorf("result has %d cells but %d counts", len(res.Cells), len(res.Counts))
	}
	cells := uint64(job.Width) * uint64(job.Height)
	for _, c := range res.Cells {
		if uint64(c) >= cells {
			return fmt.Errorf("result cell %d outside the %dx%d grid", c, job.Width, job.Height)
		}
	}
	if res.Escaped < 0 || res.Escaped > int64(job.End-job.Start) {
		return fmt.Errorf("result reports %d escapes for %d samples", res.Escaped, job.End-job.Start)
	}
	return nil
}

// Validate rejects a job a worker cannot sample.
func (job SampleJob) Validate() error {
	if err := job.Region.Validate(); err != nil {
		return err
	}
	if job.Width <= 0 || job.Height <= 0 || uint64(job.Width)*uint64(job.Height) > math.MaxUint32 {
		return &ConfigError{Field: "grid", Reason: fmt.Sprintf("unusable size %dx%d", job.Width, job.Height)}
	}
	if job.MaxIter <= 0 {
		return &ConfigError{Field: "maxIter", Reason: fmt.Sprintf("must be > 0, got %d", job.MaxIter)}
	}
	if job.Variant < Standard || job.Variant > BurningShip {
		return &ConfigError{Field: "variant", Reason: job.Variant.String()}
	}
	if !job.Tier.valid() {
		return fmt.Errorf("%w: %v", ErrUnknownTier, job.Tier)
	}
	if job.Start < 0 || job.End < job.Start || job.End-job.Start > maxJobSamples {
		return &ConfigError{Field: "batch", Reason: fmt.Sprintf("bad range [%d,%d)", job.Start, job.End)}
	}
	return nil
}

// LocalSampler samples a job in the calling goroutine. Worker processes
// serve it over irpc.
type LocalSampler struct{}

var _ BatchSampler = LocalSampler{}

// ctxCheckInterval is how many samples pass between context checks.
const ctxCheckInterval = 1024

func (LocalSampler) SampleBatch(ctx context.Context, job SampleJob) (BatchResult, error) {
	if err := job.Validate(); err != nil {
		return BatchResult{}, err
	}
	acc := newSparseAccumulator(job.Width, job.Height)
	c := NewClassifier(job.Region, job.Width, job.Height, job.MaxIter, job.Variant, acc)

	var escaped int64
	for i := job.Start; i < job.End; i++ {
		if (i-job.Start)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return BatchResult{}, err
			}
		}
		if c.Classify(streamIndex(uint64(i), job.Tier, job.Samples, job.Decorrelate)) > 0 {
			escaped++
		}
	}
	return acc.result(escaped), nil
}

// sparseAccumulator counts hits of a single goroutine by cell index.
type sparseAccumulator struct {
	width, height int
	hits          map[uint32]uint32
}

func newSparseAccumulator(width, height int) *sparseAccumulator {
	return &sparseAccumulator{width: width, height: height, hits: make(map[uint32]uint32)}
}

func (a *sparseAccumulator) Increment(x, y int) {
	if x < 0 || x >= a.width || y < 0 || y >= a.height {
		return
	}
	cell := uint32(y*a.width + x)
	if a.hits[cell] < math.MaxUint32 {
		a.hits[cell]++
	}
}

// result lists the hit cells in ascending order.
func (a *sparseAccumulator) result(escaped int64) BatchResult {
	res := BatchResult{
		Cells:   make([]uint32, 0, len(a.hits)),
		Counts:  make([]uint32, 0, len(a.hits)),
		Escaped: escaped,
	}
	for cell := range a.hits {
		res.Cells = append(res.Cells, cell)
	}
	slices.Sort(res.Cells)
	for _, cell := range res.Cells {
		res.Counts = append(res.Counts, a.hits[cell])
	}
	return res
}
