package buddhabrot

import (
	"context"
	"sync"
)

// batch is a half-open range of sample indices.
type batch struct {
	Start, End int
}

func (b batch) size() int { return b.End - b.Start }

// splitRange cuts [0,n) into batches of at most size indices.
// The last batch is shorter if n is not divisible.
func splitRange(n, size int) []batch {
	if size <= 0 {
		panic("batch size must be positive")
	}
	batches := make([]batch, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		batches = append(batches, batch{Start: start, End: end})
	}
	return batches
}

// Progress reports how far the sampling of one tier has come.
type Progress struct {
	Tier    Tier    `json:"tier"`
	Done    int     `json:"done"`
	Total   int     `json:"total"`
	Workers int     `json:"workers"`
	Escaped int64   `json:"escaped"`
	Percent float64 `json:"percent"`
}

// batchScheduler hands batches to workers. A batch finishes exactly once:
// re-running a finished one would count its orbits twice. A failed batch
// added nothing and goes back into the queue.
type batchScheduler struct {
	tier     Tier
	workers  int
	total    int
	finished int
	escaped  int64

	unstarted []batch
	inProcess map[batch]struct{}
	m         sync.Mutex

	ctx       context.Context // cancelled once every batch has finished
	ctxCancel context.CancelFunc
	requeued  chan struct{}

	onProgress func(Progress)
}

func newBatchScheduler(tier Tier, samples, batchSize int, onProgress func(Progress)) *batchScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &batchScheduler{
		tier:       tier,
		total:      samples,
		unstarted:  splitRange(samples, batchSize),
		inProcess:  make(map[batch]struct{}),
		ctx:        ctx,
		ctxCancel:  cancel,
		requeued:   make(chan struct{}, 1),
		onProgress: onProgress,
	}
	if len(s.unstarted) == 0 {
		cancel()
	}
	return s
}

func (s *batchScheduler) popBatch() (b batch, found bool) {
	s.m.Lock()
	defer s.m.Unlock()

	if len(s.unstarted) == 0 {
		return batch{}, false
	}
	b = s.unstarted[0]
	s.unstarted = s.unstarted[1:]
	s.inProcess[b] = struct{}{}
	return b, true
}

func (s *batchScheduler) batchFinished(b batch, escaped int64) {
	s.m.Lock()
	s.finished += b.size()
	s.escaped += escaped
	delete(s.inProcess, b)
	p := s.progressLocked()
	if len(s.unstarted) == 0 && len(s.inProcess) == 0 {
		s.ctxCancel()
	}
	s.m.Unlock()

	if s.onProgress != nil {
		s.onProgress(p)
	}
}

// batchFailed puts b back at the end of the queue and wakes whoever waits
// on requeue.
func (s *batchScheduler) batchFailed(b batch) {
	s.m.Lock()
	delete(s.inProcess, b)
	s.unstarted = append(s.unstarted, b)
	s.m.Unlock()

	select {
	case s.requeued <- struct{}{}:
	default:
	}
}

func (s *batchScheduler) progressLocked() Progress {
	pct := 100.0
	if s.total > 0 {
		pct = float64(s.finished) * 100 / float64(s.total)
	}
	return Progress{
		Tier:    s.tier,
		Done:    s.finished,
		Total:   s.total,
		Workers: s.workers,
		Escaped: s.escaped,
		Percent: pct,
	}
}

func (s *batchScheduler) progress() Progress {
	s.m.Lock()
	defer s.m.Unlock()
	return s.progressLocked()
}

// done is closed once every batch has finished.
func (s *batchScheduler) done() <-chan struct{} { return s.ctx.Done() }

// requeue receives a value after a failed batch went back into the queue.
func (s *batchScheduler) requeue() <-chan struct{} { return s.requeued }

func (s *batchScheduler) incActiveWorkers() {
	s.m.Lock()
	s.workers++
	s.m.Unlock()
}

func (s *batchScheduler) decActiveWorkers() {
	s.m.Lock()
	s.workers--
	s.m.Unlock()
}

// sampleFunc samples one batch and reports how many of its samples escaped.
// On error it must not have accumulated anything.
type sampleFunc func(ctx context.Context, b batch) (escaped int64, err error)

// localSample classifies a batch in the calling goroutine.
func localSample(c *Classifier, index func(int) uint64) sampleFunc {
	return func(_ context.Context, b batch) (int64, error) {
		var escaped int64
		for i := b.Start; i < b.End; i++ {
			if c.Classify(index(i)) > 0 {
				escaped++
			}
		}
		return escaped, nil
	}
}

// run pulls batches until none are left or ctx is cancelled. A batch whose
// sample fails is requeued and run returns the error.
// It may be called from many goroutines at once.
func (s *batchScheduler) run(ctx context.Context, sample sampleFunc) error {
	s.incActiveWorkers()
	defer s.decActiveWorkers()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, found := s.popBatch()
		if !found {
			return nil
		}
		escaped, err := sample(ctx, b)
		if err != nil {
			s.batchFailed(b)
			return err
		}
		s.batchFinished(b, escaped)
	}
}
