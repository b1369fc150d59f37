package buddhabrot

import (
	"context"
	"errors"
	"net"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/marben/irpc"
)

func fixtureJob() SampleJob {
	cfg := fixtureConfig()
	return SampleJob{
		Region:  cfg.Region,
		Width:   cfg.Width,
		Height:  cfg.Height,
		MaxIter: cfg.Tiers[TierLow].MaxIter,
		Variant: cfg.Variant,
		Tier:    TierLow,
		Samples: cfg.Samples,
		Start:   0,
		End:     cfg.Samples,
	}
}

func TestLocalSamplerMatchesFixture(t *testing.T) {
	res, err := LocalSampler{}.SampleBatch(context.Background(), fixtureJob())
	if err != nil {
		t.Fatal(err)
	}
	if want := []uint32{0, 9, 10}; !slices.Equal(res.Cells, want) {
		t.Errorf("Cells = %v, want %v", res.Cells, want)
	}
	if want := []uint32{16, 7, 1}; !slices.Equal(res.Counts, want) {
		t.Errorf("Counts = %v, want %v", res.Counts, want)
	}
	if res.Escaped != 8 {
		t.Errorf("Escaped = %d, want 8", res.Escaped)
	}
}

func TestLocalSamplerRejectsBadJobs(t *testing.T) {
	for name, tt := range map[string]struct {
		edit func(*SampleJob)
		want error
	}{
		"region":   {func(j *SampleJob) { j.Region.ReMax = j.Region.ReMin }, ErrInvalidConfig},
		"grid":     {func(j *SampleJob) { j.Width = 0 }, ErrInvalidConfig},
		"maxIter":  {func(j *SampleJob) { j.MaxIter = -1 }, ErrInvalidConfig},
		"variant":  {func(j *SampleJob) { j.Variant = 7 }, ErrInvalidConfig},
		"tier":     {func(j *SampleJob) { j.Tier = 3 }, ErrUnknownTier},
		"reversed": {func(j *SampleJob) { j.Start, j.End = 5, 2 }, ErrInvalidConfig},
		"too big":  {func(j *SampleJob) { j.End = maxJobSamples + 1 }, ErrInvalidConfig},
	} {
		job := fixtureJob()
		tt.edit(&job)
		if _, err := (LocalSampler{}).SampleBatch(context.Background(), job); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", name, err, tt.want)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (LocalSampler{}).SampleBatch(ctx, fixtureJob()); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: err = %v, want context.Canceled", err)
	}
}

func TestBatchResultCheck(t *testing.T) {
	job := fixtureJob()
	job.Start, job.End = 0, 4
	for name, res := range map[string]BatchResult{
		"lengths":  {Cells: []uint32{1, 2}, Counts: []uint32{1}},
		"cell":     {Cells: []uint32{16}, Counts: []uint32{1}},
		"escapes":  {Escaped: 5},
		"negative": {Escaped: -1},
	} {
		if err := res.check(job); err == nil {
			t.Errorf("%s: check accepted %+v", name, res)
		}
	}
	if err := (BatchResult{Cells: []uint32{15}, Counts: []uint32{3}, Escaped: 4}).check(job); err != nil {
		t.Errorf("valid result rejected: %v", err)
	}
}

// signallingSampler closes called on its first call.
type signallingSampler struct {
	next   func(context.Context, SampleJob) (BatchResult, error)
	called chan struct{}
	once   sync.Once
	calls  int
	m      sync.Mutex
}

func newSignallingSampler(next func(context.Context, SampleJob) (BatchResult, error)) *signallingSampler {
	return &signallingSampler{next: next, called: make(chan struct{})}
}

func (s *signallingSampler) SampleBatch(ctx context.Context, job SampleJob) (BatchResult, error) {
	s.m.Lock()
	s.calls++
	s.m.Unlock()
	defer s.once.Do(func() { close(s.called) })
	return s.next(ctx, job)
}

// renderWithLateWorker samples the low tier on one local goroutine. After
// the first batch it attaches bs and holds the local worker until bs has
// been called, so bs always takes part.
func renderWithLateWorker(t *testing.T, cfg Config, bs *signallingSampler) (*Renderer, *Histogram) {
	t.Helper()
	cfg.Workers = 1
	var (
		r    *Renderer
		once sync.Once
	)
	r, err := NewRenderer(cfg, WithProgress(func(Progress) {
		once.Do(func() {
			r.Attach("late", bs, 2)
			select {
			case <-bs.called:
			case <-time.After(10 * time.Second):
				t.Error("attached worker was never called")
			}
		})
	}))
	if err != nil {
		t.Fatal(err)
	}
	hist, err := r.RenderTier(context.Background(), TierLow)
	if err != nil {
		t.Fatal(err)
	}
	return r, hist
}

func remoteTestConfig() Config {
	cfg := fixtureConfig()
	cfg.Width, cfg.Height = 24, 16
	cfg.Samples = 3000
	cfg.BatchSize = 50
	cfg.Tiers[TierLow].MaxIter = 60
	return cfg
}

func localHistogram(t *testing.T, cfg Config) *Histogram {
	t.Helper()
	r, err := NewRenderer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	hist, err := r.RenderTier(context.Background(), TierLow)
	if err != nil {
		t.Fatal(err)
	}
	return hist
}

func TestRendererWithRemoteWorker(t *testing.T) {
	cfg := remoteTestConfig()
	want := localHistogram(t, cfg)

	bs := newSignallingSampler(LocalSampler{}.SampleBatch)
	r, got := renderWithLateWorker(t, cfg, bs)
	if !got.Equal(want) {
		t.Fatal("histogram with a remote worker differs from a local render")
	}
	if bs.calls == 0 {
		t.Fatal("remote worker never sampled")
	}
	if n := r.RemoteWorkers(); n != 1 {
		t.Errorf("RemoteWorkers = %d, want 1", n)
	}
	p, _ := r.Progress()
	if p.Done != cfg.Samples {
		t.Errorf("progress Done = %d, want %d", p.Done, cfg.Samples)
	}
}

func TestRendererDropsFailingWorker(t *testing.T) {
	cfg := remoteTestConfig()
	want := localHistogram(t, cfg)

	for name, fn := range map[string]func(context.Context, SampleJob) (BatchResult, error){
		"error": func(context.Context, SampleJob) (BatchResult, error) {
			return BatchResult{}, errors.New("worker crashed")
		},
		"bad cell": func(ctx context.Context, job SampleJob) (BatchResult, error) {
			res, err := LocalSampler{}.SampleBatch(ctx, job)
			res.Cells = append(res.Cells, uint32(job.Width*job.Height))
			res.Counts = append(res.Counts, 1)
			return res, err
		},
		"bad escapes": func(ctx context.Context, job SampleJob) (BatchResult, error) {
			res, err := LocalSampler{}.SampleBatch(ctx, job)
			res.Escaped = int64(job.End-job.Start) + 1
			return res, err
		},
	} {
		t.Run(name, func(t *testing.T) {
			bs := newSignallingSampler(fn)
			r, got := renderWithLateWorker(t, cfg, bs)
			if !got.Equal(want) {
				t.Fatal("a failed batch changed the histogram")
			}
			if n := r.RemoteWorkers(); n != 0 {
				t.Errorf("RemoteWorkers = %d after failure, want 0", n)
			}
		})
	}
}

func TestDetachStopsWorker(t *testing.T) {
	cfg := remoteTestConfig()
	r, err := NewRenderer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	detach := r.Attach("idle", LocalSampler{}, 1)
	if r.RemoteWorkers() != 1 {
		t.Fatal("worker not attached")
	}
	detach()
	detach()
	if r.RemoteWorkers() != 0 {
		t.Fatal("worker still attached after detach")
	}
	if _, err := r.RenderTier(context.Background(), TierLow); err != nil {
		t.Fatal(err)
	}
}

// irpcPair connects a coordinator endpoint to a worker endpoint serving
// LocalSampler.
func irpcPair(t *testing.T) (coordinator, worker *irpc.Endpoint) {
	t.Helper()
	coordConn, workerConn := net.Pipe()
	worker = irpc.NewEndpoint(workerConn, irpc.WithEndpointServices(NewBatchSamplerIrpcService(LocalSampler{})))
	coordinator = irpc.NewEndpoint(coordConn)
	t.Cleanup(func() {
		coordinator.Close()
		worker.Close()
	})
	return coordinator, worker
}

func TestBatchSamplerOverIrpc(t *testing.T) {
	coord, _ := irpcPair(t)
	client, err := NewBatchSamplerIrpcClient(coord)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	job := fixtureJob()
	job.Decorrelate = true
	job.Tier = TierMid
	got, err := client.SampleBatch(ctx, job)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := LocalSampler{}.SampleBatch(ctx, job)
	if !slices.Equal(got.Cells, want.Cells) || !slices.Equal(got.Counts, want.Counts) || got.Escaped != want.Escaped {
		t.Fatalf("remote result %+v, want %+v", got, want)
	}

	job.MaxIter = 0
	_, err = client.SampleBatch(ctx, job)
	_, wantErr := LocalSampler{}.SampleBatch(ctx, job)
	if err == nil || err.Error() != wantErr.Error() {
		t.Fatalf("remote err = %v, want %v", err, wantErr)
	}
}

func TestRendererWithIrpcWorker(t *testing.T) {
	coord, _ := irpcPair(t)
	client, err := NewBatchSamplerIrpcClient(coord)
	if err != nil {
		t.Fatal(err)
	}
	cfg := fixtureConfig()
	cfg.BatchSize = 1

	_, hist := renderWithLateWorker(t, cfg, newSignallingSampler(client.SampleBatch))
	if got := hist.Counts(); !slices.Equal(got, fixtureCounts) {
		t.Fatalf("histogram = %v, want %v", got, fixtureCounts)
	}
}

func TestRendererSurvivesClosedIrpcWorker(t *testing.T) {
	coord, worker := irpcPair(t)
	client, err := NewBatchSamplerIrpcClient(coord)
	if err != nil {
		t.Fatal(err)
	}
	worker.Close()
	<-coord.Context().Done()

	cfg := fixtureConfig()
	cfg.BatchSize = 1
	r, hist := renderWithLateWorker(t, cfg, newSignallingSampler(client.SampleBatch))
	if got := hist.Counts(); !slices.Equal(got, fixtureCounts) {
		t.Fatalf("histogram = %v, want %v", got, fixtureCounts)
	}
	if r.RemoteWorkers() != 0 {
		t.Error("closed worker still attached")
	}
}
