package buddhabrot

import "context"

//go:generate irpc $GOFILE

// SampleJob is one batch of sample indices of one tier. It carries
// everything a worker needs, so workers keep no state between batches.
type SampleJob struct {
	Region  Region
	Width   int // histogram grid, supersampling included
	Height  int
	MaxIter int
	Variant Variant

	Tier        Tier
	Samples     int // per tier, offsets decorrelated streams
	Decorrelate bool
	Start, End  int
}

// BatchResult holds the hits of one batch in sparse form: Counts[i] hits
// landed in the row-major cell Cells[i].
type BatchResult struct {
	Cells   []uint32
	Counts  []uint32
	Escaped int64
}

// BatchSampler samples batches of orbits on behalf of a Renderer.
// Workers connected over irpc implement it.
type BatchSampler interface {
	SampleBatch(ctx context.Context, job SampleJob) (BatchResult, error)
}

// PNGProvider hands out a finished render as PNG bytes, blocking until one
// exists.
type PNGProvider interface {
	GetPNG(ctx context.Context) ([]byte, error)
}
