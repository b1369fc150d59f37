package buddhabrot

import (
	"context"
	"image"
)

// Accumulator receives orbit hits. Implementations must tolerate many
// concurrent callers and treat out-of-range cells as a no-op.
type Accumulator interface {
	Increment(x, y int)
}

// BulkAccumulator is an Accumulator that can add many hits to one cell at once.
type BulkAccumulator interface {
	Accumulator
	Add(x, y int, n uint32)
}

// addHits adds n hits through Add when acc supports it.
func addHits(acc Accumulator, x, y int, n uint32) {
	if b, ok := acc.(BulkAccumulator); ok {
		b.Add(x, y, n)
		return
	}
	for range n {
		acc.Increment(x, y)
	}
}

// ImageProvider hands out a finished render, blocking until one exists.
type ImageProvider interface {
	GetImage(ctx context.Context) (image.Image, error)
}

var (
	_ BulkAccumulator = (*Histogram)(nil)
	_ BulkAccumulator = tierAccumulator{}
)

// StreamMessage is the JSON frame a render server sends to watching clients.
// The finished image follows the Done frame as a single binary message.
type StreamMessage struct {
	Progress *Progress `json:"progress,omitempty"`
	Done     bool      `json:"done,omitempty"`
	Error    string    `json:"error,omitempty"`
}
