package main

import (
	"bytes"
	"context"
	"image"
	"log"
	"sync"

	buddhabrot "github.com/Magnoblitz/buddhabrot-rendering"
)

// renderJob renders one image in the background and hands it to any number
// of waiting clients.
type renderJob struct {
	renderer *buddhabrot.Renderer

	ctx       context.Context // cancelled once the render has finished or failed
	ctxCancel context.CancelFunc

	img     image.Image
	encoded []byte
	err     error
	clients int
	m       sync.Mutex
}

var (
	_ buddhabrot.ImageProvider = (*renderJob)(nil)
	_ buddhabrot.PNGProvider   = (*renderJob)(nil)
)

func newRenderJob(r *buddhabrot.Renderer) *renderJob {
	ctx, cancel := context.WithCancel(context.Background())
	return &renderJob{renderer: r, ctx: ctx, ctxCancel: cancel}
}

// run renders the image and encodes it as PNG. It is called once.
func (j *renderJob) run(ctx context.Context) {
	defer j.ctxCancel()

	res, err := j.renderer.Render(ctx)
	var buf bytes.Buffer
	if err == nil {
		err = buddhabrot.Encode(&buf, res.Image, buddhabrot.FormatPNG)
	}

	j.m.Lock()
	defer j.m.Unlock()
	if err != nil {
		j.err = err
		log.Printf("render failed: %v", err)
		return
	}
	j.img = res.Image
	j.encoded = buf.Bytes()
	log.Printf("render finished: %d bytes of PNG", len(j.encoded))
}

func (j *renderJob) done() <-chan struct{} { return j.ctx.Done() }

func (j *renderJob) wait(ctx context.Context) error {
	select {
	case <-j.done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetImage implements buddhabrot.ImageProvider.
func (j *renderJob) GetImage(ctx context.Context) (image.Image, error) {
	if err := j.wait(ctx); err != nil {
		return nil, err
	}
	j.m.Lock()
	defer j.m.Unlock()
	return j.img, j.err
}

// GetPNG implements buddhabrot.PNGProvider.
func (j *renderJob) GetPNG(ctx context.Context) ([]byte, error) {
	if err := j.wait(ctx); err != nil {
		return nil, err
	}
	j.m.Lock()
	defer j.m.Unlock()
	return j.encoded, j.err
}

func (j *renderJob) progress() (buddhabrot.Progress, bool) {
	return j.renderer.Progress()
}

func (j *renderJob) incClients() {
	j.m.Lock()
	j.clients++
	c := j.clients
	j.m.Unlock()

	log.Printf("clients: %d", c)
}

func (j *renderJob) decClients() {
	j.m.Lock()
	j.clients--
	c := j.clients
	j.m.Unlock()

	log.Printf("clients: %d", c)
}
