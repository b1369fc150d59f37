// Command cliclient fetches the finished image from a render server and saves
// it. By default it watches the websocket progress stream; with -rpc it
// joins the render as a sampling worker over irpc instead.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"

	"github.com/coder/websocket"
	"github.com/marben/irpc"

	buddhabrot "github.com/Magnoblitz/buddhabrot-rendering"
)

// maxImageBytes bounds the size of the streamed image.
const maxImageBytes = 256 << 20

// main is the entry point for the CLI client.
// It runs the client logic and logs any fatal errors.
func main() {
	log.Printf("Starting CLI client...")
	if err := run(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run connects to the render server, follows its progress and saves the image.
func run() error {
	url := flag.String("url", "ws://localhost:8080/ws", "server websocket endpoint")
	rpc := flag.String("rpc", "", "irpc address (host:port or ws://host/rpc) to join as a worker")
	out := flag.String("out", "buddhabrot.png", "output image (.png, .tif, .tiff)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Step 1: Get the image, either as a worker or by following the progress stream
	var (
		img image.Image
		err error
	)
	if *rpc != "" {
		log.Printf("Joining render server on %s as a worker...", *rpc)
		img, err = work(ctx, *rpc, func(job buddhabrot.SampleJob) {
			log.Printf("Sampling tier %s batch [%d,%d)", job.Tier, job.Start, job.End)
		})
	} else {
		log.Printf("Connecting to render server on %s...", *url)
		img, err = fetch(ctx, *url, func(p buddhabrot.Progress) {
			log.Printf("tier %s: %.1f%% (%d workers)", p.Tier, p.Percent, p.Workers)
		})
	}
	if err != nil {
		return err
	}

	// Step 2: Save the rendered image
	log.Printf("Saving rendered image to %q...", *out)
	if err := buddhabrot.Save(*out, img); err != nil {
		return err
	}
	log.Printf("Fully rendered image saved to %q", *out)
	return nil
}

// fetch reads progress frames from the server at url, reporting each to
// onProgress, and returns the decoded image that ends the stream.
func fetch(ctx context.Context, url string, onProgress func(buddhabrot.Progress)) (image.Image, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer c.CloseNow()
	c.SetReadLimit(maxImageBytes)

	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("read from server: %w", err)
		}

		if typ == websocket.MessageBinary {
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				return nil, fmt.Errorf("failed to decode PNG: %w", err)
			}
			c.Close(websocket.StatusNormalClosure, "")
			return img, nil
		}

		var msg buddhabrot.StreamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("bad frame from server: %w", err)
		}
		if msg.Error != "" {
			return nil, errors.New("server: " + msg.Error)
		}
		if msg.Progress != nil && onProgress != nil {
			onProgress(*msg.Progress)
		}
	}
}

// reportingSampler samples on this machine and reports every batch.
type reportingSampler struct {
	onBatch func(buddhabrot.SampleJob)
}

func (s reportingSampler) SampleBatch(ctx context.Context, job buddhabrot.SampleJob) (buddhabrot.BatchResult, error) {
	if s.onBatch != nil {
		s.onBatch(job)
	}
	return buddhabrot.LocalSampler{}.SampleBatch(ctx, job)
}

// work serves batches to the server at addr until its render is done and
// returns the finished image.
func work(ctx context.Context, addr string, onBatch func(buddhabrot.SampleJob)) (image.Image, error) {
	conn, err := dialRPC(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	// the server calls our sampler to render batches using our CPU
	samplerService := buddhabrot.NewBatchSamplerIrpcService(reportingSampler{onBatch: onBatch})
	ep := irpc.NewEndpoint(conn, irpc.WithEndpointServices(samplerService))
	defer ep.Close()

	client, err := buddhabrot.NewPNGProviderIrpcClient(ep)
	if err != nil {
		return nil, fmt.Errorf("failed to create PNGProvider client: %w", err)
	}
	data, err := client.GetPNG(ctx)
	if err != nil {
		return nil, fmt.Errorf("client.GetPNG: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}
	return img, nil
}

// dialRPC opens a websocket for ws:// and wss:// addresses and tcp otherwise.
func dialRPC(ctx context.Context, addr string) (net.Conn, error) {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		c, _, err := websocket.Dial(ctx, addr, nil)
		if err != nil {
			return nil, err
		}
		return websocket.NetConn(context.Background(), c, websocket.MessageBinary), nil
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}
