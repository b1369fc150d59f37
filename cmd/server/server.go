package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	buddhabrot "github.com/Magnoblitz/buddhabrot-rendering"
)

// main is the entry point for the render server.
// The server renders a single image in the background. Web clients watch its
// progress over a websocket and receive the finished PNG. Workers connect
// over irpc, sample batches for the render and receive the PNG too.
func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	addr := flag.String("addr", ":8080", "listen address")
	rpcAddr := flag.String("rpc", ":8081", "irpc tcp listen address for workers, empty to disable")
	configPath := flag.String("config", "", "JSON config file")
	region := flag.String("region", "", "region preset, overrides the config")
	samples := flag.Int("samples", 0, "samples per tier, overrides the config")
	flag.Parse()

	// Step 1: Build the render configuration
	cfg := buddhabrot.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = buddhabrot.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *region != "" {
		cfg.RegionName = *region
	}
	if *samples > 0 {
		cfg.Samples = *samples
	}
	renderer, err := buddhabrot.NewRenderer(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Step 2: Start rendering in the background
	cfg = renderer.Config()
	p := message.NewPrinter(language.English)
	log.Print(p.Sprintf("rendering %dx%d, %d samples per tier, region %s", cfg.Width, cfg.Height, cfg.Samples, cfg.Region))
	job := newRenderJob(renderer)
	go job.run(ctx)

	// Step 3: Accept workers over tcp and websocket
	rpcSrv := rpcServer(job)
	wsListener := newWSListener(ctx, *addr+"/rpc")
	go serveRPC(rpcSrv, wsListener)
	if *rpcAddr != "" {
		log.Printf("tcp listening on %s", *rpcAddr)
		tcpListener, err := net.Listen("tcp", *rpcAddr)
		if err != nil {
			return fmt.Errorf("net.Listen: %w", err)
		}
		go serveRPC(rpcSrv, tcpListener)
	}

	// Step 4: Serve the image and the progress stream
	srv := webServer(job, *addr, wsListener)
	go func() {
		<-ctx.Done()
		_ = rpcSrv.Close()
		_ = srv.Shutdown(context.Background())
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
