package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	buddhabrot "github.com/Magnoblitz/buddhabrot-rendering"
)

// progressInterval is how often watching clients receive a progress frame.
const progressInterval = 250 * time.Millisecond

// webServer serves the finished image, the websocket progress stream and
// irpc over websocket for workers.
func webServer(job *renderJob, addr string, rpc *wsListener) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           newMux(job, progressInterval, rpc),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("listening on http://%s", addr)
	return srv
}

// newMux routes /rpc only when rpc is not nil.
func newMux(job *renderJob, interval time.Duration, rpc *wsListener) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", websocketHandler(job, interval))
	mux.HandleFunc("GET /image.png", imageHandler(job))
	if rpc != nil {
		mux.HandleFunc("/rpc", rpcWebsocketHandler(rpc))
	}
	return mux
}

// imageHandler blocks until the render is done and replies with the PNG.
func imageHandler(job *renderJob) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := job.GetPNG(r.Context())
		if err != nil {
			if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if _, err := w.Write(data); err != nil {
			log.Printf("write image: %v", err)
		}
	}
}

// websocketHandler streams progress frames until the render is done, then
// the finished PNG as one binary message.
func websocketHandler(job *renderJob, interval time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			log.Println(err)
			return
		}
		defer c.CloseNow()

		job.incClients()
		defer job.decClients()

		// clients only listen; CloseRead notices when they hang up
		ctx := c.CloseRead(r.Context())
		if err := stream(ctx, c, job, interval); err != nil {
			log.Printf("stream to %s: %v", r.RemoteAddr, err)
			c.Close(websocket.StatusInternalError, "render failed")
			return
		}
		c.Close(websocket.StatusNormalClosure, "")
	}
}

func stream(ctx context.Context, c *websocket.Conn, job *renderJob, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			p, ok := job.progress()
			if !ok {
				continue
			}
			if err := wsjson.Write(ctx, c, buddhabrot.StreamMessage{Progress: &p}); err != nil {
				return err
			}

		case <-job.done():
			data, err := job.GetPNG(ctx)
			if err != nil {
				_ = wsjson.Write(ctx, c, buddhabrot.StreamMessage{Error: err.Error()})
				return err
			}
			msg := buddhabrot.StreamMessage{Done: true}
			if p, ok := job.progress(); ok {
				msg.Progress = &p
			}
			if err := wsjson.Write(ctx, c, msg); err != nil {
				return err
			}
			return c.Write(ctx, websocket.MessageBinary, data)
		}
	}
}
