package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"

	"github.com/coder/websocket"
	"github.com/marben/irpc"

	buddhabrot "github.com/Magnoblitz/buddhabrot-rendering"
)

// rpcServer serves the finished PNG to irpc clients. Every client must
// serve a BatchSampler in return: it is attached to the renderer as a
// worker for as long as it stays connected.
func rpcServer(job *renderJob) *irpc.Server {
	return irpc.NewServer(
		irpc.WithServices(buddhabrot.NewPNGProviderIrpcService(job)),
		irpc.WithOnConnect(attachWorker(job.renderer)),
	)
}

// attachWorker is called once per connection and returns when the
// connection ends.
func attachWorker(r *buddhabrot.Renderer) func(ep *irpc.Endpoint) {
	return func(ep *irpc.Endpoint) {
		name := ep.RemoteAddr().String()
		log.Printf("got connection from: %s", name)

		sampler, err := buddhabrot.NewBatchSamplerIrpcClient(ep)
		if err != nil {
			log.Printf("err: new sampler client: %v", err)
			ep.Close()
			return
		}
		detach := r.Attach(name, sampler, irpc.DefaultParallelWorkers)
		defer detach()

		<-ep.Context().Done()
		log.Printf("worker %s disconnected: %v", name, context.Cause(ep.Context()))
	}
}

// serveRPC runs srv on l until srv is closed.
func serveRPC(srv *irpc.Server, l net.Listener) {
	if err := srv.Serve(l); err != nil && !errors.Is(err, irpc.ErrServerClosed) {
		log.Printf("irpc serve %s: %v", l.Addr(), err)
	}
}

// rpcWebsocketHandler hands upgraded connections to l, which the irpc
// server accepts from.
func rpcWebsocketHandler(l *wsListener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			log.Println(err)
			return
		}

		select {
		case l.ch <- c:
		case <-l.ctx.Done():
			c.Close(websocket.StatusGoingAway, "server shutting down")
		}
	}
}

// wsListener implements net.Listener over accepted websocket connections.
type wsListener struct {
	ch     chan *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	addr   wsAddr
}

func newWSListener(ctx context.Context, addr string) *wsListener {
	ctx, cancel := context.WithCancel(ctx)
	return &wsListener{
		ch:     make(chan *websocket.Conn),
		ctx:    ctx,
		cancel: cancel,
		addr:   wsAddr(addr),
	}
}

func (l *wsListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.ch:
		return websocket.NetConn(l.ctx, c, websocket.MessageBinary), nil
	case <-l.ctx.Done():
		return nil, net.ErrClosed
	}
}

func (l *wsListener) Addr() net.Addr { return l.addr }

func (l *wsListener) Close() error {
	l.cancel()
	return nil
}

// wsAddr implements net.Addr
type wsAddr string

func (a wsAddr) Network() string { return "ws" }
func (a wsAddr) String() string  { return string(a) }
