package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tellurian-uas/gomavlink"
	"github.com/tellurian-uas/gomavlink/connection"
	"github.com/tellurian-uas/gomavlink/frame"
	"github.com/tellurian-uas/gomavlink/internal/hub"
	"github.com/tellurian-uas/gomavlink/internal/metrics"
	"github.com/tellurian-uas/gomavlink/internal/transport"
)

func dial(addr string, version frame.ProtocolVersion, cat frame.Catalogue) (connection.Conn, error) {
	return mavlink.Dial(addr, version, cat)
}

// endpoint pairs one dialed connection.Conn with the hub.Client carrying
// its outbound queue, mirroring the teacher's one-TCP-client-per-hub.Client
// wiring generalized to any connection.Conn backend.
type endpoint struct {
	addr string
	conn connection.Conn
	cl   *hub.Client
	tx   *transport.AsyncTx
}

// relay owns N endpoints and the hub that fans decoded frames between them.
type relay struct {
	h         *hub.Hub
	log       *slog.Logger
	onHeatbit func(frame.Frame) // optional HEARTBEAT sink (Redis publisher); nil disables

	mu        sync.Mutex
	endpoints []*endpoint
}

func newRelay(h *hub.Hub, log *slog.Logger) *relay {
	return &relay{h: h, log: log}
}

// dialEndpoint dials addr, registers it with the hub, and starts its
// reader and writer goroutines. The returned endpoint is torn down by
// calling close on ctx cancellation.
func (r *relay) dialEndpoint(ctx context.Context, addr string, version frame.ProtocolVersion, cat frame.Catalogue, bufSize int, wg *sync.WaitGroup) (*endpoint, error) {
	conn, err := dial(addr, version, cat)
	if err != nil {
		metrics.IncError(metrics.ErrEndpointDial)
		return nil, err
	}

	cl := &hub.Client{Name: addr, Out: make(chan frame.Frame, bufSize), Closed: make(chan struct{})}
	ep := &endpoint{addr: addr, conn: conn, cl: cl}
	ep.tx = transport.NewAsyncTx(ctx, bufSize, func(f frame.Frame) error {
		if err := conn.SendFrame(f); err != nil {
			return err
		}
		metrics.IncTx(addr)
		return nil
	}, transport.Hooks{
		OnError: func(err error) {
			r.log.Warn("endpoint_send_error", "endpoint", addr, "error", err)
			metrics.IncError(metrics.ErrEndpointWrite)
		},
	})

	r.h.Add(cl)
	r.mu.Lock()
	r.endpoints = append(r.endpoints, ep)
	r.mu.Unlock()

	wg.Add(2)
	go r.readLoop(ctx, ep, wg)
	go r.writeLoop(ctx, ep, wg)
	// readLoop blocks in ep.conn.RecvFrame with no read deadline, so ctx
	// cancellation alone never unblocks it. Closing the connection is what
	// makes the pending Recv return an error and readLoop unwind.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	return ep, nil
}

// readLoop pulls frames off the wire and fans them out to every other
// endpoint; it exits (and triggers teardown) on the first Recv error.
func (r *relay) readLoop(ctx context.Context, ep *endpoint, wg *sync.WaitGroup) {
	defer wg.Done()
	defer r.teardown(ep)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		f, err := ep.conn.RecvFrame()
		if err != nil {
			r.log.Warn("endpoint_recv_error", "endpoint", ep.addr, "error", err)
			metrics.IncError(metrics.ErrEndpointRead)
			return
		}
		metrics.IncRx(ep.addr)
		if r.onHeatbit != nil {
			r.onHeatbit(f)
		}
		r.h.Broadcast(ep.cl, f)
	}
}

// writeLoop drains the endpoint's hub queue into its AsyncTx sink until the
// endpoint is closed or ctx is cancelled.
func (r *relay) writeLoop(ctx context.Context, ep *endpoint, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ep.cl.Closed:
			return
		case f := <-ep.cl.Out:
			if err := ep.tx.SendFrame(f); err != nil {
				r.log.Warn("endpoint_enqueue_drop", "endpoint", ep.addr, "error", err)
			}
		}
	}
}

func (r *relay) teardown(ep *endpoint) {
	r.h.Remove(ep.cl)
	ep.tx.Close()
	_ = ep.conn.Close()
}

// firstTCPInPort returns the configured host:port of the first tcpin
// endpoint (the text after "tcpin:"), for mDNS advertisement; ok is false if
// no tcpin endpoint was configured.
func firstTCPInPort(endpoints []string) (addr string, ok bool) {
	for _, e := range endpoints {
		if len(e) > len("tcpin:") && e[:len("tcpin:")] == "tcpin:" {
			return e[len("tcpin:"):], true
		}
	}
	return "", false
}
