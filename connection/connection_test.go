package connection

import (
	"io"
	"sync"
	"testing"

	"github.com/tellurian-uas/gomavlink/dialect"
	"github.com/tellurian-uas/gomavlink/frame"
)

// pipeCloser adapts an io.Pipe half's Close into io.Closer for NewBase.
type pipeCloser struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p pipeCloser) Close() error {
	_ = p.r.Close()
	return p.w.Close()
}

func newPipeBase(cat frame.Catalogue, version frame.ProtocolVersion) (*Base, *Base) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	a := NewBase(ar, aw, pipeCloser{ar, aw}, version, cat)
	b := NewBase(br, bw, pipeCloser{br, bw}, version, cat)
	return a, b
}

func TestBase_SendRecvRoundTrip(t *testing.T) {
	var cat dialect.Common
	a, b := newPipeBase(cat, frame.V2)
	defer a.Close()
	defer b.Close()

	hb := dialect.Heartbeat{Type: dialect.MavTypeQuadrotor, Autopilot: dialect.MavAutopilotArdupilotMega, SystemStatus: dialect.MavStateStandby}

	errCh := make(chan error, 1)
	go func() { errCh <- a.SendDefault(hb) }()

	_, msg, err := b.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, ok := msg.(dialect.Heartbeat)
	if !ok || got != hb {
		t.Fatalf("unexpected message: %+v (ok=%v)", msg, ok)
	}
}

func TestBase_SequenceIncrementsAndWraps(t *testing.T) {
	var cat dialect.Common
	a, b := newPipeBase(cat, frame.V2)
	defer a.Close()
	defer b.Close()

	hb := dialect.Heartbeat{}
	const n = 260 // enough to wrap past 255
	go func() {
		for i := 0; i < n; i++ {
			_ = a.SendDefault(hb)
		}
	}()

	var lastSeq uint8
	var first uint8
	for i := 0; i < n; i++ {
		h, _, err := b.Recv()
		if err != nil {
			t.Fatalf("Recv %d: %v", i, err)
		}
		if i == 0 {
			first = h.Sequence
		}
		lastSeq = h.Sequence
	}
	wantLast := byte(int(first) + n - 1) // mod-256 wraparound
	if lastSeq != wantLast {
		t.Fatalf("expected sequence to wrap mod 256: got %d want %d", lastSeq, wantLast)
	}
}

func TestBase_ConcurrentSendRecvIsSafe(t *testing.T) {
	var cat dialect.Common
	a, b := newPipeBase(cat, frame.V2)
	defer a.Close()
	defer b.Close()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_ = a.SendDefault(dialect.Heartbeat{CustomMode: uint32(i)})
		}
	}()

	received := make([]uint32, 0, n)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_, msg, err := b.Recv()
			if err != nil {
				t.Errorf("Recv %d: %v", i, err)
				return
			}
			hb := msg.(dialect.Heartbeat)
			received = append(received, hb.CustomMode)
		}
	}()
	wg.Wait()
	if len(received) != n {
		t.Fatalf("expected %d frames, got %d", n, len(received))
	}
	for i, v := range received {
		if v != uint32(i) {
			t.Fatalf("frames arrived out of order at %d: got %d", i, v)
		}
	}
}

func TestBase_CloseIsIdempotent(t *testing.T) {
	var cat dialect.Common
	a, _ := newPipeBase(cat, frame.V2)
	if err := a.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
