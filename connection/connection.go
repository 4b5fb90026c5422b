// Package connection is the transport-agnostic connection abstraction
// described in spec §4.E: a single send/receive contract backed by TCP,
// UDP, or serial, safely shareable between a concurrent producer and
// consumer. The URL-based dispatcher (spec §4.I) is Dial in the root
// mavlink package, not here: the backend packages import this one, so a
// dispatcher in this package would form an import cycle.
package connection

import (
	"io"
	"sync"

	"github.com/tellurian-uas/gomavlink/frame"
)

// Conn is the capability set every backend offers: recv/send in terms of
// (Header, Message), convenience wrappers for the default header and the
// packed Frame form, and Close to release the underlying transport.
type Conn interface {
	// Recv blocks until one valid frame is produced, consuming any number
	// of invalid bytes/frames first; it returns the underlying I/O error
	// unchanged on unrecoverable source failure.
	Recv() (frame.Header, frame.Message, error)
	// Send writes one frame. The connection's own sequence counter
	// overrides header.Sequence; the caller's value is ignored.
	Send(header frame.Header, msg frame.Message) error
	// SendDefault sends with the built-in default header
	// (system_id=255, component_id=0).
	SendDefault(msg frame.Message) error
	// SendFrame and RecvFrame are Send/Recv in terms of the packed Frame
	// value; RecvFrame tags the result with this connection's configured
	// protocol version.
	SendFrame(f frame.Frame) error
	RecvFrame() (frame.Frame, error)
	// Close releases the transport. Safe to call more than once.
	Close() error
}

// Base implements the locking and sequence-counter discipline common to the
// stream-oriented backends, TCP and serial (spec §5): one mutex over the
// read half held for the duration of a single frame read, one mutex over
// the write half held for the duration of a single frame write, and a send
// sequence counter guarded by the write lock and incremented after each
// successful write. connection/tcp and connection/serial return a *Base
// built by NewBase around the reader/writer/closer of their transport;
// Base alone already satisfies Conn. UDP does not embed Base — a datagram carries exactly one
// frame and peer learning needs its own state, so connection/udp
// implements Conn directly (see that package).
type Base struct {
	cat     frame.Catalogue
	version frame.ProtocolVersion

	readMu sync.Mutex
	reader io.Reader

	writeMu sync.Mutex
	writer  io.Writer
	seq     uint8

	closeOnce sync.Once
	closer    io.Closer
}

// NewBase wires a Base around a duplexed stream transport: r and w may
// alias the same underlying connection (e.g. a net.Conn), since the two
// locks serialize readers against readers and writers against writers, not
// reads against writes.
func NewBase(r io.Reader, w io.Writer, c io.Closer, version frame.ProtocolVersion, cat frame.Catalogue) *Base {
	return &Base{cat: cat, version: version, reader: r, writer: w, closer: c}
}

func (b *Base) Recv() (frame.Header, frame.Message, error) {
	b.readMu.Lock()
	defer b.readMu.Unlock()
	return frame.Read(b.reader, b.version, b.cat)
}

func (b *Base) Send(header frame.Header, msg frame.Message) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	header.Sequence = b.seq
	if err := frame.Write(b.writer, b.version, header, msg, b.cat); err != nil {
		return err
	}
	b.seq++ // wraps mod 256 per spec's uint8 sequence counter
	return nil
}

func (b *Base) SendDefault(msg frame.Message) error {
	return b.Send(frame.DefaultHeader(), msg)
}

func (b *Base) SendFrame(f frame.Frame) error {
	return b.Send(f.Header, f.Message)
}

func (b *Base) RecvFrame() (frame.Frame, error) {
	h, msg, err := b.Recv()
	if err != nil {
		return frame.Frame{}, err
	}
	return frame.Frame{Header: h, Message: msg, ProtocolVersion: b.version}, nil
}

func (b *Base) Close() error {
	var err error
	b.closeOnce.Do(func() {
		if b.closer != nil {
			err = b.closer.Close()
		}
	})
	return err
}

var _ Conn = (*Base)(nil)
