// Package serial implements the serial connection backend (spec §4.H):
// opens the named device at the given baud rate with 8N1 framing (the
// tarm/serial platform default) and wraps it in the v1/v2 frame codec.
package serial

import (
	"fmt"
	"time"

	"github.com/tarm/serial"

	"github.com/tellurian-uas/gomavlink/connection"
	"github.com/tellurian-uas/gomavlink/frame"
)

// DefaultReadTimeout bounds each underlying port read so a wedged device
// doesn't block Close forever; it does not affect Recv's blocking
// semantics, since Recv retries across timeouts transparently via the
// codec's resynchronising read loop hitting a read error and the caller
// choosing whether to retry.
const DefaultReadTimeout = 50 * time.Millisecond

// Open opens name at baud and returns a Conn using version for wire
// decoding/encoding.
func Open(name string, baud int, version frame.ProtocolVersion, cat frame.Catalogue) (*connection.Base, error) {
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud, ReadTimeout: DefaultReadTimeout})
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", name, err)
	}
	return connection.NewBase(port, port, port, version, cat), nil
}
