// Package transport holds transport-agnostic helpers shared by the relay
// endpoints in cmd/mavlink-gw: a generic async frame sink (AsyncTx) that
// decouples a relay's fan-out goroutine from a potentially slow or wedged
// backend Conn.
package transport

import "github.com/tellurian-uas/gomavlink/frame"

// FrameSink is a generic outbound frame target, satisfied by connection.Conn
// (via its SendFrame method) and by AsyncTx itself.
type FrameSink interface {
	SendFrame(frame.Frame) error
}
