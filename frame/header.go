package frame

// ProtocolVersion selects the wire layout: 8-bit message ids and a 6-byte
// header for V1, or 24-bit little-endian ids, incompat/compat flag bytes,
// and an optional signature tail for V2.
type ProtocolVersion int

const (
	V1 ProtocolVersion = iota
	V2
)

func (v ProtocolVersion) String() string {
	if v == V1 {
		return "v1"
	}
	return "v2"
}

// Header carries sender identity and the per-connection sequence counter.
// It is a plain copyable value; nothing in this package mutates a caller's
// Header in place.
type Header struct {
	SystemID    uint8
	ComponentID uint8
	Sequence    uint8
}

// DefaultHeader is used by send-with-defaults entry points. The sequence
// field is always overwritten by the connection on the way out.
func DefaultHeader() Header {
	return Header{SystemID: 255, ComponentID: 0, Sequence: 0}
}

// Frame pairs a header with a decoded message and the protocol version it
// was read under (or will be written with). It is immutable after
// construction: reads hand ownership to the caller, writes consume it by
// value.
type Frame struct {
	Header          Header
	Message         Message
	ProtocolVersion ProtocolVersion
}
