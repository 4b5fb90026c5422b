package frame

// Message is the contract the out-of-scope message catalogue must satisfy.
// A catalogue is typically generated from a MAVLink XML dialect file; this
// package calls into it but never defines it. Package dialect ships a small
// reference catalogue used by tests and cmd/mavlink-gw; production users
// supply their own generated catalogue instead.
type Message interface {
	// MessageID returns the numeric id (u24 range) of the message.
	MessageID() uint32
	// Marshal serialises the message body to its wire payload (<= 255 bytes).
	Marshal() []byte
}

// Catalogue parses wire payloads into concrete Message values and supplies
// the per-id extra CRC seed byte used by both read and write paths.
type Catalogue interface {
	// Parse decodes a payload for the given protocol version and message id.
	// It returns (nil, false) when the id is unknown or the payload cannot
	// be interpreted for that id; callers apply the v1/v2 tolerance policy
	// described in frame's read path.
	Parse(version ProtocolVersion, id uint32, payload []byte) (Message, bool)
	// ExtraCRC returns the per-message-id magic byte appended to the CRC
	// input to detect mismatched message schemas between endpoints.
	ExtraCRC(id uint32) (uint8, bool)
}
