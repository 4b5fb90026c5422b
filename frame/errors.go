package frame

import "errors"

// Sentinel errors surfaced by the read/write paths. Bad-CRC and
// unknown-message conditions are NOT among these: both readers skip such
// frames silently and resynchronise (a message id with no extra CRC in the
// catalogue cannot be CRC-checked, so it is skipped too), so callers cannot
// tell a single skipped frame from ordinary noise on the wire. The only
// read-side sentinel is ErrInvalidPayload, which V2 returns for a CRC-valid
// frame whose payload the catalogue rejects.
var (
	// ErrPayloadTooLarge is returned by Write when a message serialises to
	// more than 255 bytes.
	ErrPayloadTooLarge = errors.New("frame: payload exceeds 255 bytes")

	// ErrInvalidPayload is returned by the V2 reader when a frame passes
	// CRC validation but the catalogue rejects the payload for the
	// declared message id. V1 does not return this: it discards and
	// resynchronises instead (see ReadV1 in v1.go).
	ErrInvalidPayload = errors.New("frame: payload rejected by catalogue")
)
