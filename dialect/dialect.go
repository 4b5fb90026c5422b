// Package dialect is a minimal reference message catalogue satisfying
// frame.Catalogue. Real deployments generate a catalogue from a MAVLink XML
// dialect file (common.xml, ardupilotmega.xml, ...); this package hand-rolls
// the handful of messages exercised by this repo's tests and cmd/mavlink-gw
// so the frame package has something concrete to decode against. Message
// ids and extra-CRC bytes match the published common.xml dialect.
package dialect

import "github.com/tellurian-uas/gomavlink/frame"

// Common holds the message ids, extra-CRC bytes, and parsers for the small
// set of messages this reference catalogue knows. It implements
// frame.Catalogue and is safe for concurrent use (purely read-only lookup
// tables plus stateless parsing).
type Common struct{}

var _ frame.Catalogue = Common{}

var extraCRCByID = map[uint32]uint8{
	heartbeatID:   50,
	paramValueID:  220,
	sysStatusID:   124,
	attitudeID:    39,
	gpsRawIntID:   24,
	commandAckID:  143,
	commandLongID: 152,
}

// ExtraCRC returns the per-message-id seed byte used in the CRC input.
func (Common) ExtraCRC(id uint32) (uint8, bool) {
	v, ok := extraCRCByID[id]
	return v, ok
}

// Parse decodes payload into one of this catalogue's known message types.
// Payloads shorter than a message's full schema length are zero-extended,
// matching the wire-length-is-authoritative rule in spec §4.C.
func (Common) Parse(version frame.ProtocolVersion, id uint32, payload []byte) (frame.Message, bool) {
	switch id {
	case heartbeatID:
		return parseHeartbeat(payload), true
	case paramValueID:
		return parseParamValue(payload), true
	case sysStatusID:
		return parseSysStatus(payload), true
	case attitudeID:
		return parseAttitude(payload), true
	case gpsRawIntID:
		return parseGPSRawInt(payload), true
	case commandAckID:
		return parseCommandAck(payload), true
	case commandLongID:
		return parseCommandLong(payload), true
	default:
		return nil, false
	}
}

// zeroExtend returns a copy of b padded with zero bytes to at least n
// bytes, matching spec's "payloads shorter than the full schema length are
// accepted; the parser zero-extends as needed."
func zeroExtend(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}
