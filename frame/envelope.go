package frame

// MarshalEnvelope serialises f into the portable, self-describing envelope
// used for datagram logs and cross-transport relaying: no start byte, no
// CRC, no length prefix — the whole datagram is the unit. Layout:
// sys_id | comp_id | seq | msgid (u32 LE for V2, u8 for V1) | payload.
func MarshalEnvelope(f Frame) []byte {
	payload := f.Message.Marshal()
	id := f.Message.MessageID()

	var out []byte
	if f.ProtocolVersion == V2 {
		out = make([]byte, 0, 3+4+len(payload))
		out = append(out, f.Header.SystemID, f.Header.ComponentID, f.Header.Sequence)
		out = append(out, byte(id), byte(id>>8), byte(id>>16), byte(id>>24))
	} else {
		out = make([]byte, 0, 3+1+len(payload))
		out = append(out, f.Header.SystemID, f.Header.ComponentID, f.Header.Sequence)
		out = append(out, byte(id))
	}
	return append(out, payload...)
}

// UnmarshalEnvelope is MarshalEnvelope's inverse for the given protocol
// version. It returns (Frame{}, false) when the envelope is too short for
// its id width or the catalogue rejects the payload.
func UnmarshalEnvelope(version ProtocolVersion, data []byte, cat Catalogue) (Frame, bool) {
	idWidth := 1
	if version == V2 {
		idWidth = 4
	}
	if len(data) < 3+idWidth {
		return Frame{}, false
	}
	h := Header{SystemID: data[0], ComponentID: data[1], Sequence: data[2]}

	var id uint32
	if version == V2 {
		id = uint32(data[3]) | uint32(data[4])<<8 | uint32(data[5])<<16 | uint32(data[6])<<24
	} else {
		id = uint32(data[3])
	}
	payload := data[3+idWidth:]

	msg, ok := cat.Parse(version, id, payload)
	if !ok {
		return Frame{}, false
	}
	return Frame{Header: h, Message: msg, ProtocolVersion: version}, true
}
