package frame

import "io"

// StartByteV1 marks the beginning of a MAVLink v1 frame on the wire.
const StartByteV1 = 0xFE

// ReadV1 consumes bytes from r until it produces one valid v1 frame. Any
// malformed frame — bad start byte run, CRC mismatch, or a payload the
// catalogue rejects — is silently discarded and scanning resumes at
// SEEK_STX; only an I/O error from r propagates.
func ReadV1(r io.Reader, cat Catalogue) (Header, Message, error) {
	var hdr [5]byte // LEN, SEQ, SYSID, COMPID, MSGID
	var payload [255]byte
	var crcBuf [2]byte

	for {
		if err := seekStart(r, StartByteV1); err != nil {
			return Header{}, nil, err
		}
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return Header{}, nil, err
		}
		length := hdr[0]
		seq, sysID, compID, msgID := hdr[1], hdr[2], hdr[3], uint32(hdr[4])

		body := payload[:length]
		if _, err := io.ReadFull(r, body); err != nil {
			return Header{}, nil, err
		}
		if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
			return Header{}, nil, err
		}

		extra, known := cat.ExtraCRC(msgID)
		if !known {
			continue // unknown id: resync, tolerant per v1 policy
		}
		c := NewCRC()
		c.Update(hdr[:])
		c.Update(body)
		c.UpdateByte(extra)
		if c.Value() != leUint16(crcBuf) {
			continue // CRC mismatch: resync
		}

		msg, ok := cat.Parse(V1, msgID, body)
		if !ok {
			continue // parser reject: resync (v1 tolerant policy)
		}
		return Header{SystemID: sysID, ComponentID: compID, Sequence: seq}, msg, nil
	}
}

// WriteV1 serialises msg and writes one v1 frame to w.
func WriteV1(w io.Writer, h Header, msg Message, cat Catalogue) error {
	id := msg.MessageID()
	payload := msg.Marshal()
	if len(payload) > 255 {
		return ErrPayloadTooLarge
	}
	extra, known := cat.ExtraCRC(id)
	if !known {
		extra = 0
	}

	head := [6]byte{
		StartByteV1,
		byte(len(payload)),
		h.Sequence,
		h.SystemID,
		h.ComponentID,
		byte(id),
	}

	c := NewCRC()
	c.Update(head[1:])
	c.Update(payload)
	c.UpdateByte(extra)
	crc := c.Value()

	if _, err := w.Write(head[:]); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	_, err := w.Write([]byte{byte(crc), byte(crc >> 8)})
	return err
}

// seekStart reads bytes from r one at a time until it sees start, or
// returns the read error (including EOF) unchanged.
func seekStart(r io.Reader, start byte) error {
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		if b[0] == start {
			return nil
		}
	}
}

func leUint16(b [2]byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}
