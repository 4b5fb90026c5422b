package frame

import "io"

// StartByteV2 marks the beginning of a MAVLink v2 frame on the wire.
const StartByteV2 = 0xFD

// MavlinkIflagSigned is the only incompat flag bit this codec understands:
// it means a 13-byte signature tail follows the CRC. The signature is read
// and discarded, never verified (see spec Non-goals).
const MavlinkIflagSigned = 0x01

const signatureLen = 13

// ReadV2 consumes bytes from r until it produces one valid v2 frame.
// Malformed frames (bad CRC, an incompat flag bit this codec does not
// understand) are discarded and scanning resumes. Unlike ReadV1, a frame
// that passes CRC but whose payload the catalogue rejects is reported as
// ErrInvalidPayload rather than silently skipped — see spec's v1/v2
// parser-failure asymmetry.
func ReadV2(r io.Reader, cat Catalogue) (Header, Message, error) {
	var hdr [9]byte // LEN, IFLAGS, CFLAGS, SEQ, SYSID, COMPID, MSGID0-2
	var payload [255]byte
	var crcBuf [2]byte
	var sig [signatureLen]byte

	for {
		if err := seekStart(r, StartByteV2); err != nil {
			return Header{}, nil, err
		}
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return Header{}, nil, err
		}
		length := hdr[0]
		iflags, seq, sysID, compID := hdr[1], hdr[3], hdr[4], hdr[5]
		msgID := uint32(hdr[6]) | uint32(hdr[7])<<8 | uint32(hdr[8])<<16

		body := payload[:length]
		if _, err := io.ReadFull(r, body); err != nil {
			return Header{}, nil, err
		}
		if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
			return Header{}, nil, err
		}
		if iflags&MavlinkIflagSigned != 0 {
			if _, err := io.ReadFull(r, sig[:]); err != nil {
				return Header{}, nil, err
			}
		}
		if iflags&^MavlinkIflagSigned != 0 {
			continue // unknown incompat bit: can't interpret safely, resync
		}

		extra, known := cat.ExtraCRC(msgID)
		if !known {
			continue // unknown id: resync
		}
		c := NewCRC()
		c.Update(hdr[:])
		c.Update(body)
		c.UpdateByte(extra)
		if c.Value() != leUint16(crcBuf) {
			continue // CRC mismatch: resync
		}

		msg, ok := cat.Parse(V2, msgID, body)
		if !ok {
			return Header{}, nil, ErrInvalidPayload // v2 policy: report, don't skip
		}
		return Header{SystemID: sysID, ComponentID: compID, Sequence: seq}, msg, nil
	}
}

// WriteV2 serialises msg and writes one v2 frame to w. Incompat/compat
// flags are always emitted as zero; this codec never signs, so no
// signature tail is ever written.
func WriteV2(w io.Writer, h Header, msg Message, cat Catalogue) error {
	id := msg.MessageID()
	payload := msg.Marshal()
	if len(payload) > 255 {
		return ErrPayloadTooLarge
	}
	extra, known := cat.ExtraCRC(id)
	if !known {
		extra = 0
	}

	head := [10]byte{
		StartByteV2,
		byte(len(payload)),
		0, // incompat flags
		0, // compat flags
		h.Sequence,
		h.SystemID,
		h.ComponentID,
		byte(id),
		byte(id >> 8),
		byte(id >> 16),
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
