package frame

import (
	"bytes"
	"errors"
	"testing"
)

// testMsg is a minimal Message used only by this package's own tests, so
// these tests don't need to import package dialect (which imports frame).
type testMsg struct {
	id   uint32
	body []byte
}

func (m testMsg) MessageID() uint32 { return m.id }
func (m testMsg) Marshal() []byte   { return m.body }

// testCatalogue knows exactly one message id and its extra CRC seed.
type testCatalogue struct {
	id      uint32
	extra   uint8
	rejectN int // number of Parse calls to reject before succeeding, for resync tests
}

func (c *testCatalogue) ExtraCRC(id uint32) (uint8, bool) {
	if id != c.id {
		return 0, false
	}
	return c.extra, true
}

func (c *testCatalogue) Parse(version ProtocolVersion, id uint32, payload []byte) (Message, bool) {
	if id != c.id {
		return nil, false
	}
	if c.rejectN > 0 {
		c.rejectN--
		return nil, false
	}
	return testMsg{id: id, body: append([]byte(nil), payload...)}, true
}

func TestV1_RoundTrip(t *testing.T) {
	cat := &testCatalogue{id: 42, extra: 7}
	h := Header{SystemID: 1, ComponentID: 2, Sequence: 9}
	msg := testMsg{id: 42, body: []byte{1, 2, 3, 4}}

	var buf bytes.Buffer
	if err := WriteV1(&buf, h, msg, cat); err != nil {
		t.Fatalf("WriteV1: %v", err)
	}

	gotH, gotMsg, err := ReadV1(&buf, cat)
	if err != nil {
		t.Fatalf("ReadV1: %v", err)
	}
	if gotH != h {
		t.Fatalf("header mismatch: got %+v want %+v", gotH, h)
	}
	if !bytes.Equal(gotMsg.Marshal(), msg.body) {
		t.Fatalf("payload mismatch: got %v want %v", gotMsg.Marshal(), msg.body)
	}
}

func TestV2_RoundTrip(t *testing.T) {
	cat := &testCatalogue{id: 1000, extra: 3}
	h := Header{SystemID: 10, ComponentID: 20, Sequence: 200}
	msg := testMsg{id: 1000, body: []byte{9, 8, 7}}

	var buf bytes.Buffer
	if err := WriteV2(&buf, h, msg, cat); err != nil {
		t.Fatalf("WriteV2: %v", err)
	}
	gotH, gotMsg, err := ReadV2(&buf, cat)
	if err != nil {
		t.Fatalf("ReadV2: %v", err)
	}
	if gotH != h {
		t.Fatalf("header mismatch: got %+v want %+v", gotH, h)
	}
	if !bytes.Equal(gotMsg.Marshal(), msg.body) {
		t.Fatalf("payload mismatch: got %v want %v", gotMsg.Marshal(), msg.body)
	}
}

func TestV1_ResyncsAfterGarbage(t *testing.T) {
	cat := &testCatalogue{id: 5, extra: 1}
	h := Header{SystemID: 1, ComponentID: 1, Sequence: 1}
	msg := testMsg{id: 5, body: []byte{1}}

	var buf bytes.Buffer
	buf.Write([]byte{0xAA, 0xBB, 0xCC}) // junk containing no start byte at all

	var frameBuf bytes.Buffer
	if err := WriteV1(&frameBuf, h, msg, cat); err != nil {
		t.Fatalf("WriteV1: %v", err)
	}
	buf.Write(frameBuf.Bytes())

	gotH, gotMsg, err := ReadV1(&buf, cat)
	if err != nil {
		t.Fatalf("ReadV1 after garbage: %v", err)
	}
	if gotH != h || !bytes.Equal(gotMsg.Marshal(), msg.body) {
		t.Fatalf("unexpected decode after resync: %+v %v", gotH, gotMsg.Marshal())
	}
}

func TestV1_CorruptedCRCIsResynced(t *testing.T) {
	cat := &testCatalogue{id: 5, extra: 1}
	h := Header{SystemID: 1, ComponentID: 1, Sequence: 1}
	msg := testMsg{id: 5, body: []byte{1, 2}}

	var bad bytes.Buffer
	if err := WriteV1(&bad, h, msg, cat); err != nil {
		t.Fatalf("WriteV1: %v", err)
	}
	corrupt := bad.Bytes()
	corrupt[len(corrupt)-1] ^= 0xFF // flip every bit of the CRC's high byte

	var good bytes.Buffer
	if err := WriteV1(&good, h, msg, cat); err != nil {
		t.Fatalf("WriteV1: %v", err)
	}

	var stream bytes.Buffer
	stream.Write(corrupt)
	stream.Write(good.Bytes())

	gotH, gotMsg, err := ReadV1(&stream, cat)
	if err != nil {
		t.Fatalf("ReadV1 across corrupted frame: %v", err)
	}
	if gotH != h || !bytes.Equal(gotMsg.Marshal(), msg.body) {
		t.Fatalf("expected to land on the valid frame after the corrupted one")
	}
}

func TestV2_ParserRejectReturnsErrInvalidPayload(t *testing.T) {
	cat := &testCatalogue{id: 77, extra: 4, rejectN: 1}
	h := Header{SystemID: 1, ComponentID: 1, Sequence: 1}
	msg := testMsg{id: 77, body: []byte{5, 6}}

	var buf bytes.Buffer
	if err := WriteV2(&buf, h, msg, cat); err != nil {
		t.Fatalf("WriteV2: %v", err)
	}

	_, _, err := ReadV2(&buf, cat)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestV1_ParserRejectIsSkippedNotReturned(t *testing.T) {
	cat := &testCatalogue{id: 77, extra: 4}
	h := Header{SystemID: 1, ComponentID: 1, Sequence: 1}
	badMsg := testMsg{id: 77, body: []byte{5, 6}}
	goodMsg := testMsg{id: 77, body: []byte{9}}

	var buf bytes.Buffer
	if err := WriteV1(&buf, h, badMsg, cat); err != nil {
		t.Fatalf("WriteV1 (bad): %v", err)
	}
	cat.rejectN = 1 // first Parse call (the bad frame) is rejected
	if err := WriteV1(&buf, h, goodMsg, cat); err != nil {
		t.Fatalf("WriteV1 (good): %v", err)
	}

	gotH, gotMsg, err := ReadV1(&buf, cat)
	if err != nil {
		t.Fatalf("ReadV1: %v", err)
	}
	if gotH != h || !bytes.Equal(gotMsg.Marshal(), goodMsg.body) {
		t.Fatalf("expected v1 to skip the rejected frame and decode the next one, got %v", gotMsg.Marshal())
	}
}

func TestV2_SignatureTailIsSkipped(t *testing.T) {
	cat := &testCatalogue{id: 9, extra: 2}
	h := Header{SystemID: 1, ComponentID: 1, Sequence: 1}
	msg := testMsg{id: 9, body: []byte{1, 2, 3}}

	var buf bytes.Buffer
	if err := WriteV2(&buf, h, msg, cat); err != nil {
		t.Fatalf("WriteV2: %v", err)
	}
	raw := buf.Bytes()
	raw[2] |= MavlinkIflagSigned // set the signed incompat flag after the fact

	// Recompute CRC to cover the mutated iflags byte.
	c := NewCRC()
	c.Update(raw[1:10])
	c.Update(msg.body)
	c.UpdateByte(2)
	crc := c.Value()
	raw[10+len(msg.body)] = byte(crc)
	raw[10+len(msg.body)+1] = byte(crc >> 8)

	signed := append(append([]byte(nil), raw...), make([]byte, signatureLen)...)

	gotH, gotMsg, err := ReadV2(bytes.NewReader(signed), cat)
	if err != nil {
		t.Fatalf("ReadV2 with signature tail: %v", err)
	}
	if gotH != h || !bytes.Equal(gotMsg.Marshal(), msg.body) {
		t.Fatalf("signed frame decoded incorrectly: %+v %v", gotH, gotMsg.Marshal())
	}
}

func TestEnvelope_RoundTrip(t *testing.T) {
	cat := &testCatalogue{id: 123, extra: 9}
	f := Frame{
		Header:          Header{SystemID: 3, ComponentID: 4, Sequence: 5},
		Message:         testMsg{id: 123, body: []byte{10, 20, 30}},
		ProtocolVersion: V2,
	}
	enc := MarshalEnvelope(f)
	got, ok := UnmarshalEnvelope(V2, enc, cat)
	if !ok {
		t.Fatalf("UnmarshalEnvelope rejected a valid envelope")
	}
	if got.Header != f.Header {
		t.Fatalf("header mismatch: got %+v want %+v", got.Header, f.Header)
	}
	if !bytes.Equal(got.Message.Marshal(), f.Message.Marshal()) {
		t.Fatalf("payload mismatch")
	}
}

func TestEnvelope_TooShortIsRejected(t *testing.T) {
	cat := &testCatalogue{id: 1, extra: 1}
	_, ok := UnmarshalEnvelope(V2, []byte{1, 2}, cat)
	if ok {
		t.Fatalf("expected short envelope to be rejected")
	}
}
