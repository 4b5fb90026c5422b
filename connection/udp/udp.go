// Package udp implements the udpin/udpout connection backends (spec §4.G).
// udpin binds and learns its peer from the first received datagram;
// udpout binds an ephemeral local port and fixes the peer up front. Each
// datagram carries exactly one frame: the frame reader scans only that
// datagram's bytes, and a datagram in which it finds no valid frame (bad
// CRC, parser reject, or no frame at all) is discarded and the next
// datagram is read, rather than the error being returned from Recv.
package udp

import (
	"bytes"
	"net"
	"sync"

	"github.com/tellurian-uas/gomavlink/connection"
	"github.com/tellurian-uas/gomavlink/frame"
)

// maxDatagram is large enough for any MAVLink v2 frame (10-byte header +
// 255-byte payload + 2-byte CRC + 13-byte signature) with headroom for the
// UDP/IP envelope a kernel might report back on a jumbo-capable link.
const maxDatagram = 2048

// Conn is the udpin/udpout backend. It does not embed connection.Base:
// unlike the stream backends, a datagram is the unit of framing and the
// peer address is either learned or fixed, so Recv/Send have their own
// logic even though the locking and sequence discipline mirror Base's.
type Conn struct {
	pc      *net.UDPConn
	version frame.ProtocolVersion
	cat     frame.Catalogue

	readMu sync.Mutex

	writeMu sync.Mutex
	seq     uint8

	peerMu    sync.RWMutex
	peer      *net.UDPAddr
	learnPeer bool

	closeOnce sync.Once
}

var _ connection.Conn = (*Conn)(nil)

// In binds addr and learns its peer from the first datagram received.
// Per spec's open question on UDP server peer learning, a Send issued
// before any datagram has been received is a documented no-op success
// (see DESIGN.md) rather than an error or an indefinitely queued write.
func In(addr string, version frame.ProtocolVersion, cat frame.Catalogue) (*Conn, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	pc, err := listenUDP(laddr)
	if err != nil {
		return nil, err
	}
	return &Conn{pc: pc, version: version, cat: cat, learnPeer: true}, nil
}

// Out binds an ephemeral local port and fixes the peer at addr.
func Out(addr string, version frame.ProtocolVersion, cat frame.Catalogue) (*Conn, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	pc, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, err
	}
	return &Conn{pc: pc, version: version, cat: cat, peer: raddr}, nil
}

func (c *Conn) Recv() (frame.Header, frame.Message, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()
	buf := make([]byte, maxDatagram)
	for {
		n, addr, err := c.pc.ReadFromUDP(buf)
		if err != nil {
			return frame.Header{}, nil, err
		}
		if c.learnPeer {
			c.peerMu.Lock()
			c.peer = addr
			c.peerMu.Unlock()
		}
		h, msg, derr := frame.Read(bytes.NewReader(buf[:n]), c.version, c.cat)
		if derr != nil {
			continue // malformed datagram: discard, read the next one
		}
		return h, msg, nil
	}
}

func (c *Conn) Send(header frame.Header, msg frame.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.peerMu.RLock()
	peer := c.peer
	c.peerMu.RUnlock()
	if peer == nil {
		return nil // no peer learned yet: no-op success, see package doc
	}

	header.Sequence = c.seq
	var buf bytes.Buffer
	if err := frame.Write(&buf, c.version, header, msg, c.cat); err != nil {
		return err
	}
	if _, err := c.pc.WriteToUDP(buf.Bytes(), peer); err != nil {
		return err
	}
	c.seq++
	return nil
}

func (c *Conn) SendDefault(msg frame.Message) error {
	return c.Send(frame.DefaultHeader(), msg)
}

func (c *Conn) SendFrame(f frame.Frame) error {
	return c.Send(f.Header, f.Message)
}

func (c *Conn) RecvFrame() (frame.Frame, error) {
	h, msg, err := c.Recv()
	if err != nil {
		return frame.Frame{}, err
	}
	return frame.Frame{Header: h, Message: msg, ProtocolVersion: c.version}, nil
}

func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.pc.Close() })
	return err
}
