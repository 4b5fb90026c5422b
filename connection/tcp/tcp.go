// Package tcp implements the tcpin/tcpout connection backends (spec §4.F):
// tcpin binds, listens, and accepts exactly one connection synchronously
// during construction — a deliberate simplification, the codec is
// point-to-point — then serves that socket for the connection's lifetime.
// tcpout resolves and connects.
package tcp

import (
	"fmt"
	"net"
	"time"

	"github.com/tellurian-uas/gomavlink/connection"
	"github.com/tellurian-uas/gomavlink/frame"
)

// keepAlivePeriod matches the teacher server's TCP client tuning.
const keepAlivePeriod = 30 * time.Second

func tune(c *net.TCPConn) {
	_ = c.SetNoDelay(true)
	_ = c.SetKeepAlive(true)
	_ = c.SetKeepAlivePeriod(keepAlivePeriod)
}

// In listens on addr, accepts exactly one client, and returns a Conn
// wrapping it. The listener is closed as soon as the one connection is
// accepted; this backend is point-to-point only.
func In(addr string, version frame.ProtocolVersion, cat frame.Catalogue) (*connection.Base, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcpin listen %s: %w", addr, err)
	}
	conn, err := ln.Accept()
	_ = ln.Close()
	if err != nil {
		return nil, fmt.Errorf("tcpin accept %s: %w", addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tune(tc)
	}
	return connection.NewBase(conn, conn, conn, version, cat), nil
}

// Out dials addr as a TCP client.
func Out(addr string, version frame.ProtocolVersion, cat frame.Catalogue) (*connection.Base, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcpout dial %s: %w", addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tune(tc)
	}
	return connection.NewBase(conn, conn, conn, version, cat), nil
}
