// Package mavlink ties the frame codec and the transport backends together
// behind the address grammar from spec §4.I / §6:
//
//	tcpin:<host>:<port>   tcpout:<host>:<port>
//	udpin:<host>:<port>   udpout:<host>:<port>
//	serial:<path>:<baud>
//
// Dial parses the scheme exactly once and returns a connection.Conn
// polymorphic over TCPServer/TCPClient/UDPServer/UDPClient/Serial.
package mavlink

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tellurian-uas/gomavlink/connection"
	"github.com/tellurian-uas/gomavlink/connection/serial"
	"github.com/tellurian-uas/gomavlink/connection/tcp"
	"github.com/tellurian-uas/gomavlink/connection/udp"
	"github.com/tellurian-uas/gomavlink/frame"
)

// Dial connects to a MAVLink node by address string, instantiating the
// backend the scheme names. version and cat apply to every backend.
// Unsupported schemes, and an address with no scheme separator, return
// connection.ErrProtocolUnsupported before any I/O is attempted; all
// transports are always compiled in. Transport-level failures (bind refused, host
// unreachable, port locked) propagate unchanged from the backend.
func Dial(address string, version frame.ProtocolVersion, cat frame.Catalogue) (connection.Conn, error) {
	scheme, rest, ok := strings.Cut(address, ":")
	if !ok {
		return nil, connection.ErrProtocolUnsupported
	}
	switch scheme {
	case "tcpin":
		return tcp.In(rest, version, cat)
	case "tcpout":
		return tcp.Out(rest, version, cat)
	case "udpin":
		return udp.In(rest, version, cat)
	case "udpout":
		return udp.Out(rest, version, cat)
	case "serial":
		path, baudStr, ok := cutLast(rest, ":")
		if !ok {
			return nil, fmt.Errorf("serial address %q: expected path:baud", address)
		}
		baud, err := strconv.Atoi(baudStr)
		if err != nil {
			return nil, fmt.Errorf("serial address %q: invalid baud: %w", address, err)
		}
		return serial.Open(path, baud, version, cat)
	default:
		return nil, connection.ErrProtocolUnsupported
	}
}

// cutLast splits on the last occurrence of sep, so a serial device path
// containing sep (unusual, but not impossible on some platforms) does not
// get mistaken for the baud rate separator.
func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
