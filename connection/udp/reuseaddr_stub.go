//go:build !linux

package udp

import "net"

// listenUDP binds addr with the platform default socket options; the
// SO_REUSEADDR tuning in reuseaddr_linux.go is Linux-only.
func listenUDP(addr *net.UDPAddr) (*net.UDPConn, error) {
	return net.ListenUDP("udp", addr)
}
