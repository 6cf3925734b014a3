// Package transport provides the datagram connections the channel protocol
// runs over: a thin UDP wrapper and a websocket fallback for peers that cannot
// speak raw UDP.
package transport

import (
	"net"
	"time"
)

// Datagram is the minimal surface the channel layer sends and receives
// through. *net.UDPConn satisfies it directly; other transports adapt to it.
type Datagram interface {
	WriteTo(p []byte, addr net.Addr) (int, error)
	ReadFrom(p []byte) (n int, addr net.Addr, err error)
}

// UDP is a datagram connection bound to a local UDP address.
type UDP struct {
	*net.UDPConn
}

// ListenUDP binds a datagram socket to the provided local address. Returns an
// error if the address was invalid or in use already.
func ListenUDP(addr string) (*UDP, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	socket, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}

	return &UDP{UDPConn: socket}, nil
}

// SetPollDeadline bounds the next ReadFrom so that a caller driving the
// channel from a fixed simulation tick never blocks past its budget.
func (u *UDP) SetPollDeadline(d time.Duration) error {
	return u.SetReadDeadline(time.Now().Add(d))
}
