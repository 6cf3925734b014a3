package netchan

import (
	"log"
	"net"

	"github.com/gamevidea/netcode/internal/protocol"
	"github.com/gamevidea/netcode/transport"
)

// OOBHandler is invoked for every connectionless datagram the listener reads.
type OOBHandler func(addr net.Addr, payload []byte)

// Listener demultiplexes datagrams arriving on a shared socket: connectionless
// packets go to the out-of-band handler, everything else is routed to the
// channel registered for the source address. Polling is driven by the caller's
// tick; the listener spawns no goroutines of its own.
type Listener struct {
	conn     transport.Datagram
	channels map[string]*Channel
	oob      OOBHandler
	logger   *log.Logger
	buf      []byte
}

func NewListener(conn transport.Datagram, logger *log.Logger) *Listener {
	if logger == nil {
		logger = log.Default()
	}

	return &Listener{
		conn:     conn,
		channels: map[string]*Channel{},
		logger:   logger,
		buf:      make([]byte, protocol.MAX_MSGLEN),
	}
}

// HandleOOB registers the handler for connectionless datagrams.
func (l *Listener) HandleOOB(handler OOBHandler) {
	l.oob = handler
}

// Register routes future packets from addr to ch.
func (l *Listener) Register(addr net.Addr, ch *Channel) {
	l.channels[addr.String()] = ch
}

// Unregister drops the channel registered for addr, if any.
func (l *Listener) Unregister(addr net.Addr) {
	delete(l.channels, addr.String())
}

// Channel returns the channel registered for addr.
func (l *Listener) Channel(addr net.Addr) (*Channel, bool) {
	ch, ok := l.channels[addr.String()]
	return ch, ok
}

// Poll reads a single datagram off the socket and routes it. It returns the
// channel the payload arrived on together with the completed message, or
// (nil, nil, nil) when the datagram was out-of-band, from an unknown peer,
// stale, or an incomplete fragment. A read error (including a poll deadline
// expiring) is returned to the caller.
func (l *Listener) Poll(now int64) (*Channel, []byte, error) {
	n, addr, err := l.conn.ReadFrom(l.buf)
	if err != nil {
		return nil, nil, err
	}

	packet := make([]byte, n)
	copy(packet, l.buf[:n])

	if IsOutOfBand(packet) {
		if l.oob != nil {
			l.oob(addr, OOBPayload(packet))
		}
		return nil, nil, nil
	}

	ch, ok := l.channels[addr.String()]
	if !ok {
		l.logger.Printf("netchan: sequenced packet from unknown address %v", addr)
		return nil, nil, nil
	}

	payload, ok := ch.Process(packet, now)
	if !ok {
		return nil, nil, nil
	}

	return ch, payload, nil
}
