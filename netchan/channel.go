// Package netchan implements the channel protocol: reliable and unreliable
// message delivery over an unreliable, reordering, duplicating datagram
// transport with a two-word header.
//
// Every packet starts with two 32-bit words. The first carries the sender's
// outgoing sequence with the reliable flag in bit 31 (and, on the extended
// protocol, the fragmentation flag in bit 30); the second carries the last
// sequence the sender has seen from the peer with the reliable acknowledgment
// toggle in bit 31. At most one reliable message is in flight per direction:
// it is retransmitted on every outgoing packet until the peer's toggle
// acknowledges it.
package netchan

import (
	"log"
	"net"

	"github.com/gamevidea/binary/buffer"
	"github.com/gamevidea/binary/byteorder"
	"github.com/gamevidea/netcode/internal/protocol"
	"github.com/gamevidea/netcode/transport"
)

// Role indicates which end of the connection a channel sits on. It decides
// whether the channel writes or reads the qport field.
type Role = uint8

const (
	RoleClient Role = iota
	RoleServer
)

// reliableSlot holds the single in-flight reliable message for the outgoing
// direction. It is either empty or armed with the staged bytes; the sequence
// toggle that identifies it lives on the channel and flips each time the slot
// is armed.
type reliableSlot struct {
	armed bool
	data  []byte
}

// Channel is one end of a connection. It is not safe for concurrent use: the
// caller drives it from a single tick loop, transmitting once per tick and
// processing packets as they are polled off the socket.
type Channel struct {
	role       Role
	conn       transport.Datagram
	remoteAddr net.Addr
	qport      uint16
	protocol   int32

	outgoingSequence             uint32
	incomingSequence             uint32
	incomingAcknowledged         uint32
	incomingReliableAcknowledged uint32
	incomingReliableSequence     uint32
	reliableSequence             uint32
	lastReliableSequence         uint32

	// pending is the staging area for the next reliable message; it moves
	// into the reliable slot when the slot is free.
	pending        []byte
	reliable       reliableSlot
	maxMessageSize int
	allowOverflow  bool

	dup *PacketDuplicator

	dropped      uint32
	lastSent     int64
	lastReceived int64

	assembler *protocol.FragmentAssembler

	logger *log.Logger
	debug  bool
}

// NewChannel sets up a channel towards remote over conn. The outgoing sequence
// starts at 1 so that the peer's freshly reset incoming sequence of 0 accepts
// the first packet. The reliable staging buffer is overflow tolerant by
// default: a message that would not fit drops the staged data with a
// diagnostic instead of failing.
func NewChannel(role Role, conn transport.Datagram, remote net.Addr, qport uint16, now int64) *Channel {
	return &Channel{
		role:             role,
		conn:             conn,
		remoteAddr:       remote,
		qport:            qport,
		protocol:         protocol.PROTOCOL_LEGACY,
		outgoingSequence: 1,
		incomingSequence: 0,
		maxMessageSize:   protocol.MAX_MSGLEN - 16,
		allowOverflow:    true,
		dup:              CreatePacketDuplicator(),
		lastReceived:     now,
		assembler:        protocol.CreateFragmentAssembler(),
		logger:           log.Default(),
	}
}

// SetProtocol sets the negotiated protocol version. The extended protocol
// enables the 1-byte qport and, at its latest revision, inbound fragment
// reassembly.
func (c *Channel) SetProtocol(version int32) {
	c.protocol = version
}

func (c *Channel) Protocol() int32 {
	return c.protocol
}

// SetLogger replaces the diagnostics logger. Passing nil restores the default.
func (c *Channel) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	c.logger = logger
}

// SetDebug toggles per-packet diagnostics for rejected and dumped data.
func (c *Channel) SetDebug(debug bool) {
	c.debug = debug
}

// SetMaxMessageSize bounds the reliable staging buffer. allowOverflow controls
// whether an oversized queue attempt drops the staged data (true) or is
// reported as an error (false).
func (c *Channel) SetMaxMessageSize(size int, allowOverflow bool) {
	c.maxMessageSize = size
	c.allowOverflow = allowOverflow
}

// RemoteAddr returns the peer address the channel transmits to.
func (c *Channel) RemoteAddr() net.Addr {
	return c.remoteAddr
}

// Dropped returns how many packets were lost between the two most recently
// accepted incoming packets.
func (c *Channel) Dropped() uint32 {
	return c.dropped
}

// LastSent returns the timestamp of the last transmitted packet.
func (c *Channel) LastSent() int64 {
	return c.lastSent
}

// LastReceived returns the timestamp of the last accepted incoming packet.
func (c *Channel) LastReceived() int64 {
	return c.lastReceived
}

// CanReliable reports whether the reliable slot is free, i.e. the previous
// reliable message has been acknowledged.
func (c *Channel) CanReliable() bool {
	return !c.reliable.armed
}

// NeedReliable reports whether the next transmission must carry the reliable
// payload: either the peer acknowledged past our last reliable send without
// acknowledging the payload itself, or the slot is free and new reliable data
// is staged.
func (c *Channel) NeedReliable() bool {
	if c.incomingAcknowledged > c.lastReliableSequence &&
		c.incomingReliableAcknowledged != c.reliableSequence {
		return true
	}

	if !c.reliable.armed && len(c.pending) > 0 {
		return true
	}

	return false
}

// QueueReliable stages data for reliable delivery. Staged data is coalesced
// into a single message and moved into the reliable slot on the next transmit
// once the slot is free. If the staged message would exceed the configured
// maximum, an overflow-tolerant channel drops the staged data with a
// diagnostic; otherwise ROF_ERROR is returned.
func (c *Channel) QueueReliable(data []byte) error {
	if len(c.pending)+len(data) > c.maxMessageSize {
		if !c.allowOverflow {
			return ROF_ERROR
		}

		c.logger.Printf("netchan: reliable buffer overflowed, dropping %d staged bytes", len(c.pending))
		c.pending = c.pending[:0]

		if len(data) > c.maxMessageSize {
			return nil
		}
	}

	c.pending = append(c.pending, data...)
	return nil
}

// Transmit sends one packet carrying the in-flight reliable payload if due,
// followed by as much of the unreliable payload as fits. Unreliable data that
// does not fit is dropped, never fragmented.
func (c *Channel) Transmit(payload []byte, now int64) error {
	return c.TransmitDup(payload, now, 0)
}

// TransmitDup behaves like Transmit but additionally sends dupCount verbatim
// copies of the datagram to resist bursty loss. Duplicates reuse the packet's
// sequence number, so the receiver's stale-sequence check discards them.
func (c *Channel) TransmitDup(payload []byte, now int64, dupCount int) error {
	sendReliable := c.NeedReliable()

	// Move staged reliable data into the free slot, flipping the toggle that
	// the peer will echo back to acknowledge it.
	if !c.reliable.armed && len(c.pending) > 0 {
		c.reliable.data = append(c.reliable.data[:0], c.pending...)
		c.reliable.armed = true
		c.pending = c.pending[:0]
		c.reliableSequence ^= 1
	}

	send := buffer.New(protocol.MAX_MSGLEN)

	w1 := c.outgoingSequence &^ protocol.RELIABLE_BIT
	if sendReliable {
		w1 |= protocol.RELIABLE_BIT
	}

	w2 := (c.incomingSequence &^ protocol.RELIABLE_BIT) |
		(c.incomingReliableSequence << 31)

	c.outgoingSequence++
	c.lastSent = now

	if err := send.WriteUint32(w1, byteorder.LittleEndian); err != nil {
		return err
	}

	if err := send.WriteUint32(w2, byteorder.LittleEndian); err != nil {
		return err
	}

	// Only client packets carry a qport; the extended protocol shrank it to
	// one byte.
	if c.role == RoleClient {
		if c.protocol >= protocol.PROTOCOL_EXTENDED_QPORT {
			if err := send.WriteUint8(uint8(c.qport)); err != nil {
				return err
			}
		} else {
			if err := send.WriteUint16(c.qport, byteorder.LittleEndian); err != nil {
				return err
			}
		}
	}

	if sendReliable {
		if err := send.Write(c.reliable.data); err != nil {
			return err
		}
		c.lastReliableSequence = c.outgoingSequence
	}

	if len(payload) <= send.Remaining() {
		if err := send.Write(payload); err != nil {
			return err
		}
	} else {
		c.logger.Printf("netchan: dumped %d bytes of unreliable payload", len(payload))
	}

	return c.dup.Send(c.conn, c.remoteAddr, send.Bytes(), dupCount)
}

// Process validates an incoming packet and returns the payload ready for the
// protocol layer above. It returns (nil, false) when the packet is stale or
// duplicated, malformed, or an incomplete or out-of-order fragment.
func (c *Channel) Process(packet []byte, now int64) ([]byte, bool) {
	b := buffer.From(packet)

	w1, err := b.ReadUint32(byteorder.LittleEndian)
	if err != nil {
		return nil, false
	}

	w2, err := b.ReadUint32(byteorder.LittleEndian)
	if err != nil {
		return nil, false
	}

	// The qport was already used to route the packet to this channel; skip it.
	if c.role == RoleServer {
		if c.protocol >= protocol.PROTOCOL_EXTENDED_QPORT {
			if _, err := b.ReadUint8(); err != nil {
				return nil, false
			}
		} else {
			if _, err := b.ReadUint16(byteorder.LittleEndian); err != nil {
				return nil, false
			}
		}
	}

	reliableMessage := w1 >> 31
	reliableAck := w2 >> 31

	fragmented := c.protocol >= protocol.PROTOCOL_EXTENDED &&
		(w1&protocol.FRAGMENT_BIT) != 0

	sequence := w1 &^ protocol.RELIABLE_BIT
	if c.protocol >= protocol.PROTOCOL_EXTENDED {
		sequence &^= protocol.FRAGMENT_BIT
	}
	sequenceAck := w2 &^ protocol.RELIABLE_BIT

	// Anything not strictly newer is a reorder, a replay, or one of our own
	// duplicate sends.
	if sequence <= c.incomingSequence {
		if c.debug {
			c.logger.Printf("netchan: stale packet %d <= %d", sequence, c.incomingSequence)
		}
		return nil, false
	}

	c.dropped = sequence - c.incomingSequence - 1
	if c.dropped > 0 && c.debug {
		c.logger.Printf("netchan: %d packets dropped before %d", c.dropped, sequence)
	}

	payload, ok := c.readPayload(b, fragmented, sequence)
	if !ok {
		return nil, false
	}

	// The peer echoed our reliable toggle: the in-flight message arrived and
	// the slot is free again.
	if reliableAck == c.reliableSequence {
		c.reliable.armed = false
		c.reliable.data = nil
	}

	c.incomingSequence = sequence
	c.incomingAcknowledged = sequenceAck
	c.incomingReliableAcknowledged = reliableAck

	if reliableMessage != 0 {
		c.incomingReliableSequence ^= 1
	}

	c.lastReceived = now

	return payload, true
}

// readPayload extracts the packet body, routing fragmented packets through the
// assembler. For an intermediate fragment it returns (nil, false): the packet
// is consumed but no message is ready yet.
func (c *Channel) readPayload(b *buffer.Buffer, fragmented bool, sequence uint32) ([]byte, bool) {
	if !fragmented {
		rest := make([]byte, b.Remaining())
		if err := b.Read(rest); err != nil {
			return nil, false
		}
		return rest, true
	}

	offset, err := b.ReadUint16(byteorder.LittleEndian)
	if err != nil {
		c.assembler.Reset()
		return nil, false
	}

	length, err := b.ReadUint16(byteorder.LittleEndian)
	if err != nil {
		c.assembler.Reset()
		return nil, false
	}

	if int(length) > b.Remaining() {
		if c.debug {
			c.logger.Printf("netchan: fragment overflows packet (%d > %d)", length, b.Remaining())
		}
		c.assembler.Reset()
		return nil, false
	}

	data := make([]byte, length)
	if err := b.Read(data); err != nil {
		c.assembler.Reset()
		return nil, false
	}

	complete, done := c.assembler.Receive(sequence, int(offset), data)
	if !done {
		if !c.assembler.InProgress() && c.debug {
			c.logger.Printf("netchan: discarded fragment at offset %d of packet %d", offset, sequence)
		}
		return nil, false
	}

	return complete, true
}
