package netchan

import (
	"net"

	"github.com/gamevidea/binary/buffer"
	"github.com/gamevidea/binary/byteorder"
	"github.com/gamevidea/netcode/internal/protocol"
	"github.com/gamevidea/netcode/transport"
)

// Out-of-band packets replace the sequence word with all bits set and carry
// raw payload after it. They bypass sequencing entirely and are used for
// connectionless handshake and query traffic before a channel exists.

// OutOfBand sends a connectionless datagram to addr.
func OutOfBand(conn transport.Datagram, addr net.Addr, data []byte) error {
	if len(data) > protocol.MAX_MSGLEN-4 {
		return OTL_ERROR
	}

	send := buffer.New(protocol.MAX_MSGLEN)

	if err := send.WriteUint32(protocol.OOB_SEQUENCE, byteorder.LittleEndian); err != nil {
		return err
	}

	if err := send.Write(data); err != nil {
		return err
	}

	_, err := conn.WriteTo(send.Bytes(), addr)
	return err
}

// OutOfBandPrint sends a connectionless text message to addr.
func OutOfBandPrint(conn transport.Datagram, addr net.Addr, message string) error {
	return OutOfBand(conn, addr, []byte(message))
}

// IsOutOfBand reports whether packet is a connectionless datagram.
func IsOutOfBand(packet []byte) bool {
	if len(packet) < 4 {
		return false
	}

	return packet[0] == 0xff && packet[1] == 0xff && packet[2] == 0xff && packet[3] == 0xff
}

// OOBPayload returns the raw payload of a connectionless datagram.
func OOBPayload(packet []byte) []byte {
	return packet[4:]
}
