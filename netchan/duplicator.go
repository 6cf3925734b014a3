package netchan

import (
	"net"
	"time"

	"github.com/gamevidea/netcode/internal/protocol"
	"github.com/gamevidea/netcode/transport"
)

// This is the pause between duplicate sends. Spacing the copies slightly apart
// in time is what makes duplication effective against bursty loss; the total
// stall is bounded to a few hundred microseconds.
const duplicateDelay = 50 * time.Microsecond

// PacketDuplicator sends redundant copies of an outbound datagram. The copies
// are byte-identical and reuse the original's sequence number, so the
// receiver's stale-sequence check de-duplicates them for free.
type PacketDuplicator struct {
	delay time.Duration
}

func CreatePacketDuplicator() *PacketDuplicator {
	return &PacketDuplicator{delay: duplicateDelay}
}

// Send writes the datagram to conn, followed by dupCount verbatim copies with
// a short pause between each. dupCount is clamped to [0, MAX_DUPLICATES].
func (d *PacketDuplicator) Send(conn transport.Datagram, addr net.Addr, packet []byte, dupCount int) error {
	if dupCount < 0 {
		dupCount = 0
	}
	if dupCount > protocol.MAX_DUPLICATES {
		dupCount = protocol.MAX_DUPLICATES
	}

	if _, err := conn.WriteTo(packet, addr); err != nil {
		return err
	}

	for i := 0; i < dupCount; i++ {
		time.Sleep(d.delay)

		if _, err := conn.WriteTo(packet, addr); err != nil {
			return err
		}
	}

	return nil
}
