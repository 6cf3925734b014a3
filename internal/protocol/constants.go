package protocol

// This is the original protocol version. It uses a 2-byte qport and supports
// no datagram fragmentation.
const PROTOCOL_LEGACY int32 = 34

// This is the first extended protocol version. It shrinks the qport field to
// a single byte for bandwidth savings.
const PROTOCOL_EXTENDED_QPORT int32 = 35

// This is the fully extended protocol version. In addition to the 1-byte qport
// it reserves bit 30 of the first header word for datagram fragmentation.
const PROTOCOL_EXTENDED int32 = 36

// This flag is set on the first header word of a packet that carries the
// channel's in-flight reliable payload.
const RELIABLE_BIT uint32 = 1 << 31

// This flag is set on the first header word of a fragmented packet. Only
// meaningful on the extended protocol.
const FRAGMENT_BIT uint32 = 1 << 30

// This mask strips the reliable and fragmentation bits off a header word,
// leaving the raw sequence number.
const SEQUENCE_MASK uint32 = ^(RELIABLE_BIT | FRAGMENT_BIT)

// This is the sequence value of an out-of-band packet. Out-of-band packets
// bypass sequencing entirely and carry raw connectionless payload.
const OOB_SEQUENCE uint32 = 0xffffffff

// This is the maximum size of a single fragment's payload. A fragment whose
// payload is strictly shorter than this marks the end of the message.
const MAX_FRAGMENT_SIZE int = 1280

// This is the maximum length of a datagram on the legacy protocol.
const MAX_MSGLEN int = 1400

// This is the maximum length of a reassembled message on the extended protocol.
const MAX_MSGLEN_EXTENDED int = 4096

// This is the size of the packet header:
// Sequence Word (uint32)
// Acknowledgment Word (uint32)
// QPort (uint16, legacy client packets)
const PACKET_HEADER_SIZE int = 4 + 4 + 2

// This is the size of the fragment header that follows the two header words:
// Fragment Offset (uint16)
// Fragment Length (uint16)
const FRAGMENT_HEADER_SIZE int = 2 + 2

// This is the maximum number of duplicate copies of a datagram that may be
// sent alongside the original to resist bursty loss.
const MAX_DUPLICATES int = 2
