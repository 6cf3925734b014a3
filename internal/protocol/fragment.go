package protocol

// FragmentAssembler reassembles a logical message that was split across several
// physical packets. Fragments must arrive strictly in order: each one's offset
// has to match the number of bytes accumulated so far, and a fragment shorter
// than MAX_FRAGMENT_SIZE terminates the message. Any violation discards the
// in-progress message and the assembler returns to idle.
type FragmentAssembler struct {
	inProgress bool
	sequence   uint32
	offset     int
	buf        []byte
}

func CreateFragmentAssembler() *FragmentAssembler {
	return &FragmentAssembler{}
}

// Receive feeds one fragment belonging to the packet sequence seq into the
// assembler. It returns the complete reassembled message once the terminal
// fragment arrives, or (nil, false) while more fragments are expected or when
// the fragment was invalid and the partial message was discarded.
func (a *FragmentAssembler) Receive(seq uint32, offset int, payload []byte) ([]byte, bool) {
	if len(payload) == 0 || len(payload) > MAX_FRAGMENT_SIZE {
		a.Reset()
		return nil, false
	}

	if !a.inProgress || a.sequence != seq {
		a.Reset()
		a.inProgress = true
		a.sequence = seq
	}

	if offset != a.offset {
		a.Reset()
		return nil, false
	}

	if len(a.buf)+len(payload) > MAX_MSGLEN_EXTENDED {
		a.Reset()
		return nil, false
	}

	a.buf = append(a.buf, payload...)
	a.offset += len(payload)

	if len(payload) < MAX_FRAGMENT_SIZE {
		complete := a.buf
		a.buf = nil
		a.Reset()
		return complete, true
	}

	return nil, false
}

// Returns whether a partially reassembled message is currently accumulating.
func (a *FragmentAssembler) InProgress() bool {
	return a.inProgress
}

// Reset discards any partially reassembled message and returns the assembler
// to idle.
func (a *FragmentAssembler) Reset() {
	a.inProgress = false
	a.sequence = 0
	a.offset = 0
	a.buf = nil
}
