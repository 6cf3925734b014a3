package netchan

import "errors"

// This error is returned when a reliable message would overflow the staging
// buffer and the channel was not configured with overflow tolerance. It is
// the only fatal local condition; everything else is recovered by discarding
// the offending packet.
var ROF_ERROR = errors.New("reliable message overflows the outgoing buffer")

// This error is returned when an out-of-band payload exceeds the maximum
// datagram size.
var OTL_ERROR = errors.New("out-of-band payload exceeds the maximum datagram size")
