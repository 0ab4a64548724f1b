package remote

import (
	"fmt"
	"strconv"
)

// pkt-line framing used by the smart transfer protocol: every line opens
// with four hex digits giving the total line length including the prefix
// itself. Two lengths are reserved as control packets.
const (
	pktPrefixLength = 4

	flushPktLength = 0 // "0000" - section/stream terminator
	delimPktLength = 1 // "0001" - section delimiter (protocol v2)
)

type pktKind int

const (
	pktData pktKind = iota
	pktFlush
	pktDelim
	pktEnd
)

// pktReader walks a buffered pkt-line stream.
type pktReader struct {
	rest []byte
}

func newPktReader(data []byte) *pktReader {
	return &pktReader{rest: data}
}

// next returns the payload of the next pkt-line. Control packets carry a
// nil payload and report their kind; running off the end of the buffer
// mid-line is ErrProtocolError.
func (r *pktReader) next() ([]byte, pktKind, error) {
	if len(r.rest) == 0 {
		return nil, pktEnd, nil
	}

	if len(r.rest) < pktPrefixLength {
		return nil, 0, fmt.Errorf("%w: %d trailing bytes after last pkt-line", ErrProtocolError, len(r.rest))
	}

	length, err := strconv.ParseUint(string(r.rest[:pktPrefixLength]), 16, 16)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: pkt-line prefix %q is not hex", ErrProtocolError, r.rest[:pktPrefixLength])
	}

	switch length {
	case flushPktLength:
		r.rest = r.rest[pktPrefixLength:]
		return nil, pktFlush, nil
	case delimPktLength:
		r.rest = r.rest[pktPrefixLength:]
		return nil, pktDelim, nil
	}

	if length < pktPrefixLength || int(length) > len(r.rest) {
		return nil, 0, fmt.Errorf("%w: pkt-line declares %d bytes, %d remain", ErrProtocolError, length, len(r.rest))
	}

	payload := r.rest[pktPrefixLength:length]
	r.rest = r.rest[length:]
	return payload, pktData, nil
}

// formatPktLine frames one payload line, length prefix included.
func formatPktLine(payload string) string {
	return fmt.Sprintf("%04x%s", len(payload)+pktPrefixLength, payload)
}
