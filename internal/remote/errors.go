package remote

import "errors"

// Sentinel errors for ref discovery, pack fetch and pack decode.
var (
	// ErrRemoteUnreachable reports a transport-level failure talking to the
	// remote endpoint.
	ErrRemoteUnreachable = errors.New("remote unreachable")

	// ErrProtocolError reports a remote response that does not parse as the
	// expected pkt-line exchange.
	ErrProtocolError = errors.New("protocol error")

	// ErrEmptyRepository reports a remote that advertises no refs at all.
	ErrEmptyRepository = errors.New("remote repository is empty")

	// ErrMalformedPack reports a packfile whose structure does not parse:
	// bad magic, truncated entries, size mismatches, bad delta opcodes.
	ErrMalformedPack = errors.New("malformed packfile")

	// ErrUnresolvedBaseDelta reports a delta entry whose base object is
	// neither earlier in the pack nor already in the store. Packs order
	// bases before dependents, so this is a fatal ordering violation.
	ErrUnresolvedBaseDelta = errors.New("delta base not resolved")

	// ErrPackCorrupt reports a trailing checksum mismatch over the whole
	// pack stream.
	ErrPackCorrupt = errors.New("packfile checksum mismatch")
)
