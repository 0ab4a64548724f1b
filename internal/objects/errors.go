package objects

import "errors"

// Sentinel errors for the object layer. Callers match them with errors.Is;
// every site that returns one wraps it with the failing hash or path.
var (
	// ErrMalformedObject reports an object encoding that does not parse:
	// bad header, truncated tree entry, commit without a tree line.
	ErrMalformedObject = errors.New("malformed object")

	// ErrObjectNotFound reports a lookup for an address the store does not hold.
	ErrObjectNotFound = errors.New("object not found")

	// ErrIntegrity reports a stored object whose content no longer matches
	// the address it is filed under. Detected lazily on read.
	ErrIntegrity = errors.New("object integrity violation")

	// ErrEmptyTree reports a tree build request with no entries at all.
	ErrEmptyTree = errors.New("empty tree")

	// ErrDanglingTree reports a commit referencing a tree absent from the store.
	ErrDanglingTree = errors.New("commit references missing tree")

	// ErrDanglingParent reports a commit referencing a parent absent from the store.
	ErrDanglingParent = errors.New("commit references missing parent")
)
