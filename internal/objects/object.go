package objects

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/KostasZigo/gitgo/utils"
)

// Object represents any GitGo object that can be stored
// All GitGo objects (blobs, trees, commits) must implement this interface
type Object interface {
	// Hash returns the SHA-1 hash of the object
	Hash() string

	// Data returns the complete object data including header
	// Format: "<type> <size>\0<content>"
	Data() []byte
}

// EncodeObject prefixes content with the canonical "<type> <size>\0" header.
// The result is the byte sequence that is hashed, compressed and stored.
func EncodeObject(objectType utils.ObjectType, content []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", objectType, len(content))
	return append([]byte(header), content...)
}

// ParseObject splits a canonical encoding back into type and content.
// The header must read "<type> <digits>\0" with a known type and the digits
// must equal the content length; anything else is ErrMalformedObject.
func ParseObject(data []byte) (utils.ObjectType, []byte, error) {
	nullIndex := bytes.IndexByte(data, 0)
	if nullIndex == -1 {
		return "", nil, fmt.Errorf("%w: missing header terminator", ErrMalformedObject)
	}

	header := data[:nullIndex]
	content := data[nullIndex+1:]

	spaceIndex := bytes.IndexByte(header, ' ')
	if spaceIndex == -1 {
		return "", nil, fmt.Errorf("%w: header %q has no size field", ErrMalformedObject, header)
	}

	objectType := utils.ObjectType(header[:spaceIndex])
	if !objectType.IsValid() {
		return "", nil, fmt.Errorf("%w: unknown object type %q", ErrMalformedObject, header[:spaceIndex])
	}

	size, err := strconv.Atoi(string(header[spaceIndex+1:]))
	if err != nil {
		return "", nil, fmt.Errorf("%w: header size %q is not a number", ErrMalformedObject, header[spaceIndex+1:])
	}

	if size != len(content) {
		return "", nil, fmt.Errorf("%w: header declares %d bytes, content has %d", ErrMalformedObject, size, len(content))
	}

	return objectType, content, nil
}
