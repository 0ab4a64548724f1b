package testutils

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/utils"
)

// Pack entry type tags, mirroring the pack wire format.
const (
	PackTypeCommit   byte = 1
	PackTypeTree     byte = 2
	PackTypeBlob     byte = 3
	PackTypeOfsDelta byte = 6
	PackTypeRefDelta byte = 7
)

// PackBuilder assembles synthetic packfiles for decoder tests: a valid
// header, deflated entries in append order and the trailing SHA-1 checksum.
type PackBuilder struct {
	entries bytes.Buffer
	count   uint32
}

func NewPackBuilder() *PackBuilder {
	return &PackBuilder{}
}

// AppendObject adds a full (non-delta) entry and returns its byte offset
// from the start of the finished pack.
func (b *PackBuilder) AppendObject(t *testing.T, typeTag byte, content []byte) int64 {
	t.Helper()
	return b.appendEntry(t, typeTag, nil, content)
}

// AppendRefDelta adds a delta entry referencing its base by hex hash.
func (b *PackBuilder) AppendRefDelta(t *testing.T, baseHash string, delta []byte) int64 {
	t.Helper()

	rawHash, err := hex.DecodeString(baseHash)
	if err != nil {
		t.Fatalf("Failed to decode base hash %q: %v", baseHash, err)
	}
	return b.appendEntry(t, PackTypeRefDelta, rawHash, delta)
}

// AppendOfsDelta adds a delta entry referencing its base by the absolute
// offset AppendObject returned for it.
func (b *PackBuilder) AppendOfsDelta(t *testing.T, baseOffset int64, delta []byte) int64 {
	t.Helper()

	entryOffset := int64(constants.PackHeaderLength) + int64(b.entries.Len())
	return b.appendEntry(t, PackTypeOfsDelta, encodeOfsOffset(entryOffset-baseOffset), delta)
}

func (b *PackBuilder) appendEntry(t *testing.T, typeTag byte, reference, payload []byte) int64 {
	t.Helper()

	offset := int64(constants.PackHeaderLength) + int64(b.entries.Len())

	b.entries.Write(encodeEntryHeader(typeTag, len(payload)))
	b.entries.Write(reference)

	writer := zlib.NewWriter(&b.entries)
	if _, err := writer.Write(payload); err != nil {
		t.Fatalf("Failed to deflate pack entry: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close pack entry deflater: %v", err)
	}

	b.count++
	return offset
}

// Bytes finishes the pack: header, entries, trailing checksum.
func (b *PackBuilder) Bytes() []byte {
	var pack bytes.Buffer

	pack.WriteString(constants.PackMagic)
	binary.Write(&pack, binary.BigEndian, uint32(constants.PackVersion))
	binary.Write(&pack, binary.BigEndian, b.count)
	pack.Write(b.entries.Bytes())
	pack.Write(utils.Digest(pack.Bytes()))

	return pack.Bytes()
}

// encodeEntryHeader builds the variable-length size-and-type header: type
// in bits 4-6 of the first byte, size in 4 + 7n bits little-endian.
func encodeEntryHeader(typeTag byte, size int) []byte {
	current := (typeTag << 4) | byte(size&0x0F)
	size >>= 4

	var header []byte
	for size > 0 {
		header = append(header, current|0x80)
		current = byte(size & 0x7F)
		size >>= 7
	}
	return append(header, current)
}

// encodeOfsOffset builds the big-endian base-128 backward offset of an
// ofs-delta entry, with the +1 bias on continuation bytes.
func encodeOfsOffset(offset int64) []byte {
	encoded := []byte{byte(offset & 0x7F)}
	offset >>= 7
	for offset > 0 {
		offset--
		encoded = append([]byte{byte(offset&0x7F) | 0x80}, encoded...)
		offset >>= 7
	}
	return encoded
}

// DeltaSize encodes one of the two varint sizes heading a delta stream.
func DeltaSize(n int) []byte {
	var encoded []byte
	for n >= 0x80 {
		encoded = append(encoded, byte(n&0x7F)|0x80)
		n >>= 7
	}
	return append(encoded, byte(n))
}

// DeltaCopy encodes a copy opcode taking size bytes at offset in the base.
func DeltaCopy(offset, size int) []byte {
	opcode := byte(0x80)
	var operands []byte

	for bit := 0; bit < 4; bit++ {
		if operand := byte(offset >> (8 * bit)); operand != 0 {
			opcode |= 1 << bit
			operands = append(operands, operand)
		}
	}
	for bit := 0; bit < 3; bit++ {
		if operand := byte(size >> (8 * bit)); operand != 0 {
			opcode |= 1 << (4 + bit)
			operands = append(operands, operand)
		}
	}

	return append([]byte{opcode}, operands...)
}

// DeltaInsert encodes an insert opcode carrying the literal data.
func DeltaInsert(data []byte) []byte {
	return append([]byte{byte(len(data))}, data...)
}

// BuildDelta assembles a full delta stream from base size, target size and
// opcode sequences.
func BuildDelta(baseSize, targetSize int, opcodes ...[]byte) []byte {
	delta := append(DeltaSize(baseSize), DeltaSize(targetSize)...)
	for _, opcode := range opcodes {
		delta = append(delta, opcode...)
	}
	return delta
}
