package remote

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"github.com/klauspost/compress/zlib"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/internal/objects"
	"github.com/KostasZigo/gitgo/utils"
)

// Pack entry type tags from the pack format: bits 4-6 of the first header
// byte. Types 1-4 carry a full object, 6 and 7 are deltas against a base.
const (
	packTypeCommit   = 1
	packTypeTree     = 2
	packTypeBlob     = 3
	packTypeTag      = 4
	packTypeOfsDelta = 6
	packTypeRefDelta = 7
)

var packBaseTypes = map[byte]utils.ObjectType{
	packTypeCommit: utils.CommitObjectType,
	packTypeTree:   utils.TreeObjectType,
	packTypeBlob:   utils.BlobObjectType,
	packTypeTag:    utils.TagObjectType,
}

// packEntry records what a decoded entry resolved to, keyed by the byte
// offset of the entry's header so later ofs-deltas can locate their base.
type packEntry struct {
	objectType utils.ObjectType
	hash       string
}

// DecodePack parses a fully received packfile and persists every object it
// carries into the store. Delta entries are resolved against bases decoded
// earlier in the same pack (by offset or by hash) or already present in the
// store; arbitrary delta chain depth falls out of that lookup, since each
// resolved entry is recorded before its dependents decode. Returns the
// number of entries the pack declared.
//
// Decode is strictly sequential in pack order, which is always correct:
// the format guarantees a base precedes its offset-deltas.
func DecodePack(store *objects.ObjectStore, pack []byte) (int, error) {
	if len(pack) < constants.PackHeaderLength+constants.HashByteLength {
		return 0, fmt.Errorf("%w: %d bytes is too short for header and trailer", ErrMalformedPack, len(pack))
	}

	if string(pack[:len(constants.PackMagic)]) != constants.PackMagic {
		return 0, fmt.Errorf("%w: bad magic %q", ErrMalformedPack, pack[:len(constants.PackMagic)])
	}
	if version := binary.BigEndian.Uint32(pack[4:8]); version != constants.PackVersion {
		return 0, fmt.Errorf("%w: unsupported version %d", ErrMalformedPack, version)
	}
	entryCount := int(binary.BigEndian.Uint32(pack[8:12]))

	trailerStart := len(pack) - constants.HashByteLength
	body := pack[constants.PackHeaderLength:trailerStart]
	reader := bytes.NewReader(body)

	// Absolute offset of the next unread byte, measured from pack start
	// the way ofs-delta references measure it.
	position := func() int64 {
		return int64(constants.PackHeaderLength) + int64(len(body)) - int64(reader.Len())
	}

	entriesByOffset := make(map[int64]packEntry, entryCount)

	for i := 0; i < entryCount; i++ {
		entryOffset := position()

		typeTag, declaredSize, err := readEntryHeader(reader)
		if err != nil {
			return 0, fmt.Errorf("%w: entry %d at offset %d: %v", ErrMalformedPack, i, entryOffset, err)
		}

		var entry packEntry

		switch typeTag {
		case packTypeCommit, packTypeTree, packTypeBlob, packTypeTag:
			entry, err = decodeFullEntry(store, reader, packBaseTypes[typeTag], declaredSize)
		case packTypeOfsDelta:
			entry, err = decodeOfsDeltaEntry(store, reader, entriesByOffset, entryOffset, declaredSize)
		case packTypeRefDelta:
			entry, err = decodeRefDeltaEntry(store, reader, declaredSize)
		default:
			err = fmt.Errorf("%w: unknown entry type %d", ErrMalformedPack, typeTag)
		}
		if err != nil {
			return 0, fmt.Errorf("entry %d at offset %d: %w", i, entryOffset, err)
		}

		entriesByOffset[entryOffset] = entry
	}

	if reader.Len() != 0 {
		return 0, fmt.Errorf("%w: %d bytes left after %d entries", ErrMalformedPack, reader.Len(), entryCount)
	}

	expectedDigest := pack[trailerStart:]
	actualDigest := utils.Digest(pack[:trailerStart])
	if !bytes.Equal(expectedDigest, actualDigest) {
		return 0, fmt.Errorf("%w: trailer %x, stream hashes to %x", ErrPackCorrupt, expectedDigest, actualDigest)
	}

	slog.Debug("Decoded packfile",
		"entries", entryCount,
		"bytes", len(pack))

	return entryCount, nil
}

// decodeFullEntry inflates a non-delta entry and persists it.
func decodeFullEntry(store *objects.ObjectStore, reader *bytes.Reader, objectType utils.ObjectType, declaredSize int64) (packEntry, error) {
	content, err := inflateSegment(reader)
	if err != nil {
		return packEntry{}, fmt.Errorf("%w: %v", ErrMalformedPack, err)
	}
	if int64(len(content)) != declaredSize {
		return packEntry{}, fmt.Errorf("%w: header declares %d bytes, inflated to %d", ErrMalformedPack, declaredSize, len(content))
	}

	hash, err := store.Put(objectType, content)
	if err != nil {
		return packEntry{}, err
	}

	return packEntry{objectType: objectType, hash: hash}, nil
}

// decodeOfsDeltaEntry resolves a delta whose base is referenced by a
// negative byte offset to an earlier entry in this pack.
func decodeOfsDeltaEntry(store *objects.ObjectStore, reader *bytes.Reader, entriesByOffset map[int64]packEntry, entryOffset, declaredSize int64) (packEntry, error) {
	negativeOffset, err := readNegativeOffset(reader)
	if err != nil {
		return packEntry{}, fmt.Errorf("%w: %v", ErrMalformedPack, err)
	}

	baseOffset := entryOffset - negativeOffset
	if baseOffset < int64(constants.PackHeaderLength) {
		return packEntry{}, fmt.Errorf("%w: base offset %d points before first entry", ErrMalformedPack, baseOffset)
	}

	base, resolved := entriesByOffset[baseOffset]
	if !resolved {
		return packEntry{}, fmt.Errorf("%w: no entry decoded at offset %d", ErrUnresolvedBaseDelta, baseOffset)
	}

	return applyDeltaEntry(store, reader, base, declaredSize)
}

// decodeRefDeltaEntry resolves a delta whose base is referenced by its
// 20-byte hash. The base may come from earlier in this pack (already
// persisted) or from a previous fetch.
func decodeRefDeltaEntry(store *objects.ObjectStore, reader *bytes.Reader, declaredSize int64) (packEntry, error) {
	var baseDigest [constants.HashByteLength]byte
	if _, err := io.ReadFull(reader, baseDigest[:]); err != nil {
		return packEntry{}, fmt.Errorf("%w: truncated ref-delta base hash", ErrMalformedPack)
	}
	baseHash := hex.EncodeToString(baseDigest[:])

	if !store.Exists(baseHash) {
		return packEntry{}, fmt.Errorf("%w: base %s not in store", ErrUnresolvedBaseDelta, baseHash)
	}

	baseType, _, err := store.Read(baseHash)
	if err != nil {
		return packEntry{}, err
	}

	return applyDeltaEntry(store, reader, packEntry{objectType: baseType, hash: baseHash}, declaredSize)
}

// applyDeltaEntry inflates the delta instruction stream, reconstructs the
// payload against the base object and persists the result. The resolved
// object inherits the base's kind.
func applyDeltaEntry(store *objects.ObjectStore, reader *bytes.Reader, base packEntry, declaredSize int64) (packEntry, error) {
	delta, err := inflateSegment(reader)
	if err != nil {
		return packEntry{}, fmt.Errorf("%w: %v", ErrMalformedPack, err)
	}
	if int64(len(delta)) != declaredSize {
		return packEntry{}, fmt.Errorf("%w: header declares %d delta bytes, inflated to %d", ErrMalformedPack, declaredSize, len(delta))
	}

	_, basePayload, err := store.Read(base.hash)
	if err != nil {
		return packEntry{}, err
	}

	rebuilt, err := applyDelta(basePayload, delta)
	if err != nil {
		return packEntry{}, err
	}

	hash, err := store.Put(base.objectType, rebuilt)
	if err != nil {
		return packEntry{}, err
	}

	return packEntry{objectType: base.objectType, hash: hash}, nil
}

// readEntryHeader parses the variable-length size-and-type header opening
// every pack entry. The first byte carries the type in bits 4-6 and seeds
// the size with its low 4 bits; continuation bytes contribute 7 bits each,
// little-endian across bytes.
func readEntryHeader(reader *bytes.Reader) (typeTag byte, size int64, err error) {
	first, err := reader.ReadByte()
	if err != nil {
		return 0, 0, fmt.Errorf("truncated entry header")
	}

	typeTag = (first >> 4) & 0x7
	size = int64(first & 0x0F)

	shift := uint(4)
	for continuation := first&0x80 != 0; continuation; shift += 7 {
		next, err := reader.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("truncated entry size")
		}
		size |= int64(next&0x7F) << shift
		continuation = next&0x80 != 0
	}

	return typeTag, size, nil
}

// readNegativeOffset parses the backward distance of an ofs-delta entry.
// Big-endian 7-bit groups; each continuation adds one to the accumulated
// value before shifting, so multi-byte encodings have no redundant forms.
func readNegativeOffset(reader *bytes.Reader) (int64, error) {
	first, err := reader.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("truncated ofs-delta offset")
	}

	offset := int64(first & 0x7F)
	for continuation := first&0x80 != 0; continuation; {
		next, err := reader.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("truncated ofs-delta offset")
		}
		offset = ((offset + 1) << 7) | int64(next&0x7F)
		continuation = next&0x80 != 0
	}

	return offset, nil
}

// inflateSegment decompresses exactly one zlib stream starting at the
// reader's position and leaves the reader at the first byte after it.
// bytes.Reader implements io.ByteReader, so the decompressor consumes no
// bytes beyond the stream's end marker and checksum.
func inflateSegment(reader *bytes.Reader) ([]byte, error) {
	zlibReader, err := zlib.NewReader(reader)
	if err != nil {
		return nil, fmt.Errorf("compressed segment does not open: %v", err)
	}
	defer zlibReader.Close()

	content, err := io.ReadAll(zlibReader)
	if err != nil {
		return nil, fmt.Errorf("compressed segment does not inflate: %v", err)
	}

	return content, nil
}

// applyDelta reconstructs a payload from a base payload and a delta
// instruction stream: two varint sizes (expected base length, target
// length) followed by copy and insert opcodes. Any reference outside the
// base or a result of the wrong length is ErrMalformedPack.
func applyDelta(base, delta []byte) ([]byte, error) {
	baseSize, rest, err := readDeltaSize(delta)
	if err != nil {
		return nil, err
	}
	if baseSize != int64(len(base)) {
		return nil, fmt.Errorf("%w: delta expects base of %d bytes, have %d", ErrMalformedPack, baseSize, len(base))
	}

	targetSize, rest, err := readDeltaSize(rest)
	if err != nil {
		return nil, err
	}

	var target bytes.Buffer
	target.Grow(int(targetSize))

	for len(rest) > 0 {
		opcode := rest[0]
		rest = rest[1:]

		if opcode&0x80 != 0 {
			// Copy: low nibble selects offset bytes, next three bits
			// select length bytes, both little-endian.
			var offset, length int64
			for bit := 0; bit < 4; bit++ {
				if opcode&(1<<bit) != 0 {
					if len(rest) == 0 {
						return nil, fmt.Errorf("%w: truncated copy opcode", ErrMalformedPack)
					}
					offset |= int64(rest[0]) << (8 * bit)
					rest = rest[1:]
				}
			}
			for bit := 0; bit < 3; bit++ {
				if opcode&(1<<(4+bit)) != 0 {
					if len(rest) == 0 {
						return nil, fmt.Errorf("%w: truncated copy opcode", ErrMalformedPack)
					}
					length |= int64(rest[0]) << (8 * bit)
					rest = rest[1:]
				}
			}
			if length == 0 {
				length = 0x10000
			}

			if offset < 0 || length < 0 || offset+length > int64(len(base)) {
				return nil, fmt.Errorf("%w: copy of %d bytes at %d exceeds base of %d", ErrMalformedPack, length, offset, len(base))
			}
			target.Write(base[offset : offset+length])
			continue
		}

		// Insert: opcode is the literal length; zero is reserved.
		if opcode == 0 {
			return nil, fmt.Errorf("%w: reserved zero opcode in delta", ErrMalformedPack)
		}
		length := int(opcode)
		if length > len(rest) {
			return nil, fmt.Errorf("%w: insert of %d bytes, %d remain in delta", ErrMalformedPack, length, len(rest))
		}
		target.Write(rest[:length])
		rest = rest[length:]
	}

	if int64(target.Len()) != targetSize {
		return nil, fmt.Errorf("%w: delta declares target of %d bytes, produced %d", ErrMalformedPack, targetSize, target.Len())
	}

	return target.Bytes(), nil
}

// readDeltaSize parses the little-endian 7-bit varint used for the two
// sizes at the head of a delta stream.
func readDeltaSize(data []byte) (int64, []byte, error) {
	var size int64
	var shift uint

	for i := 0; ; i++ {
		if i >= len(data) {
			return 0, nil, fmt.Errorf("%w: truncated delta size", ErrMalformedPack)
		}
		size |= int64(data[i]&0x7F) << shift
		shift += 7
		if data[i]&0x80 == 0 {
			return size, data[i+1:], nil
		}
	}
}
