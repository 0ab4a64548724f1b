package objects

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/utils"
)

type FileMode string

const (
	ModeRegularFile FileMode = "100644" // Regular non-executable file
	ModeExecutable  FileMode = "100755" // Executable file
	ModeSymlink     FileMode = "120000" // Symbolic link
	ModeDirectory   FileMode = "040000" // Directory (tree)

	// ModeDirectoryShort is the five-character directory mode real git
	// writes inside tree payloads. Accepted on decode so cloned trees
	// round-trip byte-exact; locally built trees use ModeDirectory.
	ModeDirectoryShort FileMode = "40000"
)

func (m FileMode) IsValid() bool {
	switch m {
	case ModeRegularFile, ModeExecutable, ModeSymlink, ModeDirectory, ModeDirectoryShort:
		return true
	default:
		return false
	}
}

// TreeEntry represents a single entry in a tree object
type TreeEntry struct {
	mode FileMode
	name string
	hash string // hex hash of the referenced blob or subtree
}

func NewTreeEntry(mode FileMode, name string, hash string) (*TreeEntry, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid file mode: %s", mode)
	}
	return &TreeEntry{
		mode: mode,
		name: name,
		hash: hash,
	}, nil
}

func (e *TreeEntry) Mode() FileMode {
	return e.mode
}

func (e *TreeEntry) Name() string {
	return e.name
}

func (e *TreeEntry) Hash() string {
	return e.hash
}

func (treeEntry *TreeEntry) IsDirectory() bool {
	return treeEntry.mode == ModeDirectory || treeEntry.mode == ModeDirectoryShort
}

func (treeEntry *TreeEntry) IsExecutable() bool {
	return treeEntry.mode == ModeExecutable
}

// Type reports the object kind the entry points at.
func (treeEntry *TreeEntry) Type() utils.ObjectType {
	if treeEntry.IsDirectory() {
		return utils.TreeObjectType
	}
	return utils.BlobObjectType
}

// Tree represents a GitGo tree object (directory)
type Tree struct {
	entries []TreeEntry
	hash    string
}

// NewTree creates a tree object from the list of Tree Entries
func NewTree(treeEntries []TreeEntry) (*Tree, error) {
	// GitGo requires entries to be sorted by name in ascending order
	entries := make([]TreeEntry, len(treeEntries))
	copy(entries, treeEntries)

	slices.SortStableFunc(entries, compareTreeEntries)

	treeContent := buildTreeContent(entries)
	hash, err := utils.ComputeHash(treeContent, utils.TreeObjectType)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash for tree: %v", err)
	}

	return &Tree{
		entries: entries,
		hash:    hash,
	}, nil
}

// ParseTree decodes a tree payload into its entries.
// The payload is a sequence of "<mode> <name>\0" headers each followed by a
// raw 20-byte hash; a sequence that runs out mid-entry is ErrMalformedObject.
func ParseTree(content []byte) (*Tree, error) {
	var entries []TreeEntry
	rest := content

	for len(rest) > 0 {
		spaceIndex := bytes.IndexByte(rest, ' ')
		if spaceIndex == -1 {
			return nil, fmt.Errorf("%w: tree entry has no mode terminator", ErrMalformedObject)
		}
		mode := FileMode(rest[:spaceIndex])
		rest = rest[spaceIndex+1:]

		nullIndex := bytes.IndexByte(rest, constants.NullByte)
		if nullIndex == -1 {
			return nil, fmt.Errorf("%w: tree entry has no name terminator", ErrMalformedObject)
		}
		name := string(rest[:nullIndex])
		rest = rest[nullIndex+1:]

		if len(rest) < constants.HashByteLength {
			return nil, fmt.Errorf("%w: tree entry %q truncated before hash", ErrMalformedObject, name)
		}
		hash := hex.EncodeToString(rest[:constants.HashByteLength])
		rest = rest[constants.HashByteLength:]

		entry, err := NewTreeEntry(mode, name, hash)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedObject, err)
		}
		entries = append(entries, *entry)
	}

	return NewTree(entries)
}

// compareTreeEntries implements the tree entry sorting rules:
// - Entries are sorted by name using raw byte comparison
// - Directory names are treated as if they have a trailing "/" for comparison
// - This ensures correct ordering when directories and files have similar names
func compareTreeEntries(a, b TreeEntry) int {
	nameA := getSortableName(a)
	nameB := getSortableName(b)
	return strings.Compare(nameA, nameB)
}

// getSortableName returns the name used for sorting.
// For directories, appends "/" to follow the canonical sorting convention.
func getSortableName(entry TreeEntry) string {
	if entry.IsDirectory() {
		return entry.Name() + "/"
	}
	return entry.Name()
}

// buildTreeContent creates the raw tree content in GitGo format
// <mode> <name>\0<20-byte binary SHA> , ex:
// 100644 README.md\0[binary SHA for README blob]
// 100644 main.go\0[binary SHA for main.go blob]
// 040000 src\0[binary SHA for src/ tree]
func buildTreeContent(entries []TreeEntry) []byte {
	var buf bytes.Buffer

	for _, entry := range entries {
		buf.WriteString(string(entry.Mode()))
		buf.WriteByte(' ')
		buf.WriteString(entry.Name())
		buf.WriteByte(0)

		// Convert hex hash to binary hash
		hashBytes, _ := hex.DecodeString(entry.Hash())
		buf.Write(hashBytes)
	}

	return buf.Bytes()
}

// Hash returns the SHA-1 hash of the tree
func (t *Tree) Hash() string {
	return t.hash
}

// Entries returns all tree entries
func (t *Tree) Entries() []TreeEntry {
	return t.entries
}

// Size returns the size of the tree content
func (t *Tree) Size() int {
	return len(buildTreeContent(t.entries))
}

// Content returns the raw tree content
func (t *Tree) Content() []byte {
	return buildTreeContent(t.entries)
}

func (t *Tree) Data() []byte {
	return EncodeObject(utils.TreeObjectType, t.Content())
}

// String returns a human-readable representation
func (t *Tree) String() string {
	return fmt.Sprintf("Tree{hash: %s, entries: %d}", t.hash, len(t.entries))
}

// FindEntry finds an entry by name
func (t *Tree) FindEntry(name string) (*TreeEntry, bool) {
	for _, entry := range t.entries {
		if entry.Name() == name {
			return &entry, true
		}
	}
	return nil, false
}
