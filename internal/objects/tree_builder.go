package objects

import (
	"fmt"
	"strings"

	"github.com/KostasZigo/gitgo/utils"
)

// WorkEntry is one file of a working tree, supplied by the caller that
// walked the filesystem. Path is slash-separated and relative to the
// working tree root; directories are implied by the paths.
type WorkEntry struct {
	Path    string
	Mode    FileMode
	Content []byte
}

// BuildTree converts a working tree listing into a stored tree object graph.
// Blobs and subtrees are persisted bottom-up; the returned hash addresses
// the top-level tree. The entry order does not matter - trees canonicalize
// their entries by name - so any input permutation yields the same hash.
//
// An empty listing is ErrEmptyTree: there is nothing to snapshot, and the
// caller should hear about it rather than receive the hash of a contentless
// tree object.
func BuildTree(store *ObjectStore, workEntries []WorkEntry) (string, error) {
	if len(workEntries) == 0 {
		return "", fmt.Errorf("%w: working tree has no entries", ErrEmptyTree)
	}
	return buildTreeLevel(store, workEntries)
}

// buildTreeLevel persists one directory level and returns its tree hash.
// Entries whose path contains a separator are grouped by their first
// segment and recursed into; the rest become blob entries of this level.
func buildTreeLevel(store *ObjectStore, workEntries []WorkEntry) (string, error) {
	var treeEntries []TreeEntry

	groups := make(map[string][]WorkEntry)
	var groupOrder []string

	for _, workEntry := range workEntries {
		segment, rest, nested := strings.Cut(workEntry.Path, "/")

		if nested {
			if _, seen := groups[segment]; !seen {
				groupOrder = append(groupOrder, segment)
			}
			groups[segment] = append(groups[segment], WorkEntry{
				Path:    rest,
				Mode:    workEntry.Mode,
				Content: workEntry.Content,
			})
			continue
		}

		blobHash, err := store.Put(utils.BlobObjectType, workEntry.Content)
		if err != nil {
			return "", fmt.Errorf("failed to store blob for %s: %w", workEntry.Path, err)
		}

		entry, err := NewTreeEntry(workEntry.Mode, segment, blobHash)
		if err != nil {
			return "", fmt.Errorf("invalid entry for %s: %w", workEntry.Path, err)
		}
		treeEntries = append(treeEntries, *entry)
	}

	for _, dir := range groupOrder {
		childHash, err := buildTreeLevel(store, groups[dir])
		if err != nil {
			return "", err
		}

		entry, err := NewTreeEntry(ModeDirectory, dir, childHash)
		if err != nil {
			return "", fmt.Errorf("invalid entry for directory %s: %w", dir, err)
		}
		treeEntries = append(treeEntries, *entry)
	}

	tree, err := NewTree(treeEntries)
	if err != nil {
		return "", err
	}

	if _, err := store.Put(utils.TreeObjectType, tree.Content()); err != nil {
		return "", fmt.Errorf("failed to store tree: %w", err)
	}

	return tree.Hash(), nil
}
