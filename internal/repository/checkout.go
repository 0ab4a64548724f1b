package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/internal/objects"
	"github.com/KostasZigo/gitgo/utils"
)

// Materialize writes the tree at treeHash into destinationDir: blob entries
// become files, tree entries become subdirectories, recursively. Every
// referenced object must be present in the store; a missing one surfaces as
// the store's ErrObjectNotFound, which during a clone signals a corrupt
// transfer rather than anything recoverable here.
func Materialize(store *objects.ObjectStore, treeHash, destinationDir string) error {
	objectType, content, err := store.Read(treeHash)
	if err != nil {
		return err
	}
	if objectType != utils.TreeObjectType {
		return fmt.Errorf("cannot materialize %s: object is a %s, not a tree", treeHash, objectType)
	}

	tree, err := objects.ParseTree(content)
	if err != nil {
		return fmt.Errorf("tree %s: %w", treeHash, err)
	}

	if err := os.MkdirAll(destinationDir, constants.DirPerms); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", destinationDir, err)
	}

	for _, entry := range tree.Entries() {
		entryPath := filepath.Join(destinationDir, entry.Name())

		if entry.IsDirectory() {
			if err := Materialize(store, entry.Hash(), entryPath); err != nil {
				return err
			}
			continue
		}

		entryType, blobContent, err := store.Read(entry.Hash())
		if err != nil {
			return err
		}
		if entryType != utils.BlobObjectType {
			return fmt.Errorf("entry %s references %s which is a %s, not a blob", entry.Name(), entry.Hash(), entryType)
		}

		perms := constants.FilePerms
		if entry.IsExecutable() {
			perms = constants.ExecPerms
		}

		if err := os.WriteFile(entryPath, blobContent, perms); err != nil {
			return fmt.Errorf("failed to write %s: %w", entryPath, err)
		}
	}

	return nil
}
