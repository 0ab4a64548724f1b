package repository

import (
	"fmt"
	"log/slog"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/internal/objects"
	"github.com/KostasZigo/gitgo/internal/remote"
	"github.com/KostasZigo/gitgo/utils"
)

// Clone materializes a full copy of the remote repository at directory:
// discover refs, fetch one packfile covering them, decode every object into
// a fresh local store, then check out the tree of the commit the remote
// advertises as HEAD.
//
// Any failure aborts the clone where it stands. Already written objects are
// not rolled back: each one is individually content-verified on read and
// Put is idempotent, so a retried clone simply re-validates what is there
// and fetches again.
func Clone(client *remote.Client, remoteURL, directory string) error {
	if err := InitRepository(directory); err != nil {
		return err
	}

	refs, err := client.DiscoverRefs(remoteURL)
	if err != nil {
		return err
	}

	for refName, hash := range refs.ByName {
		if err := WriteRef(directory, refName, hash); err != nil {
			return err
		}
	}

	wants := make([]string, 0, len(refs.ByName)+1)
	seen := make(map[string]bool)
	if refs.Head != "" {
		wants = append(wants, refs.Head)
		seen[refs.Head] = true
	}
	for _, hash := range refs.ByName {
		if !seen[hash] {
			wants = append(wants, hash)
			seen[hash] = true
		}
	}

	pack, err := client.FetchPack(remoteURL, wants)
	if err != nil {
		return err
	}

	store := objects.NewObjectStore(directory)
	decoded, err := remote.DecodePack(store, pack)
	if err != nil {
		return err
	}

	slog.Debug("Stored remote objects",
		"directory", directory,
		"objects", decoded)

	headHash := refs.Head
	if headHash == "" {
		// Remote without a HEAD advertisement: fall back to the default branch
		headHash = refs.ByName[constants.Refs+"/"+constants.Heads+"/"+constants.DefaultBranch]
	}
	if headHash == "" {
		return fmt.Errorf("%w: remote advertises no checkout target", remote.ErrProtocolError)
	}

	return checkoutCommit(store, headHash, directory)
}

// checkoutCommit resolves a commit hash to its tree and materializes it.
func checkoutCommit(store *objects.ObjectStore, commitHash, directory string) error {
	objectType, content, err := store.Read(commitHash)
	if err != nil {
		return err
	}
	if objectType != utils.CommitObjectType {
		return fmt.Errorf("cannot checkout %s: object is a %s, not a commit", commitHash, objectType)
	}

	commit, err := objects.ParseCommit(content)
	if err != nil {
		return fmt.Errorf("commit %s: %w", commitHash, err)
	}

	return Materialize(store, commit.TreeHash(), directory)
}
