package objects

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/testutils"
	"github.com/KostasZigo/gitgo/utils"
)

func TestObjectStore_Put(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitgoDir(t)
	store := NewObjectStore(repoPath)

	hash, err := store.Put(utils.BlobObjectType, []byte("test content\n"))
	if err != nil {
		t.Fatalf("Failed to store blob: %v", err)
	}

	// Verify file was created at the fan-out path
	objectPath := filepath.Join(repoPath, constants.Gitgo, constants.Objects,
		hash[:constants.HashDirPrefixLength], hash[constants.HashDirPrefixLength:])
	testutils.AssertFileExists(t, objectPath)
}

// TestObjectStore_PutLeavesNoTempFiles verifies that the staged write leaves
// only the final object behind, so a crash can never be confused with a
// committed object.
func TestObjectStore_PutLeavesNoTempFiles(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitgoDir(t)
	store := NewObjectStore(repoPath)

	hash, err := store.Put(utils.BlobObjectType, []byte("staged write content\n"))
	if err != nil {
		t.Fatalf("Failed to store blob: %v", err)
	}

	fanOutDir := filepath.Join(repoPath, constants.Gitgo, constants.Objects,
		hash[:constants.HashDirPrefixLength])
	entries, err := os.ReadDir(fanOutDir)
	if err != nil {
		t.Fatalf("Failed to read object directory: %v", err)
	}

	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Fatalf("Expected exactly one file in object directory, got %v", names)
	}
	if entries[0].Name() != hash[constants.HashDirPrefixLength:] {
		t.Errorf("Expected object file %s, got %s",
			hash[constants.HashDirPrefixLength:], entries[0].Name())
	}

	objectType, content, err := store.Read(hash)
	if err != nil {
		t.Fatalf("Failed to read stored object: %v", err)
	}
	if objectType != utils.BlobObjectType {
		t.Errorf("Expected blob object type, got %s", objectType)
	}
	if !bytes.Equal(content, []byte("staged write content\n")) {
		t.Errorf("Expected stored content to round-trip, got %q", content)
	}
}

func TestObjectStore_Compression(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitgoDir(t)
	store := NewObjectStore(repoPath)

	// Use larger content to ensure compression is effective
	largeContent := bytes.Repeat([]byte("This is repeated content. "), 100)

	hash, err := store.Put(utils.BlobObjectType, largeContent)
	if err != nil {
		t.Fatalf("Failed to store blob: %v", err)
	}

	// Read the raw file to verify compression
	objectPath := filepath.Join(repoPath, constants.Gitgo, constants.Objects,
		hash[:constants.HashDirPrefixLength], hash[constants.HashDirPrefixLength:])
	compressedData, err := os.ReadFile(objectPath)
	if err != nil {
		t.Fatalf("Failed to read stored object: %v", err)
	}

	// Verify data is actually compressed (should be smaller than original)
	originalSize := len(largeContent)
	compressedSize := len(compressedData)

	if compressedSize >= originalSize {
		t.Errorf("Data doesn't appear to be compressed: compressed size (%d) >= original size (%d)",
			compressedSize, originalSize)
	}

	// Read it back
	objectType, content, err := store.Read(hash)
	if err != nil {
		t.Fatalf("Failed to read blob: %v", err)
	}

	if objectType != utils.BlobObjectType {
		t.Errorf("Expected a blob, got %s", objectType)
	}
	if !bytes.Equal(content, largeContent) {
		t.Errorf("Content mismatch: expected %q, got %q", largeContent, content)
	}
}

func TestObjectStore_PutIdempotent(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitgoDir(t)
	store := NewObjectStore(repoPath)
	content := []byte("test\n")

	firstHash, err := store.Put(utils.BlobObjectType, content)
	if err != nil {
		t.Fatalf("First put failed: %v", err)
	}

	secondHash, err := store.Put(utils.BlobObjectType, content)
	if err != nil {
		t.Fatalf("Second put failed: %v", err)
	}

	if firstHash != secondHash {
		t.Fatalf("Expected identical hashes, got %s and %s", firstHash, secondHash)
	}

	// Verify exactly one physical copy exists
	objectPath := filepath.Join(repoPath, constants.Gitgo, constants.Objects,
		firstHash[:constants.HashDirPrefixLength], firstHash[constants.HashDirPrefixLength:])

	info, err := os.Stat(objectPath)
	if err != nil {
		t.Fatalf("Object file should exist: %v", err)
	}
	if !info.Mode().IsRegular() {
		t.Error("Object should be a regular file")
	}
}

func TestObjectStore_StoreObject(t *testing.T) {
	store := NewObjectStore(testutils.SetupTestRepoWithGitgoDir(t))
	blob := NewBlob([]byte("typed object\n"))

	if err := store.Store(blob); err != nil {
		t.Fatalf("Failed to store blob object: %v", err)
	}

	readBlob, err := store.ReadBlob(blob.Hash())
	if err != nil {
		t.Fatalf("Failed to read blob back: %v", err)
	}
	if !bytes.Equal(readBlob.Content(), blob.Content()) {
		t.Errorf("Content mismatch: expected %q, got %q", blob.Content(), readBlob.Content())
	}
}

func TestObjectStore_Exists(t *testing.T) {
	store := NewObjectStore(testutils.SetupTestRepoWithGitgoDir(t))
	content := []byte("test\n")
	blob := NewBlob(content)

	// Should not exist initially
	if store.Exists(blob.Hash()) {
		t.Error("Blob should not exist before storing")
	}

	if _, err := store.Put(utils.BlobObjectType, content); err != nil {
		t.Fatalf("Failed to store blob: %v", err)
	}

	// Should exist now
	if !store.Exists(blob.Hash()) {
		t.Error("Blob should exist after storing")
	}
}

func TestObjectStore_ReadNonExistent(t *testing.T) {
	store := NewObjectStore(testutils.SetupTestRepoWithGitgoDir(t))

	// Try to read a non-existent hash
	fakeHash := "0000000000000000000000000000000000000000"
	_, _, err := store.Read(fakeHash)

	if err == nil {
		t.Fatal("Expected error when reading non-existent object")
	}

	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Expected ErrObjectNotFound, got: %v", err)
	}
}

// TestObjectStore_CorruptionDetected verifies a flipped byte in the stored
// file surfaces as an integrity failure on read.
func TestObjectStore_CorruptionDetected(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitgoDir(t)
	store := NewObjectStore(repoPath)

	hash, err := store.Put(utils.BlobObjectType, []byte("precious data\n"))
	if err != nil {
		t.Fatalf("Failed to store blob: %v", err)
	}

	// Flip one byte in the middle of the stored file
	objectPath := filepath.Join(repoPath, constants.Gitgo, constants.Objects,
		hash[:constants.HashDirPrefixLength], hash[constants.HashDirPrefixLength:])
	stored, err := os.ReadFile(objectPath)
	if err != nil {
		t.Fatalf("Failed to read stored object: %v", err)
	}
	stored[len(stored)/2] ^= 0xFF
	if err := os.WriteFile(objectPath, stored, constants.FilePerms); err != nil {
		t.Fatalf("Failed to write corrupted object: %v", err)
	}

	_, _, err = store.Read(hash)
	if err == nil {
		t.Fatal("Expected read of corrupted object to fail")
	}
	if !errors.Is(err, ErrIntegrity) {
		t.Errorf("Expected ErrIntegrity, got: %v", err)
	}
}
