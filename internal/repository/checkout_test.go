package repository

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/KostasZigo/gitgo/internal/objects"
	"github.com/KostasZigo/gitgo/testutils"
	"github.com/KostasZigo/gitgo/utils"
)

func setupCheckoutStore(t *testing.T) *objects.ObjectStore {
	t.Helper()
	return objects.NewObjectStore(testutils.SetupTestRepoWithGitgoDir(t))
}

func TestMaterialize(t *testing.T) {
	store := setupCheckoutStore(t)

	rootHash, err := objects.BuildTree(store, []objects.WorkEntry{
		{Path: "README.md", Mode: objects.ModeRegularFile, Content: []byte("# project\n")},
		{Path: "a/b.txt", Mode: objects.ModeRegularFile, Content: []byte("x")},
		{Path: "a/c/d.txt", Mode: objects.ModeRegularFile, Content: []byte("deep\n")},
	})
	if err != nil {
		t.Fatalf("Failed to build tree: %v", err)
	}

	destination := t.TempDir()
	if err := Materialize(store, rootHash, destination); err != nil {
		t.Fatalf("Failed to materialize tree: %v", err)
	}

	expected := map[string]string{
		"README.md": "# project\n",
		"a/b.txt":   "x",
		"a/c/d.txt": "deep\n",
	}
	for name, content := range expected {
		path := filepath.Join(destination, filepath.FromSlash(name))
		testutils.AssertFileExists(t, path)

		actual, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", name, err)
		}
		if string(actual) != content {
			t.Errorf("File %s: expected content %q, got %q", name, content, actual)
		}
	}
}

func TestMaterialize_ExecutablePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file mode bits are not meaningful on windows")
	}

	store := setupCheckoutStore(t)

	rootHash, err := objects.BuildTree(store, []objects.WorkEntry{
		{Path: "run.sh", Mode: objects.ModeExecutable, Content: []byte("#!/bin/sh\n")},
		{Path: "data.txt", Mode: objects.ModeRegularFile, Content: []byte("plain\n")},
	})
	if err != nil {
		t.Fatalf("Failed to build tree: %v", err)
	}

	destination := t.TempDir()
	if err := Materialize(store, rootHash, destination); err != nil {
		t.Fatalf("Failed to materialize tree: %v", err)
	}

	script, err := os.Stat(filepath.Join(destination, "run.sh"))
	if err != nil {
		t.Fatalf("Failed to stat run.sh: %v", err)
	}
	if script.Mode()&0111 == 0 {
		t.Error("run.sh should be executable")
	}

	data, err := os.Stat(filepath.Join(destination, "data.txt"))
	if err != nil {
		t.Fatalf("Failed to stat data.txt: %v", err)
	}
	if data.Mode()&0111 != 0 {
		t.Error("data.txt should not be executable")
	}
}

func TestMaterialize_NotATree(t *testing.T) {
	store := setupCheckoutStore(t)

	blobHash, err := store.Put(utils.BlobObjectType, []byte("not a tree"))
	if err != nil {
		t.Fatalf("Failed to store blob: %v", err)
	}

	if err := Materialize(store, blobHash, t.TempDir()); err == nil {
		t.Error("Expected error when materializing a blob, but got nil")
	}
}

func TestMaterialize_MissingObject(t *testing.T) {
	store := setupCheckoutStore(t)

	// A tree whose entry points at an object the store never received
	entry, err := objects.NewTreeEntry(objects.ModeRegularFile, "ghost.txt", testutils.RandomHash())
	if err != nil {
		t.Fatalf("Failed to create tree entry: %v", err)
	}
	tree, err := objects.NewTree([]objects.TreeEntry{*entry})
	if err != nil {
		t.Fatalf("Failed to create tree: %v", err)
	}
	treeHash, err := store.Put(utils.TreeObjectType, tree.Content())
	if err != nil {
		t.Fatalf("Failed to store tree: %v", err)
	}

	err = Materialize(store, treeHash, t.TempDir())
	if err == nil {
		t.Fatal("Expected error for tree referencing a missing object")
	}
	if !errors.Is(err, objects.ErrObjectNotFound) {
		t.Errorf("Expected ErrObjectNotFound, got: %v", err)
	}
}
