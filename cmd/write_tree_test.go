package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/internal/objects"
	"github.com/KostasZigo/gitgo/testutils"
)

// TestWriteTreeCommand_Success verifies the working tree is stored and the
// root hash printed.
func TestWriteTreeCommand_Success(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitgoDir(t)
	changeToRepoDir(t, repoPath)

	testutils.CreateTestFile(t, repoPath, "README.md", []byte("# readme\n"))
	if err := os.MkdirAll(filepath.Join(repoPath, "src"), constants.DirPerms); err != nil {
		t.Fatalf("Failed to create src directory: %v", err)
	}
	testutils.CreateTestFile(t, filepath.Join(repoPath, "src"), "main.go", []byte("package main\n"))

	testRootCmd := createTestRootCmd(writeTreeCmd)
	stdout := captureStdout(testRootCmd)

	testRootCmd.SetArgs([]string{constants.WriteTreeCmdName})
	if err := testRootCmd.Execute(); err != nil {
		t.Fatalf("%s command failed: %v", constants.WriteTreeCmdName, err)
	}

	rootHash := strings.TrimSpace(stdout.String())
	if len(rootHash) != constants.HashStringLength {
		t.Fatalf("Expected a %d-char hash, got %q", constants.HashStringLength, rootHash)
	}

	// The printed hash resolves to a tree holding both entries
	store := objects.NewObjectStore(repoPath)
	_, content, err := store.Read(rootHash)
	if err != nil {
		t.Fatalf("Failed to read root tree: %v", err)
	}

	tree, err := objects.ParseTree(content)
	if err != nil {
		t.Fatalf("Failed to parse root tree: %v", err)
	}
	if _, found := tree.FindEntry("README.md"); !found {
		t.Error("Root tree should contain README.md")
	}
	if entry, found := tree.FindEntry("src"); !found || !entry.IsDirectory() {
		t.Error("Root tree should contain the src directory")
	}
}

// TestWriteTreeCommand_SkipsMetadataDirectory verifies .gitgo never enters
// the stored tree.
func TestWriteTreeCommand_SkipsMetadataDirectory(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitgoDir(t)
	changeToRepoDir(t, repoPath)

	testutils.CreateTestFile(t, repoPath, "file.txt", []byte("tracked\n"))

	testRootCmd := createTestRootCmd(writeTreeCmd)
	stdout := captureStdout(testRootCmd)

	testRootCmd.SetArgs([]string{constants.WriteTreeCmdName})
	if err := testRootCmd.Execute(); err != nil {
		t.Fatalf("%s command failed: %v", constants.WriteTreeCmdName, err)
	}

	rootHash := strings.TrimSpace(stdout.String())
	store := objects.NewObjectStore(repoPath)
	_, content, err := store.Read(rootHash)
	if err != nil {
		t.Fatalf("Failed to read root tree: %v", err)
	}

	tree, err := objects.ParseTree(content)
	if err != nil {
		t.Fatalf("Failed to parse root tree: %v", err)
	}
	if _, found := tree.FindEntry(constants.Gitgo); found {
		t.Errorf("Root tree must not contain %s", constants.Gitgo)
	}
	if len(tree.Entries()) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(tree.Entries()))
	}
}

// TestWriteTreeCommand_Deterministic verifies two runs over the same files
// print the same hash.
func TestWriteTreeCommand_Deterministic(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitgoDir(t)
	changeToRepoDir(t, repoPath)

	testutils.CreateTestFile(t, repoPath, "a.txt", []byte("a\n"))
	testutils.CreateTestFile(t, repoPath, "b.txt", []byte("b\n"))

	hashes := make([]string, 2)
	for i := range hashes {
		testRootCmd := createTestRootCmd(writeTreeCmd)
		stdout := captureStdout(testRootCmd)
		testRootCmd.SetArgs([]string{constants.WriteTreeCmdName})
		if err := testRootCmd.Execute(); err != nil {
			t.Fatalf("%s run %d failed: %v", constants.WriteTreeCmdName, i, err)
		}
		hashes[i] = strings.TrimSpace(stdout.String())
	}

	if hashes[0] != hashes[1] {
		t.Errorf("Expected identical hashes across runs, got %s and %s", hashes[0], hashes[1])
	}
}

// TestWriteTreeCommand_EmptyWorktree verifies the empty working tree is
// rejected rather than stored.
func TestWriteTreeCommand_EmptyWorktree(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitgoDir(t)
	changeToRepoDir(t, repoPath)

	testRootCmd := createTestRootCmd(writeTreeCmd)
	captureStdout(testRootCmd)
	captureStderr(testRootCmd)

	testRootCmd.SetArgs([]string{constants.WriteTreeCmdName})
	err := testRootCmd.Execute()

	if err == nil {
		t.Fatal("Expected error for a working tree with no files")
	}
}

// TestWriteTreeCommand_NotInRepository verifies error outside a repository.
func TestWriteTreeCommand_NotInRepository(t *testing.T) {
	changeToRepoDir(t, t.TempDir())

	testRootCmd := createTestRootCmd(writeTreeCmd)
	captureStdout(testRootCmd)
	captureStderr(testRootCmd)

	testRootCmd.SetArgs([]string{constants.WriteTreeCmdName})
	err := testRootCmd.Execute()

	if err == nil {
		t.Fatal("Expected error outside a repository")
	}
	if !strings.Contains(err.Error(), constants.Gitgo+" directory not found") {
		t.Errorf("Expected missing repository error, got: %v", err)
	}
}
