package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/KostasZigo/gitgo/testutils"
	"github.com/spf13/cobra"
)

// createTestRootCmd creates fresh root command with the given subcommand.
func createTestRootCmd(cmd *cobra.Command) *cobra.Command {
	testRootCmd := &cobra.Command{Use: "gitgo"}
	testRootCmd.AddCommand(cmd)
	return testRootCmd
}

// captureStdout returns command stdout output as string.
func captureStdout(cmd *cobra.Command) *bytes.Buffer {
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	return &stdout
}

// captureStderr returns command stderr output as string.
func captureStderr(cmd *cobra.Command) *bytes.Buffer {
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	return &stderr
}

// assertRepositoryStructure verifies .gitgo directory structure and HEAD file.
func assertRepositoryStructure(t *testing.T, repoPath string) {
	t.Helper()

	gitgoDir := filepath.Join(repoPath, ".gitgo")
	testutils.AssertDirExists(t, gitgoDir)

	expectedDirs := []string{"objects", "refs", "refs/heads", "refs/tags"}
	for _, dir := range expectedDirs {
		testutils.AssertDirExists(t, filepath.Join(gitgoDir, dir))
	}

	headPath := filepath.Join(gitgoDir, "HEAD")
	testutils.AssertFileExists(t, headPath)

	content, err := os.ReadFile(headPath)
	if err != nil {
		t.Fatalf("Failed to read HEAD file: %v", err)
	}

	expectedContent := "ref: refs/heads/main\n"
	if string(content) != expectedContent {
		t.Errorf("HEAD content = %q, want %q", content, expectedContent)
	}
}

// changeToRepoDir changes working directory to repo path and registers cleanup.
func changeToRepoDir(t *testing.T, repoPath string) {
	t.Helper()

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}

	if err := os.Chdir(repoPath); err != nil {
		t.Fatalf("Failed to change to directory %s: %v", repoPath, err)
	}

	t.Cleanup(func() {
		os.Chdir(oldDir)
	})
}
