package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/gitgo/internal/constants"
)

func InitRepository(path string) error {
	// Resolves and adds OS specific separator
	gitgoDir := filepath.Join(path, constants.Gitgo)

	if err := checkRepositoryDoesNotExist(gitgoDir); err != nil {
		return err
	}

	// Track if initialization of gitgo directories and files was successful
	// Default value: false
	var initSuccess bool

	// Defer a func to clean up any directories/files in the case that
	// repository initialization failed (not all directories/files were created successfully).
	// If all resources got created successfully initSuccess is true, and the clean-up
	//  is not executed
	defer func() {
		if !initSuccess {
			cleanupRepository(gitgoDir)
		}
	}()

	directories := []string{
		gitgoDir,
		filepath.Join(gitgoDir, constants.Objects),
		filepath.Join(gitgoDir, constants.Refs),
		filepath.Join(gitgoDir, constants.Refs, constants.Heads),
		filepath.Join(gitgoDir, constants.Refs, constants.Tags),
	}

	// Create all gitgo directories
	for _, directory := range directories {
		if err := os.MkdirAll(directory, constants.DirPerms); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", directory, err)
		}
	}

	// Create HEAD file pointing to main branch
	headFile := filepath.Join(gitgoDir, constants.Head)
	headContent := constants.DefaultRefPrefix + constants.DefaultBranch + "\n"

	if err := os.WriteFile(headFile, []byte(headContent), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to create %s file: %w", constants.Head, err)
	}

	initSuccess = true
	return nil
}

// WriteRef records a ref name (refs/heads/main, HEAD, ...) pointing at a
// commit hash under the metadata directory. Parent directories are created
// as needed so arbitrary advertised ref names land in the right place.
func WriteRef(repoPath, refName, hash string) error {
	refName = filepath.FromSlash(strings.TrimPrefix(refName, "/"))
	refFile := filepath.Join(repoPath, constants.Gitgo, refName)

	if err := os.MkdirAll(filepath.Dir(refFile), constants.DirPerms); err != nil {
		return fmt.Errorf("failed to create ref directory for %s: %w", refName, err)
	}

	if err := os.WriteFile(refFile, []byte(hash+"\n"), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to write ref %s: %w", refName, err)
	}

	return nil
}

func checkRepositoryDoesNotExist(path string) error {
	_, err := os.Stat(path)

	// If path doesn't exist there is no error
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to check repository path: %w", err)
	}

	return fmt.Errorf("repository already exists at %s", path)
}

// Removes the entire .gitgo directory if it exists
func cleanupRepository(gitgoDir string) {
	if _, err := os.Stat(gitgoDir); err == nil {
		slog.Debug("Cleaning up partial repository initialization",
			"path", gitgoDir)

		if err := os.RemoveAll(gitgoDir); err != nil {
			slog.Warn("Failed to cleanup repository directory",
				"path", gitgoDir,
				"error", err)
		} else {
			slog.Debug("Successfully cleaned up repository directory",
				"path", gitgoDir)
		}
	}
}
