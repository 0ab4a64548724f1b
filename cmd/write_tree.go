package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/internal/objects"
	"github.com/spf13/cobra"
)

var writeTreeCmd = &cobra.Command{
	Use:   "write-tree",
	Short: "Store the working tree as a tree object and print its hash",
	Long: `Walk the working tree from the repository root, store a blob for every
file and a tree object for every directory, and print the hash of the
top-level tree. The .gitgo metadata directory is never included.`,
	SilenceUsage: true,
	Args:         exactArgs(constants.WriteTreeCmdName, 0),
	RunE:         runWriteTree,
}

func init() {
	rootCmd.AddCommand(writeTreeCmd)
}

// runWriteTree collects the working tree files and builds the tree graph.
func runWriteTree(cmd *cobra.Command, args []string) error {
	repoPath, err := findRepoRoot()
	if err != nil {
		return err
	}

	workEntries, err := collectWorkEntries(repoPath)
	if err != nil {
		return err
	}

	store := objects.NewObjectStore(repoPath)
	treeHash, err := objects.BuildTree(store, workEntries)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), treeHash)
	return nil
}

// collectWorkEntries walks the working tree and produces the flat
// (path, mode, content) listing the tree builder consumes. WalkDir visits
// names in lexical order, so the listing is deterministic.
func collectWorkEntries(repoPath string) ([]objects.WorkEntry, error) {
	var workEntries []objects.WorkEntry

	err := filepath.WalkDir(repoPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if entry.Name() == constants.Gitgo {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(repoPath, path)
		if err != nil {
			return err
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", relPath, err)
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}
		mode := objects.ModeRegularFile
		if info.Mode()&0111 != 0 {
			mode = objects.ModeExecutable
		}

		workEntries = append(workEntries, objects.WorkEntry{
			Path:    filepath.ToSlash(relPath),
			Mode:    mode,
			Content: content,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return workEntries, nil
}
