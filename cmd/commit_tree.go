package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/internal/objects"
	"github.com/spf13/cobra"
)

var commitTreeCmd = &cobra.Command{
	Use:   "commit-tree <tree-hash>",
	Short: "Create a commit object for a tree and print its hash",
	Long: `Create a commit object pointing at the given tree. Parents may be given
with repeated -p flags; their order is preserved and the first one is the
primary parent. The tree and all parents must already exist in the store.

Examples:
  gitgo commit-tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904 -m "initial"
  gitgo commit-tree <tree> -p <parent> -m "second commit"`,
	SilenceUsage: true,
	Args:         exactArgs(constants.CommitTreeCmdName, 1),
	RunE:         runCommitTree,
}

var (
	commitParents []string
	commitMessage string
)

func init() {
	rootCmd.AddCommand(commitTreeCmd)

	commitTreeCmd.Flags().StringArrayVarP(&commitParents, "parent", "p", nil, "Hash of a parent commit (repeatable)")
	commitTreeCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "Commit message")
	commitTreeCmd.MarkFlagRequired("message")
}

// runCommitTree validates references, builds the commit and stores it.
func runCommitTree(cmd *cobra.Command, args []string) error {
	repoPath, err := findRepoRoot()
	if err != nil {
		return err
	}

	commit, err := objects.NewCommit(args[0], commitParents, commitMessage, commitAuthor())
	if err != nil {
		return err
	}

	store := objects.NewObjectStore(repoPath)
	hash, err := objects.WriteCommit(store, commit)
	if err != nil {
		return fmt.Errorf("failed to store commit: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}

// commitAuthor builds the author identity from the environment, falling
// back to the built-in defaults.
func commitAuthor() objects.Author {
	name := os.Getenv(constants.AuthorNameEnvVar)
	if name == "" {
		name = constants.DefaultAuthorName
	}

	email := os.Getenv(constants.AuthorEmailEnvVar)
	if email == "" {
		email = constants.DefaultAuthorEmail
	}

	return objects.Author{
		Name:      name,
		Email:     email,
		Timestamp: time.Now(),
	}
}
