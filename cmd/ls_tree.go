package cmd

import (
	"fmt"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/internal/objects"
	"github.com/KostasZigo/gitgo/utils"
	"github.com/spf13/cobra"
)

var lsTreeCmd = &cobra.Command{
	Use:   "ls-tree <hash>",
	Short: "List the entries of a tree object",
	Long: `Read a tree object from the object store and list its entries.

Examples:
  gitgo ls-tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904
  gitgo ls-tree --name-only 4b825dc642cb6eb9a060e54bf8d69288fbee4904`,
	SilenceUsage: true,
	Args:         exactArgs(constants.LsTreeCmdName, 1),
	RunE:         runLsTree,
}

var nameOnlyFlag bool

func init() {
	rootCmd.AddCommand(lsTreeCmd)

	lsTreeCmd.Flags().BoolVar(&nameOnlyFlag, "name-only", false, "List only entry names")
}

// runLsTree reads a tree object and prints its entries.
func runLsTree(cmd *cobra.Command, args []string) error {
	hash := args[0]
	if len(hash) != constants.HashStringLength {
		return fmt.Errorf("invalid object hash %q: want %d hex characters", hash, constants.HashStringLength)
	}

	repoPath, err := findRepoRoot()
	if err != nil {
		return err
	}

	store := objects.NewObjectStore(repoPath)
	objectType, content, err := store.Read(hash)
	if err != nil {
		return err
	}
	if objectType != utils.TreeObjectType {
		return fmt.Errorf("object %s is a %s, not a tree", hash, objectType)
	}

	tree, err := objects.ParseTree(content)
	if err != nil {
		return fmt.Errorf("tree %s: %w", hash, err)
	}

	for _, entry := range tree.Entries() {
		if nameOnlyFlag {
			fmt.Fprintln(cmd.OutOrStdout(), entry.Name())
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\t%s\n", entry.Mode(), entry.Type(), entry.Hash(), entry.Name())
	}

	return nil
}
