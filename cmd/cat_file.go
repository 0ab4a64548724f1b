package cmd

import (
	"fmt"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/internal/objects"
	"github.com/spf13/cobra"
)

var catFileCmd = &cobra.Command{
	Use:   "cat-file -p <hash>",
	Short: "Print the content of a stored object",
	Long: `Read an object from the object store by its hash and print its payload.

Example:
  gitgo cat-file -p e69de29bb2d1d6434b8b29ae775ad8c2e48c5391`,
	SilenceUsage: true,
	Args:         exactArgs(constants.CatFileCmdName, 1),
	RunE:         runCatFile,
}

var prettyPrintFlag bool

func init() {
	rootCmd.AddCommand(catFileCmd)

	catFileCmd.Flags().BoolVarP(&prettyPrintFlag, "pretty-print", "p", false, "Pretty-print the object's content")
}

// runCatFile reads an object by hash and prints its payload.
func runCatFile(cmd *cobra.Command, args []string) error {
	if !prettyPrintFlag {
		cmd.SilenceUsage = false
		return fmt.Errorf("%s requires the -p flag", constants.CatFileCmdName)
	}

	hash := args[0]
	if len(hash) != constants.HashStringLength {
		return fmt.Errorf("invalid object hash %q: want %d hex characters", hash, constants.HashStringLength)
	}

	repoPath, err := findRepoRoot()
	if err != nil {
		return err
	}

	store := objects.NewObjectStore(repoPath)
	_, content, err := store.Read(hash)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), string(content))
	return nil
}
