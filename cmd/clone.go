package cmd

import (
	"fmt"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/internal/remote"
	"github.com/KostasZigo/gitgo/internal/repository"
	"github.com/spf13/cobra"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <url> <directory>",
	Short: "Clone a remote repository into a new directory",
	Long: `Clone fetches a remote repository's complete object graph over the smart
transfer protocol and checks out the commit the remote advertises as HEAD.

Example:
  gitgo clone https://example.com/repo.git myrepo`,
	SilenceUsage: true,
	Args:         exactArgs(constants.CloneCmdName, 2),
	RunE:         runClone,
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}

// runClone performs a full clone into the target directory.
func runClone(cmd *cobra.Command, args []string) error {
	remoteURL, directory := args[0], args[1]

	if err := repository.Clone(remote.NewClient(), remoteURL, directory); err != nil {
		return fmt.Errorf("failed to clone %s: %w", remoteURL, err)
	}

	cmd.Printf("Cloned %s into %s\n", remoteURL, directory)
	return nil
}
