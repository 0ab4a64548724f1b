package cmd

import (
	"fmt"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/internal/repository"
	"github.com/KostasZigo/gitgo/utils"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a new GitGo repository",
	Long: `The 'init' command sets up a new GitGo repository in the current directory.
It creates a .gitgo directory and necessary configuration files, allowing you to start tracking your project's history.
If a repository already exists, the command will not overwrite existing data.`,
	SilenceUsage: true,
	Args:         maximumArgs(constants.InitCmdName, 1),
	RunE:         runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// runInit executes repository initialization at specified or current directory.
func runInit(cmd *cobra.Command, args []string) error {
	dirPath := "."
	if len(args) > 0 {
		dirPath = args[0]
	}

	if err := repository.InitRepository(dirPath); err != nil {
		return fmt.Errorf("failed to initialize repository - %w", err)
	}

	cmd.Printf("Initialized empty GitGo repository in %s\n", utils.BuildDirPath(dirPath, constants.Gitgo))
	return nil
}
