package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/spf13/cobra"
)

// rootCmd defines the base command for the gitgo CLI.
// All subcommands (init, hash-object, clone, etc.) register under this root.
// Uses cobra for command parsing, flag handling, and help generation.
var rootCmd = &cobra.Command{
	Use:   "gitgo",
	Short: "A content-addressed version control tool in GO",
	Long: `GitGo is a simplified Git implementation developed in GO. It stores blobs,
trees and commits in a content-addressed object store and can clone a remote
repository's full object graph over the smart transfer protocol.`,
}

// Execute runs the root command and handles exit codes.
// Called from main.go to start CLI execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// exactArgs validates command receives exactly n positional arguments.
// Enables usage printing in case of error.
func exactArgs(name string, n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command requires exactly %d arg(s), received %d", name, n, len(args))
		}
		return nil
	}
}

// maximumArgs validates command receives at most n positional arguments.
// Returns error with usage help if argument limit exceeded.
func maximumArgs(name string, n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command accepts at most %d arg(s), received %d", name, n, len(args))
		}
		return nil
	}
}

// findRepoRoot locates .gitgo directory by walking up directory tree.
func findRepoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		gitgoPath := filepath.Join(dir, constants.Gitgo)
		if info, err := os.Stat(gitgoPath); err == nil && info.IsDir() {
			return dir, nil
		}

		// Dir returns all but the last element of path
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root without finding .gitgo
			return "", fmt.Errorf("%s directory not found", constants.Gitgo)
		}
		dir = parent
	}
}
