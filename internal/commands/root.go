package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finstat-dev/finstat/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "finstat",
		Short:   "Financial statement normalization and reshape pipeline",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newRegistryCommand())

	return rootCmd
}
