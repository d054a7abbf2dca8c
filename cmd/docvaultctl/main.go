package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "docvaultctl",
		Version: version,
		Short:   "Operator tooling for docvault",
		Long: `docvaultctl - operator tooling for the docvault PDF service

Settings are read from the environment (and .env when present) using the
same variables as the API server.

  token issue    mint an access or refresh token for a subject
  token verify   check a token and print its claims
  token refresh  exchange a refresh token for a new access token
  migrate        apply metadata store migrations`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newMigrateCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
