// invctl is the operator CLI for the inventory ledger.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "invctl",
	Short: "Operate the inventory ledger: migrate, seed, issue tokens, send digests.",
	Long: `invctl runs one-off maintenance tasks against the inventory ledger database.
It reads the same environment (and .env file) as the API server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd, tokenCmd, digestCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
