package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "statekit",
		Short: "Unidirectional state-management toolkit for Go",
		Long: `Statekit is a single-writer, multi-reader state container with a
view-model derivation layer.

The CLI hosts the development tooling:

  • demo: run an example counter store with the devtools inspector
  • version: print build information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		demoCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
