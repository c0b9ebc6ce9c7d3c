package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev" // overridden at build time via -ldflags
	commit  = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "contentcapsule v%s (commit: %s)\n", version, commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
