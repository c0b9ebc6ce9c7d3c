package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "contentcapsule",
	Short: "ContentCapsule backend - study guides and briefing docs from YouTube videos",
	Long: `ContentCapsule turns YouTube videos into LLM-generated study guides and
briefing documents, with video chat, notes, speech preparation and history.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
