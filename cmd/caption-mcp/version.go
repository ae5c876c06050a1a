package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/caption-ocr-mcp/internal/server"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "caption-ocr-mcp %s (protocol server %s)\n", Version, server.Version)
		fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
