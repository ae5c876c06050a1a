package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/caption-ocr-mcp/internal/logging"
	"github.com/ironsheep/caption-ocr-mcp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over stdin/stdout (default)",
	Long: `Serve the caption tools over the MCP protocol on stdin/stdout. Logs go to
stderr. Configure it in your MCP client (e.g., Claude Desktop).`,
	RunE: runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.New("caption-mcp", cfg.LogLevel)
	log.Info("starting MCP server",
		"version", Version,
		"build_time", BuildTime,
		"commit", GitCommit,
		"dictionary", cfg.DictionaryPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(*cfg, log)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("server stopped", "error", err)
		return err
	}
	return nil
}
