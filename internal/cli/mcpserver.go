package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/memodesk/memodesk/internal/mcp"
)

var mcpServerCmd = &cobra.Command{
	Use:   "mcp-server",
	Short: "Run the memo MCP tool server on stdio",
	Long: `Stdio MCP server exposing create_memo, get_all_memos, get_memo_by_id,
update_memo, delete_memo, search_memos and get_database_stats as tools.
Logs go to stderr so stdout carries only JSON-RPC.`,
	RunE: runMCPServer,
}

func runMCPServer(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	a.watchConfig()
	server := mcp.NewServer(a.svc, a.logger, Version)
	return server.Run(ctx)
}
