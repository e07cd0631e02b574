package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/schedai/internal/tools"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the calendar tools over MCP stdio",
		Long: `Serve create_event, list_events, update_event and delete_event to an MCP
client (e.g., Claude Desktop, Cursor) over standard input/output.

Every tool takes an optional "account" argument. --account pins all calls
to one account instead. Tokens come from the configured token store; log in
once through "schedai serve" (/auth/login) to create them.

Logs go to stderr so they never interfere with the protocol stream.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd)
		},
	}
	addConfigFlags(cmd)
	return cmd
}

func runMCP(cmd *cobra.Command) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogging(cfg, os.Stderr)

	a, err := newApp(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer a.Close()

	mcpSrv, err := a.mcpServer()
	if err != nil {
		return err
	}

	var opts []mcpserver.StdioOption
	if cmd.Flags().Changed("account") {
		account := cfg.DefaultAccount
		opts = append(opts, mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
			return tools.BindAccount(ctx, account)
		}))
	}

	return runStdioServer(mcpSrv, opts...)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer, opts ...mcpserver.StdioOption) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv, opts...); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
