package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/schedai/internal/google"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [request]",
		Short: "Answer one natural-language calendar request",
		Long: `Run the assistant once on the given request and print its reply.

Examples:
  schedai query "schedule a meeting called Standup tomorrow at 10am"
  schedai query --account work "what is on my calendar?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, strings.Join(args, " "))
		},
	}
	addConfigFlags(cmd)
	return cmd
}

func runQuery(cmd *cobra.Command, text string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogging(cfg, os.Stderr)

	a, err := newApp(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Server.QueryTimeout > 0 {
		var cancelQuery context.CancelFunc
		ctx, cancelQuery = context.WithTimeout(ctx, cfg.Server.QueryTimeout)
		defer cancelQuery()
	}

	reply, err := a.facade.Query(google.ContextWithAccount(ctx, cfg.DefaultAccount), text)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}
