package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/schedai/internal/logging"
	"github.com/teemow/schedai/internal/server"
)

// pinger is implemented by token stores with a remote backend.
type pinger interface {
	Ping(ctx context.Context) error
}

func newServeCmd() *cobra.Command {
	var (
		enableMCP      bool
		metricsEnabled bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the schedai HTTP API.

Endpoints:
  GET  /auth/login?account=NAME   Start the Google login for an account
  GET  /auth/callback             OAuth redirect target
  POST /schedule/query            {"query": "..."} -> {"response": "..."}
                                  The X-Account header selects the account.
  /mcp                            Calendar tools over streamable HTTP (--mcp)
  /healthz, /readyz               Kubernetes probes

OAuth Configuration:
  --google-client-id / GOOGLE_CLIENT_ID and
  --google-client-secret / GOOGLE_CLIENT_SECRET are required.
  The redirect URL (--redirect-url / GOOGLE_REDIRECT_URI) must use HTTPS
  unless it points at localhost.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, enableMCP, metricsEnabled)
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().String("addr", "", "HTTP listen address (default :8000). Can also use SCHEDAI_ADDR env var.")
	cmd.Flags().String("google-client-id", "", "Google OAuth Client ID. Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().String("google-client-secret", "", "Google OAuth Client Secret. Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().String("redirect-url", "", "OAuth redirect URL ending in /auth/callback. Can also use GOOGLE_REDIRECT_URI env var.")
	cmd.Flags().String("metrics-addr", "", "Metrics server address (default :9090). Can also use METRICS_ADDR env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Serve Prometheus metrics on a dedicated port")
	cmd.Flags().BoolVar(&enableMCP, "mcp", false, "Also expose the calendar tools over streamable HTTP at /mcp")

	return cmd
}

func runServe(cmd *cobra.Command, enableMCP, metricsEnabled bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireOAuth(); err != nil {
		return err
	}
	logger := setupLogging(cfg, os.Stderr)

	a, err := newApp(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	sc, err := server.NewServerContext(ctx, a.tokens, a.facade, cfg.DefaultAccount)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	states := server.NewStateStore(server.DefaultStateTTL, logger)
	defer states.Stop()

	metrics := a.provider.Metrics()
	auth, err := server.NewAuthHandler(a.oauth, a.tokens, states, metrics, logger)
	if err != nil {
		return fmt.Errorf("failed to create auth handler: %w", err)
	}

	var mcpSrv *mcpserver.MCPServer
	if enableMCP {
		if mcpSrv, err = a.mcpServer(); err != nil {
			return err
		}
	}

	srv, err := server.New(sc, server.Options{
		Addr:         cfg.Server.Addr,
		Auth:         auth,
		MCP:          mcpSrv,
		CORSOrigins:  cfg.Server.CORSOrigins,
		QueryTimeout: cfg.Server.QueryTimeout,
		Metrics:      metrics,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	if p, ok := a.tokens.(pinger); ok {
		srv.Health().AddCheck("token_store", p.Ping)
	}

	var metricsServer *server.MetricsServer
	if metricsEnabled && a.provider.PrometheusEnabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Server.MetricsAddr,
			InstrumentationProvider: a.provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("metrics server stopped", logging.Err(err))
			}
		}()
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping http server")
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("http server stopped with error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error during metrics server shutdown", logging.Err(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down http server: %w", err)
	}
	logger.Info("http server gracefully stopped")
	return nil
}
