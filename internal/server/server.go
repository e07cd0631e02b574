package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/schedai/internal/instrumentation"
	"github.com/teemow/schedai/internal/tools"
)

// MCPPath is where the streamable HTTP MCP endpoint is mounted.
const MCPPath = "/mcp"

// Options configures a Server.
type Options struct {
	// Addr is the listen address of the API.
	Addr string

	// Auth serves /auth/login and /auth/callback. Nil disables the routes.
	Auth *AuthHandler

	// MCP, when set, is exposed over streamable HTTP at /mcp. An X-Account
	// header pins the account of every tool call.
	MCP *mcpserver.MCPServer

	// CORSOrigins lists allowed origins; "*" allows all.
	CORSOrigins []string

	// QueryTimeout bounds every agent run. Zero means no bound.
	QueryTimeout time.Duration

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// Server is the schedai HTTP API.
type Server struct {
	sc         *ServerContext
	health     *HealthChecker
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger
}

// New builds the API: auth flow, query endpoint, optional MCP endpoint and
// health probes behind request id, CORS, metrics and tracing middleware.
func New(sc *ServerContext, opts Options) (*Server, error) {
	if sc == nil {
		return nil, fmt.Errorf("server context is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	health := NewHealthChecker(sc)
	mux := http.NewServeMux()
	health.RegisterHealthEndpoints(mux)

	if opts.Auth != nil {
		mux.HandleFunc("GET /auth/login", opts.Auth.Login)
		mux.HandleFunc("GET /auth/callback", opts.Auth.Callback)
	}
	mux.Handle("POST /schedule/query", NewQueryHandler(sc, opts.QueryTimeout, logger))

	if opts.MCP != nil {
		mcpHTTP := mcpserver.NewStreamableHTTPServer(opts.MCP,
			mcpserver.WithEndpointPath(MCPPath),
			mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
				if r.Header.Get(AccountHeader) == "" {
					return ctx
				}
				account, err := sc.AccountForRequest(r)
				if err != nil {
					return ctx
				}
				return tools.BindAccount(ctx, account)
			}),
		)
		mux.Handle(MCPPath, mcpHTTP)
	}

	var handler http.Handler = mux
	handler = MetricsMiddleware(opts.Metrics, handler)
	handler = CORSMiddleware(opts.CORSOrigins, handler)
	handler = RequestIDMiddleware(logger, handler)
	handler = TracingMiddleware(handler)

	return &Server{
		sc:      sc,
		health:  health,
		handler: handler,
		logger:  logger,
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}, nil
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Health returns the health checker so callers can register dependency checks.
func (s *Server) Health() *HealthChecker {
	return s.health
}

// Start listens on the configured address and blocks until shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves the API on ln and blocks until shutdown. It returns nil after
// a graceful Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting http server",
		"addr", ln.Addr().String(),
		"routes", []string{"/auth/login", "/auth/callback", "/schedule/query", "/healthz", "/readyz"})
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown marks the server not ready, cancels the server context and
// drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	_ = s.sc.Shutdown()
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
