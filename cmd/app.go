package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"
	"golang.org/x/oauth2"

	"github.com/teemow/schedai/internal/agent"
	"github.com/teemow/schedai/internal/calendar"
	"github.com/teemow/schedai/internal/config"
	"github.com/teemow/schedai/internal/google"
	"github.com/teemow/schedai/internal/instrumentation"
	"github.com/teemow/schedai/internal/logging"
	"github.com/teemow/schedai/internal/resources"
	"github.com/teemow/schedai/internal/scheduler"
	"github.com/teemow/schedai/internal/timeparse"
	"github.com/teemow/schedai/internal/tools"
)

// addConfigFlags registers the flags that override config values.
func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("time-zone", "", "Default time zone for event times (IANA name). Can also use SCHEDAI_TIME_ZONE env var.")
	f.String("account", "", "Calendar account to act on. Can also use SCHEDAI_DEFAULT_ACCOUNT env var.")
	f.String("llm-provider", "", "Model provider: openai, groq, anthropic or ollama. Can also use LLM_PROVIDER env var.")
	f.String("llm-model", "", "Model name. Can also use LLM_MODEL env var.")
	f.String("llm-base-url", "", "Model endpoint override. Can also use LLM_BASE_URL env var.")
	f.String("token-store", "", "Token store backend: memory, file or valkey. Can also use TOKEN_STORE env var.")
	f.String("token-dir", "", "Directory of the file token store. Can also use TOKEN_DIR env var.")
	f.String("valkey-url", "", "Valkey server address (e.g., valkey.namespace.svc:6379). Can also use VALKEY_URL env var.")
	f.String("valkey-password", "", "Valkey authentication password. Can also use VALKEY_PASSWORD env var.")
	f.Bool("valkey-tls", false, "Enable TLS for Valkey connections. Can also use VALKEY_TLS_ENABLED env var.")
}

// applyFlags copies explicitly set flags onto cfg. Flags that were not set
// leave the config file and environment values alone.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	str := func(name string, dst *string) {
		if f.Lookup(name) == nil || !f.Changed(name) {
			return
		}
		if v, err := f.GetString(name); err == nil {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		if f.Lookup(name) == nil || !f.Changed(name) {
			return
		}
		if v, err := f.GetBool(name); err == nil {
			*dst = v
		}
	}

	str("addr", &cfg.Server.Addr)
	str("metrics-addr", &cfg.Server.MetricsAddr)
	str("time-zone", &cfg.Scheduling.TimeZone)
	str("account", &cfg.DefaultAccount)
	str("llm-provider", &cfg.LLM.Provider)
	str("llm-model", &cfg.LLM.Model)
	str("llm-base-url", &cfg.LLM.BaseURL)
	str("token-store", &cfg.TokenStore.Backend)
	str("token-dir", &cfg.TokenStore.Dir)
	str("valkey-url", &cfg.TokenStore.Valkey.URL)
	str("valkey-password", &cfg.TokenStore.Valkey.Password)
	boolean("valkey-tls", &cfg.TokenStore.Valkey.TLSEnabled)
	str("google-client-id", &cfg.Google.ClientID)
	str("google-client-secret", &cfg.Google.ClientSecret)
	str("redirect-url", &cfg.Google.RedirectURL)

	if debugMode {
		cfg.LogLevel = "debug"
	}
}

// loadConfig resolves the settings of cmd: config file, .env, environment
// and flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configFile
	if path == "" {
		path = os.Getenv("SCHEDAI_CONFIG")
	}

	cfg, err := config.Load(path, envFile)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupLogging installs the JSON logger as the slog default.
func setupLogging(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := logging.NewLogger(w, cfg.LogLevel)
	slog.SetDefault(logger)
	return logger
}

// app holds the wired components shared by the commands.
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	provider    *instrumentation.Provider
	tokens      google.TokenStore
	closeTokens func()
	oauth       *oauth2.Config
	registry    *tools.Registry
	scheduler   *scheduler.Service
	dispatcher  *tools.Dispatcher
	facade      *agent.Facade
}

// newApp wires instrumentation, token store, calendar client, scheduler and
// tool table. The agent is only built when withAgent is set.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, withAgent bool) (*app, error) {
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, provider: provider, closeTokens: func() {}}
	metrics := provider.Metrics()

	tokens, closeTokens, err := cfg.OpenTokenStore()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.tokens = tokens
	a.closeTokens = closeTokens

	a.oauth = google.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)

	normalizer, err := timeparse.New(cfg.Scheduling.TimeZone)
	if err != nil {
		a.Close()
		return nil, err
	}

	cal := calendar.NewClient(calendar.NewOAuthServiceFactory(a.oauth),
		calendar.WithCalendarID(cfg.Google.CalendarID),
		calendar.WithDefaultTimeZone(cfg.Scheduling.TimeZone),
		calendar.WithMetrics(metrics),
		calendar.WithLogger(logger),
	)

	svc := scheduler.New(cal, tokens, normalizer,
		scheduler.WithLookAhead(cfg.Scheduling.LookAhead),
		scheduler.WithDefaultDuration(cfg.Scheduling.DefaultDuration),
		scheduler.WithListSize(cfg.Scheduling.ListSize),
		scheduler.WithFindLimit(cfg.Scheduling.FindLimit),
		scheduler.WithLogger(logger),
	)

	a.scheduler = svc
	a.registry, err = tools.NewRegistry(svc)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}
	a.dispatcher = tools.NewDispatcher(a.registry,
		tools.WithMetrics(metrics),
		tools.WithAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)),
		tools.WithLogger(logger),
	)

	if withAgent {
		model, err := agent.NewModel(cfg.ModelConfig())
		if err != nil {
			a.Close()
			return nil, err
		}
		decider := agent.NewLLMDecider(model, llms.WithTemperature(cfg.LLM.Temperature))
		runner := agent.NewRunner(decider, a.dispatcher,
			agent.WithMaxSteps(cfg.LLM.MaxSteps),
			agent.WithClock(normalizer.Now),
			agent.WithRunnerLogger(logger),
		)
		a.facade = agent.NewFacade(runner, agent.WithMetrics(metrics), agent.WithLogger(logger))
	}

	return a, nil
}

// mcpServer returns an MCP server exposing the tool table and the calendar
// resources.
func (a *app) mcpServer() (*mcpserver.MCPServer, error) {
	s := mcpserver.NewMCPServer("schedai", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
	if err := a.dispatcher.RegisterMCP(s); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	resources.RegisterCalendarResources(s, a.scheduler)
	return s, nil
}

// Close releases the token store and flushes telemetry.
func (a *app) Close() {
	a.closeTokens()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.provider.Shutdown(ctx); err != nil {
		a.logger.Warn("error during instrumentation shutdown", logging.Err(err))
	}
}
