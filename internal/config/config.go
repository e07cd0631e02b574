package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/teemow/schedai/internal/agent"
	"github.com/teemow/schedai/internal/conflict"
	"github.com/teemow/schedai/internal/google"
	"github.com/teemow/schedai/internal/scheduler"
	"github.com/teemow/schedai/internal/timeparse"
)

// Token store backends.
const (
	TokenStoreMemory = "memory"
	TokenStoreFile   = "file"
	TokenStoreValkey = "valkey"
)

// Config holds every setting of the service.
type Config struct {
	LogLevel       string `yaml:"log_level"`
	DefaultAccount string `yaml:"default_account"`

	Server     ServerConfig     `yaml:"server"`
	Google     GoogleConfig     `yaml:"google"`
	Scheduling SchedulingConfig `yaml:"scheduling"`
	LLM        LLMConfig        `yaml:"llm"`
	TokenStore TokenStoreConfig `yaml:"token_store"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	MetricsAddr     string        `yaml:"metrics_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// GoogleConfig holds the OAuth client and target calendar.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	CalendarID   string `yaml:"calendar_id"`
}

// SchedulingConfig tunes the event commands.
type SchedulingConfig struct {
	TimeZone        string        `yaml:"time_zone"`
	DefaultDuration time.Duration `yaml:"default_duration"`
	ListSize        int           `yaml:"list_size"`
	FindLimit       int           `yaml:"find_limit"`
	LookAhead       int           `yaml:"look_ahead"`
}

// LLMConfig selects the model behind the agent.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	MaxSteps    int     `yaml:"max_steps"`
	Temperature float64 `yaml:"temperature"`
}

// TokenStoreConfig selects where OAuth tokens live.
type TokenStoreConfig struct {
	Backend string       `yaml:"backend"`
	Dir     string       `yaml:"dir"`
	Valkey  ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig configures the valkey token store.
type ValkeyConfig struct {
	URL        string `yaml:"url"`
	Password   string `yaml:"password"`
	TLSEnabled bool   `yaml:"tls_enabled"`
	TLSCAFile  string `yaml:"tls_ca_file"`
	KeyPrefix  string `yaml:"key_prefix"`
	DB         int    `yaml:"db"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		DefaultAccount: google.DefaultAccount,
		Server: ServerConfig{
			Addr:            ":8000",
			MetricsAddr:     ":9090",
			ShutdownTimeout: 30 * time.Second,
			QueryTimeout:    2 * time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Google: GoogleConfig{
			RedirectURL: "http://localhost:8000/auth/callback",
			CalendarID:  "primary",
		},
		Scheduling: SchedulingConfig{
			TimeZone:        timeparse.DefaultTimeZone,
			DefaultDuration: scheduler.DefaultDuration,
			ListSize:        scheduler.DefaultListSize,
			FindLimit:       scheduler.DefaultFindLimit,
			LookAhead:       conflict.DefaultLookAhead,
		},
		LLM: LLMConfig{
			Provider: string(agent.ProviderGroq),
			Model:    "llama3-8b-8192",
			MaxSteps: agent.DefaultMaxSteps,
		},
		TokenStore: TokenStoreConfig{
			Backend: TokenStoreFile,
			Valkey: ValkeyConfig{
				KeyPrefix: google.DefaultValkeyKeyPrefix,
			},
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when empty), the .env file at envFile (skipped when empty or missing) and
// the environment.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides settings from environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
				return
			}
			*dst = b
		}
	}

	str("LOG_LEVEL", &c.LogLevel)
	str("SCHEDAI_DEFAULT_ACCOUNT", &c.DefaultAccount)

	str("SCHEDAI_ADDR", &c.Server.Addr)
	str("METRICS_ADDR", &c.Server.MetricsAddr)
	duration("SCHEDAI_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	duration("SCHEDAI_QUERY_TIMEOUT", &c.Server.QueryTimeout)
	if v, ok := lookup("SCHEDAI_CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	str("GOOGLE_CLIENT_ID", &c.Google.ClientID)
	str("GOOGLE_CLIENT_SECRET", &c.Google.ClientSecret)
	str("GOOGLE_REDIRECT_URI", &c.Google.RedirectURL)
	str("GOOGLE_CALENDAR_ID", &c.Google.CalendarID)

	str("SCHEDAI_TIME_ZONE", &c.Scheduling.TimeZone)
	duration("SCHEDAI_DEFAULT_DURATION", &c.Scheduling.DefaultDuration)
	integer("SCHEDAI_LIST_SIZE", &c.Scheduling.ListSize)
	integer("SCHEDAI_FIND_LIMIT", &c.Scheduling.FindLimit)
	integer("SCHEDAI_LOOK_AHEAD", &c.Scheduling.LookAhead)

	str("LLM_PROVIDER", &c.LLM.Provider)
	str("LLM_MODEL", &c.LLM.Model)
	str("LLM_BASE_URL", &c.LLM.BaseURL)
	str("LLM_API_KEY", &c.LLM.APIKey)
	integer("LLM_MAX_STEPS", &c.LLM.MaxSteps)
	if c.LLM.APIKey == "" {
		switch agent.Provider(c.LLM.Provider) {
		case agent.ProviderGroq:
			str("GROQ_API_KEY", &c.LLM.APIKey)
		case agent.ProviderOpenAI:
			str("OPENAI_API_KEY", &c.LLM.APIKey)
		case agent.ProviderAnthropic:
			str("ANTHROPIC_API_KEY", &c.LLM.APIKey)
		}
	}

	str("TOKEN_STORE", &c.TokenStore.Backend)
	str("TOKEN_DIR", &c.TokenStore.Dir)
	str("VALKEY_URL", &c.TokenStore.Valkey.URL)
	str("VALKEY_PASSWORD", &c.TokenStore.Valkey.Password)
	boolean("VALKEY_TLS_ENABLED", &c.TokenStore.Valkey.TLSEnabled)
	str("VALKEY_TLS_CA_FILE", &c.TokenStore.Valkey.TLSCAFile)
	str("VALKEY_KEY_PREFIX", &c.TokenStore.Valkey.KeyPrefix)
	integer("VALKEY_DB", &c.TokenStore.Valkey.DB)

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log_level %q", c.LogLevel))
	}
	if err := google.ValidateAccountName(c.DefaultAccount); err != nil {
		errs = append(errs, fmt.Errorf("invalid default_account: %w", err))
	}

	if _, err := time.LoadLocation(c.Scheduling.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("invalid scheduling.time_zone %q: %w", c.Scheduling.TimeZone, err))
	}
	if c.Scheduling.DefaultDuration <= 0 {
		errs = append(errs, fmt.Errorf("scheduling.default_duration must be positive"))
	}
	if c.Scheduling.ListSize < 1 || c.Scheduling.ListSize > scheduler.MaxListSize {
		errs = append(errs, fmt.Errorf("scheduling.list_size must be between 1 and %d", scheduler.MaxListSize))
	}
	if c.Scheduling.FindLimit < 1 {
		errs = append(errs, fmt.Errorf("scheduling.find_limit must be positive"))
	}
	if c.Scheduling.LookAhead < 1 {
		errs = append(errs, fmt.Errorf("scheduling.look_ahead must be positive"))
	}

	switch agent.Provider(c.LLM.Provider) {
	case agent.ProviderOpenAI, agent.ProviderGroq, agent.ProviderAnthropic, agent.ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("invalid llm.provider %q (must be openai, groq, anthropic or ollama)", c.LLM.Provider))
	}
	if c.LLM.Model == "" {
		errs = append(errs, fmt.Errorf("llm.model is required"))
	}
	if c.LLM.MaxSteps < 1 {
		errs = append(errs, fmt.Errorf("llm.max_steps must be positive"))
	}

	switch c.TokenStore.Backend {
	case TokenStoreMemory, TokenStoreFile:
	case TokenStoreValkey:
		if c.TokenStore.Valkey.URL == "" {
			errs = append(errs, fmt.Errorf("token_store.valkey.url is required for the valkey backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid token_store.backend %q (must be memory, file or valkey)", c.TokenStore.Backend))
	}

	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be positive"))
	}

	return errors.Join(errs...)
}

// RequireOAuth reports whether the Google OAuth client is configured.
func (c *Config) RequireOAuth() error {
	var missing []string
	if c.Google.ClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.Google.ClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.Google.RedirectURL == "" {
		missing = append(missing, "GOOGLE_REDIRECT_URI")
	}
	if len(missing) > 0 {
		return fmt.Errorf("google oauth is not configured: set %s", strings.Join(missing, ", "))
	}
	return nil
}

// ModelConfig returns the agent model settings.
func (c *Config) ModelConfig() agent.ModelConfig {
	return agent.ModelConfig{
		Provider: agent.Provider(c.LLM.Provider),
		Model:    c.LLM.Model,
		BaseURL:  c.LLM.BaseURL,
		APIKey:   c.LLM.APIKey,
	}
}

// ValkeyConfig returns the valkey token store settings.
func (c *Config) ValkeyConfig() google.ValkeyConfig {
	v := c.TokenStore.Valkey
	return google.ValkeyConfig{
		URL:        v.URL,
		Password:   v.Password,
		TLSEnabled: v.TLSEnabled,
		TLSCAFile:  v.TLSCAFile,
		KeyPrefix:  v.KeyPrefix,
		DB:         v.DB,
	}
}

// OpenTokenStore builds the configured token store. The returned close
// function releases backend connections and is never nil.
func (c *Config) OpenTokenStore() (google.TokenStore, func(), error) {
	switch c.TokenStore.Backend {
	case TokenStoreMemory:
		return google.NewMemoryTokenStore(), func() {}, nil
	case TokenStoreFile:
		return google.NewFileTokenStore(c.TokenStore.Dir), func() {}, nil
	case TokenStoreValkey:
		store, err := google.NewValkeyTokenStore(c.ValkeyConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open valkey token store: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown token store backend %q", c.TokenStore.Backend)
	}
}
