package google

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/valkey-io/valkey-go"
	"golang.org/x/oauth2"
)

// DefaultValkeyKeyPrefix is prepended to every token key.
const DefaultValkeyKeyPrefix = "schedai:"

// ValkeyConfig holds the connection settings for ValkeyTokenStore.
type ValkeyConfig struct {
	// URL is the Valkey server address (e.g., "valkey.namespace.svc:6379")
	URL string

	// Password is the optional password for Valkey authentication
	Password string

	// TLSEnabled enables TLS for Valkey connections
	TLSEnabled bool

	// TLSCAFile is the path to a custom CA certificate file for TLS verification.
	TLSCAFile string

	// KeyPrefix is the prefix for all Valkey keys (default: "schedai:")
	KeyPrefix string

	// DB is the Valkey database number (default: 0)
	DB int
}

// ValkeyTokenStore keeps tokens as JSON strings in Valkey.
type ValkeyTokenStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyTokenStore connects to Valkey using cfg.
func NewValkeyTokenStore(cfg ValkeyConfig) (*ValkeyTokenStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("valkey URL is required")
	}

	opt := valkey.ClientOption{
		InitAddress:  []string{cfg.URL},
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	}

	if cfg.TLSEnabled {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
		if cfg.TLSCAFile != "" {
			pem, err := os.ReadFile(cfg.TLSCAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read valkey CA file: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("no certificates found in %s", cfg.TLSCAFile)
			}
			tlsConfig.RootCAs = pool
		}
		opt.TLSConfig = tlsConfig
	}

	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}

	return NewValkeyTokenStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewValkeyTokenStoreWithClient wraps an existing client.
func NewValkeyTokenStoreWithClient(client valkey.Client, prefix string) *ValkeyTokenStore {
	if prefix == "" {
		prefix = DefaultValkeyKeyPrefix
	}
	return &ValkeyTokenStore{client: client, prefix: prefix}
}

func (s *ValkeyTokenStore) key(account string) string {
	return s.prefix + "token:" + account
}

// Resolve implements TokenStore.
func (s *ValkeyTokenStore) Resolve(ctx context.Context, account string) (*oauth2.Token, error) {
	raw, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(account)).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return nil, fmt.Errorf("%w: %s", ErrNoToken, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token from valkey: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return nil, fmt.Errorf("invalid token for account %s: %w", account, err)
	}
	return &token, nil
}

// Save implements TokenStore. Tokens carrying a refresh token never expire
// from Valkey; access-only tokens expire with their access token.
func (s *ValkeyTokenStore) Save(ctx context.Context, account string, token *oauth2.Token) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	key := s.key(account)
	var result valkey.ValkeyResult
	if ttl := tokenTTL(token, time.Now()); ttl > 0 {
		result = s.client.Do(ctx, s.client.B().Set().Key(key).Value(string(data)).ExSeconds(int64(ttl/time.Second)).Build())
	} else {
		result = s.client.Do(ctx, s.client.B().Set().Key(key).Value(string(data)).Build())
	}

	if err := result.Error(); err != nil {
		return fmt.Errorf("failed to write token to valkey: %w", err)
	}
	return nil
}

// Ping checks that Valkey answers.
func (s *ValkeyTokenStore) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("valkey ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *ValkeyTokenStore) Close() {
	s.client.Close()
}

// tokenTTL returns zero when the token should be kept indefinitely.
func tokenTTL(token *oauth2.Token, now time.Time) time.Duration {
	if token.RefreshToken != "" || token.Expiry.IsZero() {
		return 0
	}
	ttl := token.Expiry.Sub(now)
	if ttl < time.Second {
		return time.Second
	}
	return ttl.Truncate(time.Second)
}
