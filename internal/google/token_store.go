package google

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no credential is stored for an account.
var ErrNoToken = errors.New("no token stored for account")

// TokenStore resolves and persists OAuth tokens per account.
// Implementations must be safe for concurrent use.
type TokenStore interface {
	// Resolve returns the token for account, or ErrNoToken.
	Resolve(ctx context.Context, account string) (*oauth2.Token, error)

	// Save stores token for account, replacing any previous one.
	Save(ctx context.Context, account string, token *oauth2.Token) error
}

// MemoryTokenStore keeps tokens for the lifetime of the instance.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*oauth2.Token
}

// NewMemoryTokenStore creates an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]*oauth2.Token)}
}

// Resolve implements TokenStore.
func (s *MemoryTokenStore) Resolve(_ context.Context, account string) (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[account]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoToken, account)
	}
	copied := *token
	return &copied, nil
}

// Save implements TokenStore.
func (s *MemoryTokenStore) Save(_ context.Context, account string, token *oauth2.Token) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	copied := *token
	s.mu.Lock()
	s.tokens[account] = &copied
	s.mu.Unlock()
	return nil
}
