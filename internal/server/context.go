package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/teemow/schedai/internal/google"
)

// AccountHeader selects the calendar account of a query request.
const AccountHeader = "X-Account"

// Querier answers a natural-language scheduling request for the account
// bound to ctx.
type Querier interface {
	Query(ctx context.Context, text string) (string, error)
}

// ServerContext holds the dependencies shared by all HTTP handlers.
type ServerContext struct {
	ctx            context.Context
	cancel         context.CancelFunc
	tokens         google.TokenStore
	querier        Querier
	defaultAccount string
	mu             sync.RWMutex
	shutdown       bool
}

// NewServerContext creates a server context. An empty defaultAccount selects
// google.DefaultAccount.
func NewServerContext(ctx context.Context, tokens google.TokenStore, querier Querier, defaultAccount string) (*ServerContext, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}
	if querier == nil {
		return nil, fmt.Errorf("querier is required")
	}
	if defaultAccount == "" {
		defaultAccount = google.DefaultAccount
	}
	if err := google.ValidateAccountName(defaultAccount); err != nil {
		return nil, fmt.Errorf("invalid default account: %w", err)
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:            shutdownCtx,
		cancel:         cancel,
		tokens:         tokens,
		querier:        querier,
		defaultAccount: defaultAccount,
	}, nil
}

// Context returns the server context. It is cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Tokens returns the token store.
func (sc *ServerContext) Tokens() google.TokenStore {
	return sc.tokens
}

// Querier returns the query answerer.
func (sc *ServerContext) Querier() Querier {
	return sc.querier
}

// DefaultAccount returns the account used when a request names none.
func (sc *ServerContext) DefaultAccount() string {
	return sc.defaultAccount
}

// AccountForRequest returns the account named by the X-Account header, or the
// default account.
func (sc *ServerContext) AccountForRequest(r *http.Request) (string, error) {
	account := strings.TrimSpace(r.Header.Get(AccountHeader))
	if account == "" {
		return sc.defaultAccount, nil
	}
	if err := google.ValidateAccountName(account); err != nil {
		return "", err
	}
	return account, nil
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context. It is safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
