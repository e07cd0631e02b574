package server

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultStateTTL bounds how long a login may take between /auth/login and
// /auth/callback.
const DefaultStateTTL = 10 * time.Minute

// ErrUnknownState is returned for a state that was never issued, was already
// used or has expired.
var ErrUnknownState = errors.New("unknown or expired oauth state")

// pendingLogin tracks the account a login was started for.
type pendingLogin struct {
	account string
	expires time.Time
}

// StateStore issues one-shot OAuth state values bound to an account.
type StateStore struct {
	states        map[string]pendingLogin
	mu            sync.Mutex
	ttl           time.Duration
	now           func() time.Time
	cleanupTicker *time.Ticker
	cleanupDone   chan struct{}
	stopOnce      sync.Once
	logger        *slog.Logger
}

// NewStateStore creates a store whose states live for ttl and starts its
// cleanup goroutine. A non-positive ttl selects DefaultStateTTL.
func NewStateStore(ttl time.Duration, logger *slog.Logger) *StateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &StateStore{
		states:        make(map[string]pendingLogin),
		ttl:           ttl,
		now:           time.Now,
		cleanupTicker: time.NewTicker(ttl),
		cleanupDone:   make(chan struct{}),
		logger:        logger,
	}

	go s.cleanupExpired()

	return s
}

// Issue returns a fresh state for account.
func (s *StateStore) Issue(account string) string {
	state := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = pendingLogin{
		account: account,
		expires: s.now().Add(s.ttl),
	}
	return state
}

// Consume returns the account bound to state and forgets the state.
func (s *StateStore) Consume(state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	login, ok := s.states[state]
	if !ok {
		return "", ErrUnknownState
	}
	delete(s.states, state)

	if !s.now().Before(login.expires) {
		return "", ErrUnknownState
	}
	return login.account, nil
}

// Len returns the number of pending states.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// purge drops expired states and returns how many were removed.
func (s *StateStore) purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expired := 0
	for state, login := range s.states {
		if !now.Before(login.expires) {
			delete(s.states, state)
			expired++
		}
	}
	return expired
}

func (s *StateStore) cleanupExpired() {
	for {
		select {
		case <-s.cleanupTicker.C:
			if n := s.purge(); n > 0 {
				s.logger.Debug("cleaned up expired oauth states", "count", n)
			}
		case <-s.cleanupDone:
			return
		}
	}
}

// Stop stops the cleanup goroutine.
func (s *StateStore) Stop() {
	s.stopOnce.Do(func() {
		s.cleanupTicker.Stop()
		close(s.cleanupDone)
	})
}
