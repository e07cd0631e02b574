package google

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{"valid default", "default", false},
		{"valid work", "work", false},
		{"valid with hyphen", "work-email", false},
		{"valid with underscore", "personal_email", false},
		{"valid alphanumeric", "user123", false},
		{"empty", "", true},
		{"with spaces", "my account", true},
		{"with special chars", "account@work", true},
		{"with slash", "work/personal", true},
		{"with dot", "work.email", true},
		{"too long", string(make([]byte, 65)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccountName(tt.account)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAccountName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccountFromContext(t *testing.T) {
	ctx := context.Background()
	if got := AccountFromContext(ctx); got != DefaultAccount {
		t.Errorf("AccountFromContext() = %q, want %q", got, DefaultAccount)
	}

	ctx = ContextWithAccount(ctx, "work")
	if got := AccountFromContext(ctx); got != "work" {
		t.Errorf("AccountFromContext() = %q, want %q", got, "work")
	}

	ctx = ContextWithAccount(ctx, "")
	if got := AccountFromContext(ctx); got != DefaultAccount {
		t.Errorf("AccountFromContext() with empty account = %q, want %q", got, DefaultAccount)
	}
}

func TestOAuthConfig(t *testing.T) {
	conf := OAuthConfig("client-id", "secret", "http://localhost:8000/auth/callback")

	if conf.ClientID != "client-id" {
		t.Errorf("ClientID = %q", conf.ClientID)
	}
	found := false
	for _, s := range conf.Scopes {
		if s == "https://www.googleapis.com/auth/calendar" {
			found = true
		}
	}
	if !found {
		t.Error("calendar scope missing")
	}

	u, err := url.Parse(AuthCodeURL(conf, "state-123"))
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("state") != "state-123" {
		t.Errorf("state = %q", q.Get("state"))
	}
	if q.Get("access_type") != "offline" {
		t.Errorf("access_type = %q", q.Get("access_type"))
	}
	if q.Get("redirect_uri") != "http://localhost:8000/auth/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
}

func TestHTTPClientForcesHTTP1(t *testing.T) {
	conf := OAuthConfig("id", "secret", "")
	client := HTTPClient(context.Background(), conf, &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(time.Hour)})

	transport, ok := client.Transport.(*oauth2.Transport)
	if !ok {
		t.Fatalf("transport is %T", client.Transport)
	}
	if transport.Base == nil {
		t.Fatal("base transport not set")
	}
}

func testStore(t *testing.T, store TokenStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Resolve(ctx, "work")
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("Resolve() on empty store error = %v, want ErrNoToken", err)
	}

	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}
	if err := store.Save(ctx, "work", token); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Resolve(ctx, "work")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.AccessToken != "access" || got.RefreshToken != "refresh" {
		t.Errorf("Resolve() = %+v", got)
	}

	if _, err := store.Resolve(ctx, "personal"); !errors.Is(err, ErrNoToken) {
		t.Errorf("Resolve() for other account error = %v, want ErrNoToken", err)
	}

	if err := store.Save(ctx, "bad name", token); err == nil {
		t.Error("Save() with invalid account should fail")
	}
	if err := store.Save(ctx, "work", nil); err == nil {
		t.Error("Save() with nil token should fail")
	}
}

func TestMemoryTokenStore(t *testing.T) {
	testStore(t, NewMemoryTokenStore())
}

func TestMemoryTokenStore_Isolated(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryTokenStore()
	b := NewMemoryTokenStore()

	if err := a.Save(ctx, "default", &oauth2.Token{AccessToken: "x"}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Resolve(ctx, "default"); !errors.Is(err, ErrNoToken) {
		t.Errorf("stores must not share state, got err = %v", err)
	}

	// Returned tokens are copies.
	got, _ := a.Resolve(ctx, "default")
	got.AccessToken = "mutated"
	again, _ := a.Resolve(ctx, "default")
	if again.AccessToken != "x" {
		t.Errorf("stored token was mutated through Resolve result")
	}
}

func TestFileTokenStore(t *testing.T) {
	dir := t.TempDir()
	store := NewFileTokenStore(dir)
	testStore(t, store)

	info, err := os.Stat(filepath.Join(dir, "google-work.token"))
	if err != nil {
		t.Fatalf("token file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestFileTokenStore_ConcurrentSave(t *testing.T) {
	dir := t.TempDir()
	store := NewFileTokenStore(dir)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token := &oauth2.Token{AccessToken: fmt.Sprintf("access-%02d", i), RefreshToken: "refresh"}
			errs <- store.Save(context.Background(), "work", token)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := store.Resolve(context.Background(), "work")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !strings.HasPrefix(got.AccessToken, "access-") || got.RefreshToken != "refresh" {
		t.Errorf("Resolve() = %+v, want one of the saved tokens", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the token file", len(entries))
	}
}

func TestFileTokenStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileTokenStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "google-default.token"), []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := store.Resolve(context.Background(), "default")
	if err == nil || errors.Is(err, ErrNoToken) {
		t.Errorf("Resolve() error = %v, want decode error", err)
	}
}

func TestFileTokenStore_InvalidAccount(t *testing.T) {
	store := NewFileTokenStore(t.TempDir())
	if _, err := store.Resolve(context.Background(), "../etc"); !errors.Is(err, ErrNoToken) {
		t.Errorf("Resolve() error = %v, want ErrNoToken", err)
	}
}

func TestNewFileTokenStore_DefaultDir(t *testing.T) {
	store := NewFileTokenStore("")
	if filepath.Base(store.Dir()) != "schedai" {
		t.Errorf("Dir() = %q", store.Dir())
	}
}

func TestTokenTTL(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token *oauth2.Token
		want  time.Duration
	}{
		{"refresh token kept", &oauth2.Token{RefreshToken: "r", Expiry: now.Add(time.Hour)}, 0},
		{"no expiry kept", &oauth2.Token{AccessToken: "a"}, 0},
		{"access only expires", &oauth2.Token{AccessToken: "a", Expiry: now.Add(90 * time.Second)}, 90 * time.Second},
		{"already expired floors at a second", &oauth2.Token{AccessToken: "a", Expiry: now.Add(-time.Minute)}, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenTTL(tt.token, now); got != tt.want {
				t.Errorf("tokenTTL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewValkeyTokenStore_RequiresURL(t *testing.T) {
	if _, err := NewValkeyTokenStore(ValkeyConfig{}); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestValkeyTokenStore_Key(t *testing.T) {
	s := &ValkeyTokenStore{prefix: DefaultValkeyKeyPrefix}
	if got := s.key("work"); got != "schedai:token:work" {
		t.Errorf("key() = %q", got)
	}
}

// Runs against a live server when VALKEY_TEST_ADDR is set.
func TestValkeyTokenStore_Live(t *testing.T) {
	addr := os.Getenv("VALKEY_TEST_ADDR")
	if addr == "" {
		t.Skip("VALKEY_TEST_ADDR not set")
	}

	store, err := NewValkeyTokenStore(ValkeyConfig{URL: addr, KeyPrefix: "schedai-test:" + time.Now().Format("150405.000") + ":"})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
	testStore(t, store)
}
