package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/oauth2"
)

// FileTokenStore keeps one JSON token file per account under a directory.
type FileTokenStore struct {
	dir string
}

// NewFileTokenStore creates a store rooted at dir. An empty dir selects the
// user cache directory.
func NewFileTokenStore(dir string) *FileTokenStore {
	if dir == "" {
		dir = filepath.Join(userCacheDir(), "schedai")
	}
	return &FileTokenStore{dir: dir}
}

// Dir returns the directory holding token files.
func (s *FileTokenStore) Dir() string {
	return s.dir
}

func (s *FileTokenStore) tokenFilePath(account string) string {
	return filepath.Join(s.dir, fmt.Sprintf("google-%s.token", account))
}

// Resolve implements TokenStore.
func (s *FileTokenStore) Resolve(_ context.Context, account string) (*oauth2.Token, error) {
	if err := ValidateAccountName(account); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoToken, err)
	}

	data, err := os.ReadFile(s.tokenFilePath(account))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoToken, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token file for account %s: %w", account, err)
	}
	return &token, nil
}

// Save implements TokenStore.
func (s *FileTokenStore) Save(_ context.Context, account string, token *oauth2.Token) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	// Token files are replaced atomically. Each save writes its own temp file
	// so concurrent saves for one account never share a partial write.
	path := s.tokenFilePath(account)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	if runtime.GOOS == "windows" {
		return os.TempDir()
	}
	return filepath.Join(os.Getenv("HOME"), ".cache")
}
