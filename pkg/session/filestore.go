package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// FileTokenStore persists the token as a file under the user's config
// directory.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a token store at
// <user config dir>/<appDir>/token.
func NewFileTokenStore(appDir string) (*FileTokenStore, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}

	return &FileTokenStore{path: filepath.Join(base, appDir, "token")}, nil
}

// NewFileTokenStoreAt creates a token store at an explicit path.
func NewFileTokenStoreAt(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load reads the persisted token. A missing file is an empty token, not
// an error.
func (f *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}

// Save writes the token readable only by the current user.
func (f *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}

	return os.WriteFile(f.path, []byte(token), 0o600)
}

// Clear removes the persisted token.
func (f *FileTokenStore) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryTokenStore keeps the token in memory only. Useful for tests and
// processes that should never persist credentials.
type MemoryTokenStore struct {
	token string
}

// Load returns the stored token.
func (m *MemoryTokenStore) Load() (string, error) { return m.token, nil }

// Save stores the token.
func (m *MemoryTokenStore) Save(token string) error {
	m.token = token
	return nil
}

// Clear drops the token.
func (m *MemoryTokenStore) Clear() error {
	m.token = ""
	return nil
}
