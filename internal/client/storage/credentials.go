// Package storage holds the client's durable local state: the bearer
// token and the offline task mirror, both kept as files in a state
// directory.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoToken is returned by CredentialStore.Get when no token is stored.
var ErrNoToken = errors.New("no stored token")

// StorageError wraps a local persistence failure so callers can tell it
// apart from network and server errors.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

const tokenFile = "token"

// CredentialStore persists a single bearer token in a file. There is at
// most one credential at a time; Set overwrites, Clear removes.
type CredentialStore struct {
	path string
}

// NewCredentialStore returns a store rooted at dir. The directory is
// created on the first write.
func NewCredentialStore(dir string) *CredentialStore {
	return &CredentialStore{path: filepath.Join(dir, tokenFile)}
}

// Get reads the stored token. Returns ErrNoToken when nothing is stored
// and a *StorageError when the file exists but cannot be read.
func (s *CredentialStore) Get() (string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", &StorageError{Op: "read token", Err: err}
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Set writes the token durably. A failure here must surface to the
// caller: a login is not complete until the token is persisted.
func (s *CredentialStore) Set(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return &StorageError{Op: "create state dir", Err: err}
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return &StorageError{Op: "write token", Err: err}
	}
	return nil
}

// Clear removes the stored token. A missing file is not an error.
func (s *CredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return &StorageError{Op: "remove token", Err: err}
	}
	return nil
}
