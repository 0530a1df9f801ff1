// Package credential keeps the Brainmint API token in the OS keyring.
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/99designs/keyring"

	"github.com/nhle/brainmint/internal/model"
)

const (
	serviceName = "brainmint"

	// TokenKey is the keyring entry holding the API token.
	TokenKey = "api-token"

	// TokenEnv overrides the stored token when set.
	TokenEnv = "BRAINMINT_API_TOKEN"
)

// Store reads and writes credentials in a keyring.
type Store struct {
	ring   keyring.Keyring
	getenv func(string) string
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring, getenv: os.Getenv}
}

// Open returns a Store over the first available system backend.
func Open() (*Store, error) {
	ring, err := openKeyring()
	if err != nil {
		return nil, err
	}
	return NewStore(ring), nil
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(model.ConfigDir(), "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("brainmint-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key.
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (s *Store) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "Brainmint " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key. Removing a missing key is not an
// error.
func (s *Store) Delete(key string) error {
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// Token returns the API token, preferring the environment over the
// keyring. No token at all yields "" and a nil error.
func (s *Store) Token() (string, error) {
	if tok := strings.TrimSpace(s.getenv(TokenEnv)); tok != "" {
		return tok, nil
	}
	tok, err := s.Get(TokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(tok), nil
}

// SetToken stores the API token.
func (s *Store) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &model.ValidationError{Field: "token", Message: "token must not be empty"}
	}
	return s.Set(TokenKey, token)
}

// ClearToken removes the stored API token.
func (s *Store) ClearToken() error {
	return s.Delete(TokenKey)
}

// LookupToken resolves the token from the environment, then the system
// keyring. An unavailable keyring is treated as no token.
func LookupToken() string {
	if tok := strings.TrimSpace(os.Getenv(TokenEnv)); tok != "" {
		return tok
	}
	s, err := Open()
	if err != nil {
		return ""
	}
	tok, err := s.Token()
	if err != nil {
		return ""
	}
	return tok
}
