package profile

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies the keyring namespace.
const ServiceName = "hyper-mcp"

// ErrSecretNotFound is returned when the keyring holds no connection for a profile.
var ErrSecretNotFound = errors.New("connection not found in keyring")

// Secrets stores connection strings that carry credentials.
type Secrets struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewSecrets wraps an opened keyring.
func NewSecrets(ring keyring.Keyring) *Secrets {
	return &Secrets{ring: ring}
}

// OpenSecrets opens the OS keyring. Where no native backend exists the
// encrypted file backend under configDir is used, prompting for its password.
func OpenSecrets(configDir string) (*Secrets, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      ServiceName,
		KeychainName:     ServiceName,
		PassPrefix:       ServiceName,
		WinCredPrefix:    ServiceName,
		FileDir:          filepath.Join(configDir, "keyring"),
		FilePasswordFunc: keyring.TerminalPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return NewSecrets(ring), nil
}

func secretKey(profile string) string {
	return "connection/" + profile
}

// Set stores the connection string for a profile.
func (s *Secrets) Set(profile, connection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ring.Set(keyring.Item{
		Key:   secretKey(profile),
		Data:  []byte(connection),
		Label: "hyper connection " + profile,
	}); err != nil {
		return fmt.Errorf("store connection %q: %w", profile, err)
	}
	return nil
}

// Get loads the connection string for a profile.
func (s *Secrets) Get(profile string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, err := s.ring.Get(secretKey(profile))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load connection %q: %w", profile, err)
	}
	if len(it.Data) == 0 {
		return "", ErrSecretNotFound
	}
	return string(it.Data), nil
}

// Delete removes the connection string for a profile. A missing entry is
// not an error.
func (s *Secrets) Delete(profile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.ring.Remove(secretKey(profile))
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("remove connection %q: %w", profile, err)
	}
	return nil
}
