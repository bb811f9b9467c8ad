// Package profile manages named hyper connections for the CLI.
//
// Profiles live in $XDG_CONFIG_HOME/hyper/profiles.yaml. A connection string
// with credentials is kept in the OS keyring and the file records only its
// redacted form.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/usestring/hyper-mcp/pkg/hyper"
)

// EnvConnection overrides every profile when set.
const EnvConnection = "HYPER"

var (
	// ErrNoProfile is returned when no profile is selected and HYPER is unset.
	ErrNoProfile = errors.New("no hyper connection configured: run `hyper connect` or set HYPER")
	// ErrUnknownProfile is returned for a profile name missing from the file.
	ErrUnknownProfile = errors.New("unknown profile")
)

// Profile is one named connection.
type Profile struct {
	Host       string `yaml:"host"`
	Connection string `yaml:"connection,omitempty"` // only for connections without credentials
	Domain     string `yaml:"domain,omitempty"`
	IDField    string `yaml:"id_field,omitempty"`
}

// File is the on-disk profile document.
type File struct {
	Current  string             `yaml:"current,omitempty"`
	Profiles map[string]Profile `yaml:"profiles"`
}

// Names returns the profile names in order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolved is the connection the CLI should use.
type Resolved struct {
	Name       string // empty when taken from HYPER
	Connection string
	Domain     string
	IDField    string
}

// Store reads and writes profiles.
type Store struct {
	path    string
	secrets *Secrets
	getenv  func(string) string
}

// DefaultDir returns the hyper configuration directory.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "hyper"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "hyper"), nil
}

// NewStore returns a store for the profile file at path. secrets may be nil,
// in which case connections with credentials cannot be saved or loaded.
func NewStore(path string, secrets *Secrets) *Store {
	return &Store{path: path, secrets: secrets, getenv: os.Getenv}
}

// Path returns the profile file location.
func (s *Store) Path() string { return s.path }

// Load reads the profile file. A missing file yields an empty document.
func (s *Store) Load() (*File, error) {
	f := &File{Profiles: map[string]Profile{}}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse profiles %s: %w", s.path, err)
	}
	if f.Profiles == nil {
		f.Profiles = map[string]Profile{}
	}
	return f, nil
}

// Save writes the profile file atomically with owner-only permissions.
func (s *Store) Save(f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write profiles: %w", err)
	}
	return nil
}

// Connect saves a profile and makes it current.
func (s *Store) Connect(name, connection, domain, idField string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, errors.New("profile name is required")
	}
	desc := hyper.ParseConnectionString(connection)
	if desc.Scheme == "" || desc.Host == "" {
		return Profile{}, fmt.Errorf("connection string %q needs a scheme and a host", desc.Redacted())
	}

	f, err := s.Load()
	if err != nil {
		return Profile{}, err
	}

	p := Profile{Host: desc.Redacted(), Domain: domain, IDField: idField}
	if desc.HasCredentials() {
		if s.secrets == nil {
			return Profile{}, errors.New("secure storage is not available for credentials")
		}
		if err := s.secrets.Set(name, connection); err != nil {
			return Profile{}, err
		}
	} else {
		p.Connection = connection
		if s.secrets != nil {
			// Drop a stale secret left by an earlier credentialed profile.
			_ = s.secrets.Delete(name)
		}
	}

	f.Profiles[name] = p
	f.Current = name
	if err := s.Save(f); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Use makes name the current profile.
func (s *Store) Use(name string) error {
	f, err := s.Load()
	if err != nil {
		return err
	}
	if _, ok := f.Profiles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	f.Current = name
	return s.Save(f)
}

// Remove deletes a profile and its keyring entry.
func (s *Store) Remove(name string) error {
	f, err := s.Load()
	if err != nil {
		return err
	}
	p, ok := f.Profiles[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	if p.Connection == "" && s.secrets != nil {
		if err := s.secrets.Delete(name); err != nil {
			return err
		}
	}
	delete(f.Profiles, name)
	if f.Current == name {
		f.Current = ""
	}
	return s.Save(f)
}

// Resolve picks the connection to use: HYPER first, then the named profile,
// then the current one.
func (s *Store) Resolve(name string) (Resolved, error) {
	if conn := strings.TrimSpace(s.getenv(EnvConnection)); conn != "" {
		return Resolved{Connection: conn}, nil
	}

	f, err := s.Load()
	if err != nil {
		return Resolved{}, err
	}
	if name == "" {
		name = f.Current
	}
	if name == "" {
		return Resolved{}, ErrNoProfile
	}
	p, ok := f.Profiles[name]
	if !ok {
		return Resolved{}, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}

	r := Resolved{Name: name, Connection: p.Connection, Domain: p.Domain, IDField: p.IDField}
	if r.Connection == "" {
		if s.secrets == nil {
			return Resolved{}, errors.New("secure storage is not available for credentials")
		}
		conn, err := s.secrets.Get(name)
		if err != nil {
			return Resolved{}, err
		}
		r.Connection = conn
	}
	return r, nil
}
