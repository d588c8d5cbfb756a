package notas

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserNameKey is the store key of the cached display name.
const UserNameKey = "notasUPV_userName"

// Store is a small persistent key-value file.
type Store struct {
	path string
}

// DefaultStorePath is notas/store.yaml under the user config directory.
func DefaultStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "notas", "store.yaml"), nil
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store %s: %w", s.path, err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to decode store %s: %w", s.path, err)
	}
	// A null document decodes to a nil map.
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

// Get returns the value for key; a missing file holds no keys.
func (s *Store) Get(key string) (string, bool, error) {
	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set overwrites key, keeping the other entries.
func (s *Store) Set(key, value string) error {
	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store %s: %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store %s: %w", s.path, err)
	}
	return nil
}

// DisplayName reads the cached name; "" when none was recorded.
func DisplayName(s *Store) (string, error) {
	name, _, err := s.Get(UserNameKey)
	return name, err
}
