// Package store persists the last saved source id between runs.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

const keySourceID = "source_id"

// Store keeps one value, the source id, in a YAML file
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a store backed by path, or DefaultPath when path is empty
func New(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Store{path: path}, nil
}

// DefaultPath is $HOME/.truthslies/state.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".truthslies", "state.yaml"), nil
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

func (s *Store) viper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")
	return v
}

// Load returns the saved source id, or "" when nothing has been saved
func (s *Store) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.viper()
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read state %s: %w", s.path, err)
	}
	return v.GetString(keySourceID), nil
}

// Save writes id, replacing any previous value
func (s *Store) Save(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	v := s.viper()
	v.Set(keySourceID, id)
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write state %s: %w", s.path, err)
	}
	return nil
}
