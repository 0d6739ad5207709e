// Package state remembers the current codespace in a one-line file next
// to the config, $XDG_CONFIG_HOME/gh-csm/current.
package state

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/luanzeba/gh-csm/internal/config"
)

const fileName = "current"

var ErrNoCodespace = errors.New("no codespace selected")

// Store reads and writes the selection file at Path.
type Store struct {
	Path string
}

// Default returns the store in the gh-csm config directory.
func Default() (*Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return &Store{Path: filepath.Join(dir, fileName)}, nil
}

// Get returns the selected codespace, or ErrNoCodespace.
func (s *Store) Get() (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoCodespace
	}
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", ErrNoCodespace
	}
	return name, nil
}

// Set records name as the selection.
func (s *Store) Set(name string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.Path, []byte(name+"\n"), 0644)
}

// Clear forgets the selection. Clearing twice is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ClearIf forgets the selection only when it is one of names.
func (s *Store) ClearIf(names ...string) error {
	current, err := s.Get()
	if errors.Is(err, ErrNoCodespace) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == current {
			return s.Clear()
		}
	}
	return nil
}

// Get returns the codespace selected in the default store.
func Get() (string, error) {
	s, err := Default()
	if err != nil {
		return "", err
	}
	return s.Get()
}

// Set selects name in the default store.
func Set(name string) error {
	s, err := Default()
	if err != nil {
		return err
	}
	return s.Set(name)
}

// Clear forgets the selection in the default store.
func Clear() error {
	s, err := Default()
	if err != nil {
		return err
	}
	return s.Clear()
}

// ClearIf forgets the default store's selection when it is one of names.
func ClearIf(names ...string) error {
	s, err := Default()
	if err != nil {
		return err
	}
	return s.ClearIf(names...)
}
