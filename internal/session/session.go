// Package session keeps the logged-in state in a small YAML file next to,
// but independent of, the database.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// NoUser is returned by UserID when nobody is logged in
const NoUser int64 = -1

// State is the persisted session
type State struct {
	LoggedIn bool   `yaml:"logged_in"`
	UserID   int64  `yaml:"user_id"`
	Email    string `yaml:"email"`
	FullName string `yaml:"full_name"`
}

// Store reads and writes the session file
type Store struct {
	path  string
	mu    sync.RWMutex
	state State
}

// Open loads the session at path. A missing file means logged out.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if err := yaml.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return s, nil
}

// CreateLoginSession records a successful login
func (s *Store) CreateLoginSession(userID int64, email, fullName string) error {
	return s.write(State{
		LoggedIn: true,
		UserID:   userID,
		Email:    email,
		FullName: fullName,
	})
}

// UpdateUserDetails refreshes the cached display fields after a profile edit
func (s *Store) UpdateUserDetails(email, fullName string) error {
	s.mu.RLock()
	next := s.state
	s.mu.RUnlock()

	next.Email = email
	next.FullName = fullName
	return s.write(next)
}

// Logout clears everything
func (s *Store) Logout() error {
	return s.write(State{})
}

// IsLoggedIn reports whether a user is logged in
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LoggedIn
}

// UserID returns the logged-in user's ID, or NoUser
func (s *Store) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.LoggedIn {
		return NoUser
	}
	return s.state.UserID
}

// Email returns the cached email of the logged-in user
func (s *Store) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Email
}

// FullName returns the cached full name of the logged-in user
func (s *Store) FullName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.FullName
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// write replaces the file atomically and then the in-memory state
func (s *Store) write(next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(next)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.state = next
	return nil
}
