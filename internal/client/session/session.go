// Package session holds the client's logged-in identity with an explicit
// create/read/invalidate lifecycle, persisted to a file between invocations.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalToken is the placeholder token used by backends that authenticate
// on-device and never talk to the remote API.
const LocalToken = "local-token"

// ErrNotLoggedIn is returned when an operation requires a session and none exists.
var ErrNotLoggedIn = errors.New("not logged in")

// Session is the client's bearer credential plus the identity it proves.
type Session struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Manager loads and stores the session file.
type Manager struct {
	path string
}

// NewManager creates a manager for the given session file path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Current returns the active session, or ErrNotLoggedIn when absent.
func (m *Manager) Current() (*Session, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Token == "" {
		return nil, ErrNotLoggedIn
	}
	return &s, nil
}

// Save persists the session, creating parent directories as needed.
func (m *Manager) Save(s *Session) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the session. Clearing an absent session is not an error.
func (m *Manager) Clear() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
