// Package session remembers what the last run connected to.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ProfileState records one profile's use.
type ProfileState struct {
	LastUsed time.Time `json:"last_used"`
	Uses     int       `json:"uses"`
}

// Session is the persisted state.
type Session struct {
	Profiles    map[string]ProfileState `json:"profiles"`
	LastProfile string                  `json:"last_profile,omitempty"`
	LastSaved   time.Time               `json:"last_saved"`
}

// Manager handles session persistence
type Manager struct {
	mu      sync.RWMutex
	session Session
	path    string
	dirty   bool
}

// NewManager loads the session stored under $XDG_STATE_HOME/qsql.
func NewManager() (*Manager, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	return Open(path), nil
}

// Open loads the session at path. A missing or unreadable file starts fresh.
func Open(path string) *Manager {
	m := &Manager{
		session: Session{Profiles: make(map[string]ProfileState)},
		path:    path,
	}
	m.load()
	return m
}

func sessionPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "qsql", "session.json"), nil
}

func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return
	}
	if session.Profiles == nil {
		session.Profiles = make(map[string]ProfileState)
	}
	m.session = session
}

// Save persists the session to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}

	m.session.LastSaved = time.Now()
	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return err
	}

	m.dirty = false
	return nil
}

// LastProfile returns the profile used most recently, if any.
func (m *Manager) LastProfile() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.LastProfile
}

// ProfileState returns what is known about a profile.
func (m *Manager) ProfileState(name string) (ProfileState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.session.Profiles[name]
	return st, ok
}

// MarkProfileUsed records a connection made with the named profile.
func (m *Manager) MarkProfileUsed(name string, at time.Time) {
	if name == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.session.Profiles[name]
	st.LastUsed = at
	st.Uses++
	m.session.Profiles[name] = st
	m.session.LastProfile = name
	m.dirty = true
}
