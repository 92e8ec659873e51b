// Package history keeps submitted queries, most recent first, and mirrors
// them to an append-only file.
package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kobzarvs/qsql/internal/logger"
)

// Store is owned by the shell and lent to an input session while it browses.
// The index is -1 while the live draft is shown.
type Store struct {
	mu      sync.Mutex
	entries []string
	index   int
	file    *os.File
}

func New() *Store {
	return &Store{index: -1}
}

// Load seeds the store from path and keeps the file open for appends. Any
// failure leaves the store usable in memory only.
func Load(path string) *Store {
	s := New()
	if err := s.load(path); err != nil {
		logger.Warn("history unavailable, keeping it in memory", "path", path, "err", err)
	}
	return s
}

func (s *Store) load(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		s.Push(line)
		n++
	}
	if err := scanner.Err(); err != nil {
		_ = f.Close()
		return fmt.Errorf("read history: %w", err)
	}
	s.mu.Lock()
	s.file = f
	s.mu.Unlock()
	logger.Debug("history loaded", "path", path, "lines", n, "entries", s.Len())
	return nil
}

// Push records entry unless it repeats the most recent one.
func (s *Store) Push(entry string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.push(entry)
}

func (s *Store) push(entry string) bool {
	if len(s.entries) > 0 && s.entries[0] == entry {
		return false
	}
	s.entries = append(s.entries, "")
	copy(s.entries[1:], s.entries)
	s.entries[0] = entry
	return true
}

// PushAndPersist is Push plus an fsynced append to the backing file.
func (s *Store) PushAndPersist(entry string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.push(entry) || s.file == nil {
		return nil
	}
	if _, err := s.file.WriteString(entry + "\n"); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync history: %w", err)
	}
	return nil
}

// Prev steps to an older entry. It reports false when there is none.
func (s *Store) Prev() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index+1 >= len(s.entries) {
		return "", false
	}
	s.index++
	return s.entries[s.index], true
}

// Next steps to a newer entry. Stepping past the newest entry resets the
// index to -1 and reports false so the caller can restore its draft.
func (s *Store) Next() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index <= 0 {
		s.index = -1
		return "", false
	}
	s.index--
	return s.entries[s.index], true
}

func (s *Store) ResetIndex() {
	s.mu.Lock()
	s.index = -1
	s.mu.Unlock()
}

func (s *Store) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a copy, most recent first.
func (s *Store) Entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
