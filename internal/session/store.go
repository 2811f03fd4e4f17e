package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Credentials is the bearer token pair issued by the backend. The pair is
// always stored and cleared together: either both tokens are present or
// neither is.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// User is the last-known profile of the signed-in account, cached alongside
// the tokens so commands can greet the user without a network round-trip.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Store holds the process-wide session state. Implementations must update the
// token pair atomically: a concurrent reader never observes an old access
// token next to a new refresh token or vice versa.
type Store interface {
	Credentials() (Credentials, bool)
	SetCredentials(Credentials) error
	User() (User, bool)
	SetUser(User) error
	Clear() error
}

type state struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user,omitempty"`
}

// FileStore persists session state as a JSON file, surviving process
// restarts. All reads and writes go through a single mutex.
type FileStore struct {
	mu    sync.Mutex
	path  string
	state state
}

// NewFileStore loads existing session state from path, if any.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		// A corrupt session file is not worth failing over; start signed out.
		s.state = state{}
	}
	if s.state.AccessToken == "" || s.state.RefreshToken == "" {
		// Never resurrect half a pair.
		s.state.AccessToken = ""
		s.state.RefreshToken = ""
	}
	return s, nil
}

func (s *FileStore) Credentials() (Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.AccessToken == "" {
		return Credentials{}, false
	}
	return Credentials{AccessToken: s.state.AccessToken, RefreshToken: s.state.RefreshToken}, true
}

func (s *FileStore) SetCredentials(c Credentials) error {
	if c.AccessToken == "" || c.RefreshToken == "" {
		return fmt.Errorf("refusing to store a partial token pair")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = c.AccessToken
	s.state.RefreshToken = c.RefreshToken
	return s.persistLocked()
}

func (s *FileStore) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return User{}, false
	}
	return *s.state.User, true
}

func (s *FileStore) SetUser(u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = &u
	return s.persistLocked()
}

// Clear wipes tokens and cached profile as a unit.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state{}
	return s.persistLocked()
}

func (s *FileStore) persistLocked() error {
	data, err := json.MarshalIndent(&s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	dir := filepath.Dir(s.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	// Write-then-rename so a crash mid-write cannot leave a torn file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// MemoryStore keeps session state in memory only. Used by tests and
// one-shot invocations that must not touch the user's session file.
type MemoryStore struct {
	mu    sync.Mutex
	state state
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Credentials() (Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.AccessToken == "" {
		return Credentials{}, false
	}
	return Credentials{AccessToken: s.state.AccessToken, RefreshToken: s.state.RefreshToken}, true
}

func (s *MemoryStore) SetCredentials(c Credentials) error {
	if c.AccessToken == "" || c.RefreshToken == "" {
		return fmt.Errorf("refusing to store a partial token pair")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = c.AccessToken
	s.state.RefreshToken = c.RefreshToken
	return nil
}

func (s *MemoryStore) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return User{}, false
	}
	return *s.state.User, true
}

func (s *MemoryStore) SetUser(u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = &u
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state{}
	return nil
}
