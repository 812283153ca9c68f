package client

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
)

// Session is the signed-in state a caller passes to every authenticated
// request.
type Session struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
	UserID       string `json:"userId"`
	Name         string `json:"name,omitempty"`
	IsAdmin      bool   `json:"isAdmin,omitempty"`
}

// Valid reports whether s can authenticate a request.
func (s *Session) Valid() bool {
	return s != nil && s.Token != ""
}

// SessionStore persists a Session between runs. Load returns (nil, nil) when
// nothing is stored.
type SessionStore interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// FileSessionStore keeps the session as JSON in a single file.
type FileSessionStore struct {
	Path string
}

// DefaultSessionPath is $XDG_CONFIG_HOME/mamacare/session.json.
func DefaultSessionPath() (string, error) {
	p, err := xdg.ConfigFile(filepath.Join("mamacare", "session.json"))
	if err != nil {
		return "", errors.Wrap(err, "resolve session path")
	}
	return p, nil
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{Path: path}
}

func (f *FileSessionStore) Load(ctx context.Context) (*Session, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read session %s", f.Path)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrapf(err, "decode session %s", f.Path)
	}
	return &s, nil
}

func (f *FileSessionStore) Save(ctx context.Context, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return errors.Wrap(err, "create session dir")
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return errors.Wrapf(err, "write session %s", tmp)
	}
	return errors.Wrap(os.Rename(tmp, f.Path), "replace session file")
}

func (f *FileSessionStore) Clear(ctx context.Context) error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "remove session %s", f.Path)
	}
	return nil
}

// MemorySessionStore holds the session in process memory.
type MemorySessionStore struct {
	mu sync.Mutex
	s  *Session
}

func (m *MemorySessionStore) Load(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return nil, nil
	}
	cp := *m.s
	return &cp, nil
}

func (m *MemorySessionStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.s = &cp
	return nil
}

func (m *MemorySessionStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.s = nil
	m.mu.Unlock()
	return nil
}
