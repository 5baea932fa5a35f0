// Package registry remembers which chat users have messaged the bot
// privately. The bot can only send private messages (role notices, night
// prompts) to users who did, so joining a game requires a registration.
package registry

import (
	"context"
	"fmt"
	"sync"
)

// Store is an append-only set of registered external chat ids
type Store interface {
	HasRegistered(ctx context.Context, id int64) (bool, error)
	// Register adds id and reports whether it was new
	Register(ctx context.Context, id int64) (bool, error)
	Close() error
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open opens the store for the configured backend
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendFile:
		s, err := OpenFile(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown registry backend %q", backend)
	}
}

// MemoryStore keeps registrations in memory only
type MemoryStore struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(ids ...int64) *MemoryStore {
	s := &MemoryStore{ids: make(map[int64]struct{})}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *MemoryStore) HasRegistered(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok, nil
}

func (s *MemoryStore) Register(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false, nil
	}
	s.ids[id] = struct{}{}
	return true, nil
}

func (s *MemoryStore) Close() error { return nil }
