package store

import (
	"errors"
	"sort"
	"sync"

	"burningtown/internal/game"
)

var (
	ErrTooManyGames = errors.New("too many games in progress")
	ErrGameNotFound = errors.New("no game in this chat")
)

// MemoryStore holds one session per group chat, in memory only
type MemoryStore struct {
	mu         sync.RWMutex
	sessions   map[int64]*game.Session
	maxGames   int
	minPlayers int
}

// NewMemoryStore creates a store allowing at most maxGames concurrent games
func NewMemoryStore(maxGames, minPlayers int) *MemoryStore {
	if maxGames < 1 {
		maxGames = 1
	}
	return &MemoryStore{
		sessions:   make(map[int64]*game.Session),
		maxGames:   maxGames,
		minPlayers: minPlayers,
	}
}

// OpenSession starts recruiting in groupID. An existing, non-idle session
// is returned unchanged with ok=false.
func (s *MemoryStore) OpenSession(groupID int64) (session *game.Session, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, exists := s.sessions[groupID]; exists && existing.Status() != game.StatusIdle {
		return existing, false, nil
	}
	if s.countOpen() >= s.maxGames {
		return nil, false, ErrTooManyGames
	}

	session = game.NewSession(groupID, s.minPlayers)
	if err := session.OpenRecruiting(); err != nil {
		return nil, false, err
	}
	s.sessions[groupID] = session
	return session, true, nil
}

func (s *MemoryStore) countOpen() int {
	count := 0
	for _, session := range s.sessions {
		if session.Status() != game.StatusIdle {
			count++
		}
	}
	return count
}

// GetSession retrieves the session of a group chat
func (s *MemoryStore) GetSession(groupID int64) (*game.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[groupID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return session, nil
}

// FindActiveByPlayer returns the active session the player takes part in
func (s *MemoryStore) FindActiveByPlayer(playerID int64) (*game.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.Status() == game.StatusActive && session.Player(playerID) != nil {
			return session, true
		}
	}
	return nil, false
}

// PlayingElsewhere reports whether the player is in a non-idle session of
// a group other than groupID. Joins are refused in that case, so a private
// message always belongs to a single game.
func (s *MemoryStore) PlayingElsewhere(playerID, groupID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, session := range s.sessions {
		if id != groupID && session.Status() != game.StatusIdle && session.Player(playerID) != nil {
			return true
		}
	}
	return false
}

// ResetSession resets session and forgets it. A newer session opened in
// the same group is left alone.
func (s *MemoryStore) ResetSession(session *game.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.Reset()
	if current, exists := s.sessions[session.GroupID]; exists && current == session {
		delete(s.sessions, session.GroupID)
	}
}

// Snapshots returns the public state of every session, ordered by group
func (s *MemoryStore) Snapshots() []game.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := make([]game.Snapshot, 0, len(s.sessions))
	for _, session := range s.sessions {
		snaps = append(snaps, session.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].GroupID < snaps[j].GroupID })
	return snaps
}
