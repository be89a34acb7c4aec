package memory

import (
	"sync"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"
)

// Store keeps catalog definitions and participant sessions in process memory.
type Store struct {
	txMu sync.Mutex

	mu       sync.RWMutex
	catalog  map[string]game.Definition
	sessions map[sessionKey]ports.ParticipantSession
}

type sessionKey struct {
	matchID  string
	nickname string
}

func NewStore() *Store {
	return &Store{
		catalog:  make(map[string]game.Definition),
		sessions: make(map[sessionKey]ports.ParticipantSession),
	}
}

type storeState struct {
	catalog  map[string]game.Definition
	sessions map[sessionKey]ports.ParticipantSession
}

func (s *Store) snapshot() storeState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := storeState{
		catalog:  make(map[string]game.Definition, len(s.catalog)),
		sessions: make(map[sessionKey]ports.ParticipantSession, len(s.sessions)),
	}
	for k, v := range s.catalog {
		st.catalog[k] = v
	}
	for k, v := range s.sessions {
		st.sessions[k] = v
	}
	return st
}

func (s *Store) restore(st storeState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = st.catalog
	s.sessions = st.sessions
}
