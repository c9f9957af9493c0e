package memory

import (
	"sync"

	"gift-experience-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Sequencer
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Sequencer),
	}
}

func (s *SessionStore) Put(sessionID string, seq *app.Sequencer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = seq
}

func (s *SessionStore) Get(sessionID string) (*app.Sequencer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq, ok := s.sessions[sessionID]
	return seq, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len reports how many experiences are running.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
