package redis

import (
	"context"
	"sync"
	"time"

	"gift-experience-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sequencers hold timers and subscribers, so they stay in a local map; Redis
// only carries a liveness marker per session so operators can count running
// experiences across instances.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Sequencer
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Sequencer),
	}
}

func (s *SessionStore) Put(sessionID string, seq *app.Sequencer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = seq
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(sessionID), "1", s.ttl).Err()
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
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "experience:session:" + sessionID
}
