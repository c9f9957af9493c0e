package memory

import (
	"context"
	"sync"
)

// FlagStore keeps flags for the life of the process.
type FlagStore struct {
	mu    sync.RWMutex
	flags map[string]bool
}

func NewFlagStore() *FlagStore {
	return &FlagStore{flags: make(map[string]bool)}
}

func (s *FlagStore) Get(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[key], nil
}

func (s *FlagStore) Set(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[key] = true
	return nil
}
