package app

import (
	"context"

	"gift-experience-service/internal/domain"
	"github.com/google/uuid"
)

// SessionRepository tracks running experiences (in-memory, Redis, etc).
type SessionRepository interface {
	Put(sessionID string, seq *Sequencer)
	Get(sessionID string) (*Sequencer, bool)
	Delete(sessionID string)
}

// ScriptRepository loads script content (from cache/backing store).
type ScriptRepository interface {
	GetScript(ctx context.Context, scriptID string) (domain.Script, error)
}

// ExperienceService starts and ends one experience per visitor connection.
type ExperienceService struct {
	sessions SessionRepository
	scripts  ScriptRepository
	flags    FlagStore
	defaults []Option
	newID    func() string
}

// NewExperienceService wires the stores together. opts apply to every sequencer
// it starts, before any per-call options.
func NewExperienceService(sessions SessionRepository, scripts ScriptRepository, flags FlagStore, opts ...Option) *ExperienceService {
	return &ExperienceService{
		sessions: sessions,
		scripts:  scripts,
		flags:    flags,
		defaults: opts,
		newID:    uuid.NewString,
	}
}

// Start loads the script, reads the visitor's overlay flag and registers a new
// sequencer under a fresh session id.
func (s *ExperienceService) Start(ctx context.Context, scriptID, visitorID string, opts ...Option) (string, *Sequencer, error) {
	script, err := s.scripts.GetScript(ctx, scriptID)
	if err != nil {
		return "", nil, err
	}

	all := make([]Option, 0, len(s.defaults)+len(opts))
	all = append(all, s.defaults...)
	all = append(all, opts...)

	seq := NewSequencer(ctx, script, NewOverlayFlag(s.flags, visitorID), all...)
	id := s.newID()
	s.sessions.Put(id, seq)
	return id, seq, nil
}

// Get returns a running experience.
func (s *ExperienceService) Get(sessionID string) (*Sequencer, error) {
	seq, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return seq, nil
}

// End stops the experience and forgets it. Unknown ids are ignored.
func (s *ExperienceService) End(sessionID string) {
	seq, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	seq.Close()
	s.sessions.Delete(sessionID)
}
