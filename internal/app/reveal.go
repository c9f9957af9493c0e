package app

import (
	"context"
	"time"

	"gift-experience-service/internal/domain"
)

// Ticker drives a reveal. *time.Ticker satisfies it through newTimeTicker.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// reveal is the character-by-character display of one text. At most one
// reveal task runs per sequencer; gen tells a stale tick from a live one.
type reveal struct {
	text   []rune
	shown  int
	active bool
	gen    uint64
	cancel context.CancelFunc
}

// set shows text in full without animating it.
func (r *reveal) set(text string) {
	r.stop()
	r.gen++
	r.text = []rune(text)
	r.shown = len(r.text)
}

func (r *reveal) stop() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.active = false
}

func (r *reveal) displayed() string {
	return string(r.text[:r.shown])
}

// startRevealLocked cancels any running reveal and starts typing text from zero.
func (s *Sequencer) startRevealLocked(text string) {
	s.reveal.set(text)
	if s.interval <= 0 || len(s.reveal.text) == 0 {
		return
	}
	s.reveal.shown = 0
	s.reveal.active = true

	ctx, cancel := context.WithCancel(context.Background())
	s.reveal.cancel = cancel
	go s.runReveal(ctx, s.reveal.gen, s.newTicker(s.interval))
}

// finishRevealLocked shows the full text and stops the running reveal, if any.
func (s *Sequencer) finishRevealLocked() {
	wasActive := s.reveal.active
	s.reveal.stop()
	s.reveal.shown = len(s.reveal.text)
	if wasActive {
		s.sounds.Pause(domain.ClipTyping)
	}
}

func (s *Sequencer) runReveal(ctx context.Context, gen uint64, t Ticker) {
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if !s.revealStep(gen) {
				return
			}
		}
	}
}

// revealStep shows one more character and reports whether the reveal continues.
func (s *Sequencer) revealStep(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.reveal.gen || !s.reveal.active {
		return false
	}

	s.reveal.shown++
	s.sounds.Play(domain.ClipTyping)
	done := s.reveal.shown >= len(s.reveal.text)
	if done {
		s.finishRevealLocked()
	}
	s.broadcastLocked()
	return !done
}
