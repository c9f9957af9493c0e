package app

import (
	"context"
	"log"
	"sync"
	"time"

	"gift-experience-service/internal/domain"
)

// DefaultRevealInterval is the delay between two revealed characters.
const DefaultRevealInterval = 50 * time.Millisecond

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithRevealInterval sets the per-character delay. Zero or less reveals text instantly.
func WithRevealInterval(d time.Duration) Option {
	return func(s *Sequencer) { s.interval = d }
}

// WithTicker replaces the ticker source; tests use it to step reveals by hand.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(s *Sequencer) { s.newTicker = newTicker }
}

// WithSoundPlayer sets where sound effects go.
func WithSoundPlayer(p SoundPlayer) Option {
	return func(s *Sequencer) {
		if p != nil {
			s.sounds = p
		}
	}
}

// Sequencer walks one visitor through the script:
// intro lines -> gift box -> quiz intro -> quiz -> result (-> quiz on retake).
// Every user event and every reveal tick is applied under one lock, so state
// changes are strictly sequential.
type Sequencer struct {
	script    domain.Script
	flag      OverlayFlag
	interval  time.Duration
	newTicker func(time.Duration) Ticker
	sounds    SoundPlayer

	mu           sync.Mutex
	closed       bool
	stage        domain.Stage
	line         int
	reveal       reveal
	showOverlay  bool
	overlaySaved bool
	showDetail   bool
	scorer       *Scorer
	subscribers  map[chan domain.Snapshot]struct{}
}

// NewSequencer builds a sequencer for script. The overlay flag is read once here.
func NewSequencer(ctx context.Context, script domain.Script, flag OverlayFlag, opts ...Option) *Sequencer {
	s := &Sequencer{
		script:      script,
		flag:        flag,
		interval:    DefaultRevealInterval,
		newTicker:   newTimeTicker,
		sounds:      NopPlayer{},
		stage:       domain.StageIntro,
		scorer:      NewScorer(script.Questions),
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	seen, err := flag.Dismissed(ctx)
	if err != nil {
		log.Printf("overlay flag unavailable, showing overlay: %v", err)
	}
	s.showOverlay = !seen
	s.overlaySaved = seen

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.showOverlay {
		s.reveal.set(script.Lines[0].Text)
	} else {
		s.startRevealLocked(script.Lines[0].Text)
	}
	return s
}

// Advance is the generic tap. It finishes a running reveal, or else moves to
// the next intro line, or from the last intro line to the gift box. It does
// nothing in any other stage.
func (s *Sequencer) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.showOverlay {
		return
	}
	if s.reveal.active {
		s.finishRevealLocked()
		s.broadcastLocked()
		return
	}

	// Music may have been blocked on an earlier tap; asking again is harmless.
	s.sounds.Loop(domain.ClipBackground)

	if s.stage != domain.StageIntro {
		return
	}
	if s.line < len(s.script.Lines)-1 {
		s.line++
		s.startRevealLocked(s.script.Lines[s.line].Text)
	} else {
		s.transitionLocked(domain.StageGiftBox)
	}
	s.broadcastLocked()
}

// SkipReveal shows the whole current text at once.
func (s *Sequencer) SkipReveal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.reveal.active {
		return
	}
	s.finishRevealLocked()
	s.broadcastLocked()
}

// OpenGift reacts to a click on the gift box.
func (s *Sequencer) OpenGift() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.transitionLocked(domain.StageQuizIntro) {
		return
	}
	s.sounds.Play(domain.ClipPop)
	s.startRevealLocked(s.script.QuizIntro)
	s.broadcastLocked()
}

// StartQuiz leaves the quiz intro, cutting its reveal short if needed.
func (s *Sequencer) StartQuiz() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.stage != domain.StageQuizIntro {
		return
	}
	s.transitionLocked(domain.StageQuiz)
	s.sounds.Play(domain.ClipClick)
	s.finishRevealLocked()
	s.broadcastLocked()
}

// SelectOption answers the active question. Answers for any other question
// are ignored.
func (s *Sequencer) SelectOption(questionIndex, optionIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.stage != domain.StageQuiz {
		return
	}
	resolved, accepted := s.scorer.Select(questionIndex, optionIndex)
	if !accepted {
		return
	}
	s.sounds.Play(domain.ClipClick)
	if resolved {
		s.showDetail = false
		s.transitionLocked(domain.StageResult)
	}
	s.broadcastLocked()
}

// ShowDetail opens the description of the resolved class.
func (s *Sequencer) ShowDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.stage != domain.StageResult || s.showDetail {
		return
	}
	s.sounds.Play(domain.ClipClick)
	s.showDetail = true
	s.broadcastLocked()
}

// Retake goes back to the first question with an empty tally. It is only
// offered from the class detail view.
func (s *Sequencer) Retake() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.stage != domain.StageResult || !s.showDetail {
		return
	}
	s.transitionLocked(domain.StageQuiz)
	s.sounds.Play(domain.ClipClick)
	s.showDetail = false
	s.scorer.Reset()
	s.broadcastLocked()
}

// DismissOverlay hides the onboarding overlay and persists that it was seen.
// The overlay stays hidden even if persisting fails.
func (s *Sequencer) DismissOverlay(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || !s.showOverlay {
		s.mu.Unlock()
		return nil
	}
	s.showOverlay = false
	persist := !s.overlaySaved
	s.overlaySaved = true
	if s.stage == domain.StageIntro && s.line == 0 {
		s.startRevealLocked(s.script.Lines[0].Text)
	}
	s.broadcastLocked()
	s.mu.Unlock()

	if !persist {
		return nil
	}
	return s.flag.Dismiss(ctx)
}

// Stage returns the active stage.
func (s *Sequencer) Stage() domain.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Celebrating reports whether the celebratory effect should be on.
func (s *Sequencer) Celebrating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.celebratingLocked()
}

// Snapshot returns the current render model.
func (s *Sequencer) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel of snapshots, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Sequencer) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the reveal and ends all subscriptions. Later calls are no-ops.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.reveal.stop()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Sequencer) transitionLocked(to domain.Stage) bool {
	if !domain.CanTransition(s.stage, to) {
		return false
	}
	s.stage = to
	return true
}

func (s *Sequencer) celebratingLocked() bool {
	switch s.stage {
	case domain.StageResult:
		return true
	case domain.StageIntro:
		return !s.showOverlay && s.script.Lines[s.line].Celebrate
	}
	return false
}

func (s *Sequencer) broadcastLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Slow consumer: replace the oldest pending snapshot with the newest.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Sequencer) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		Stage:         s.stage,
		ShowOverlay:   s.showOverlay,
		LineIndex:     s.line,
		LineCount:     len(s.script.Lines),
		QuestionCount: len(s.script.Questions),
		Tally:         s.scorer.Tally(),
		Celebrating:   s.celebratingLocked(),
	}

	switch s.stage {
	case domain.StageIntro:
		snap.Text = s.reveal.displayed()
		snap.Image = s.script.Lines[s.line].Image
		snap.Typing = s.reveal.active
	case domain.StageQuizIntro:
		snap.Text = s.reveal.displayed()
		snap.Typing = s.reveal.active
	case domain.StageQuiz:
		idx := s.scorer.Index()
		q := s.script.Questions[idx]
		view := &domain.QuestionView{Index: idx, Prompt: q.Prompt}
		for _, o := range q.Options {
			view.Options = append(view.Options, o.Text)
		}
		snap.Question = view
	case domain.StageResult:
		category, _ := s.scorer.Result()
		result := &domain.ResultView{Category: category}
		if s.showDetail {
			detail := s.script.Classes[category]
			result.Detail = &detail
		}
		snap.Result = result
	}
	return snap
}
