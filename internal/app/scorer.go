package app

import "gift-experience-service/internal/domain"

// Scorer tallies one answer per question, in order, and resolves the winning category.
type Scorer struct {
	questions []domain.Question
	index     int
	tally     domain.Tally
	result    domain.Category
	resolved  bool
}

func NewScorer(questions []domain.Question) *Scorer {
	return &Scorer{questions: questions, tally: domain.NewTally()}
}

// Select records the answer for questionIndex. Only the active question is
// accepted; anything else is ignored. resolved is true once the last question
// has been answered.
func (s *Scorer) Select(questionIndex, optionIndex int) (resolved, accepted bool) {
	if s.resolved || questionIndex != s.index || questionIndex >= len(s.questions) {
		return s.resolved, false
	}
	options := s.questions[questionIndex].Options
	if optionIndex < 0 || optionIndex >= len(options) {
		return false, false
	}

	s.tally[options[optionIndex].Category]++
	if s.index < len(s.questions)-1 {
		s.index++
		return false, true
	}

	s.result = ResolveTally(s.tally)
	s.resolved = true
	return true, true
}

// Reset starts the quiz over.
func (s *Scorer) Reset() {
	s.index = 0
	s.tally = domain.NewTally()
	s.result = ""
	s.resolved = false
}

// Index is the active question.
func (s *Scorer) Index() int { return s.index }

// Tally returns a copy of the running counts.
func (s *Scorer) Tally() domain.Tally { return s.tally.Clone() }

// Result returns the resolved category, if any.
func (s *Scorer) Result() (domain.Category, bool) { return s.result, s.resolved }

// ResolveTally picks the category with the highest count. Ties go to the
// category listed first in domain.Categories.
func ResolveTally(tally domain.Tally) domain.Category {
	winner := domain.Categories[0]
	for _, c := range domain.Categories[1:] {
		if tally[c] > tally[winner] {
			winner = c
		}
	}
	return winner
}
