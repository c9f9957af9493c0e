package domain

// Stage identifies which screen of the experience is active.
type Stage string

const (
	StageIntro     Stage = "intro"
	StageGiftBox   Stage = "giftBox"
	StageQuizIntro Stage = "quizIntro"
	StageQuiz      Stage = "quiz"
	StageResult    Stage = "result"
)

var transitions = map[Stage]Stage{
	StageIntro:     StageGiftBox,
	StageGiftBox:   StageQuizIntro,
	StageQuizIntro: StageQuiz,
	StageQuiz:      StageResult,
}

// CanTransition reports whether moving from one stage to another is legal.
// Result -> Quiz is the retake loop; every other move goes one step forward.
func CanTransition(from, to Stage) bool {
	if from == StageResult && to == StageQuiz {
		return true
	}
	next, ok := transitions[from]
	return ok && next == to
}

// Category is a quiz outcome.
type Category string

const (
	CategoryPainting  Category = "Painting"
	CategoryThrowing  Category = "Throwing"
	CategoryHandbuilt Category = "Handbuilt"
	CategoryCombine   Category = "Combine"
)

// Categories is the fixed enumeration order. Ties resolve to the earliest entry.
var Categories = []Category{
	CategoryPainting,
	CategoryThrowing,
	CategoryHandbuilt,
	CategoryCombine,
}

// Known reports whether c is one of Categories.
func (c Category) Known() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// Tally counts answers per category.
type Tally map[Category]int

// NewTally returns a tally with every known category at zero.
func NewTally() Tally {
	t := make(Tally, len(Categories))
	for _, c := range Categories {
		t[c] = 0
	}
	return t
}

// Sum returns the number of answers counted.
func (t Tally) Sum() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Clone copies the tally so snapshots never share the live map.
func (t Tally) Clone() Tally {
	out := make(Tally, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Clip names a sound effect the client knows how to play.
type Clip string

const (
	ClipClick      Clip = "click"
	ClipPop        Clip = "pop"
	ClipTyping     Clip = "typing"
	ClipBackground Clip = "background"
)

// Line is one typed-out intro message.
type Line struct {
	Text      string `json:"text" yaml:"text"`
	Image     string `json:"image,omitempty" yaml:"image,omitempty"`
	Celebrate bool   `json:"celebrate,omitempty" yaml:"celebrate,omitempty"`
}

// Option is a quiz answer and the category it votes for.
type Option struct {
	Text     string   `json:"text" yaml:"text"`
	Category Category `json:"category" yaml:"category"`
}

// Question is a quiz prompt with its ordered options.
type Question struct {
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Options []Option `json:"options" yaml:"options"`
}

// ClassDetail describes the gift behind a category.
type ClassDetail struct {
	Description string   `json:"description" yaml:"description"`
	Items       []string `json:"items" yaml:"items"`
	Image       string   `json:"image,omitempty" yaml:"image,omitempty"`
}

// Script is the whole experience content. It is immutable once loaded.
type Script struct {
	ID        string                   `json:"id" yaml:"id"`
	Lines     []Line                   `json:"lines" yaml:"lines"`
	QuizIntro string                   `json:"quizIntro" yaml:"quizIntro"`
	Questions []Question               `json:"questions" yaml:"questions"`
	Classes   map[Category]ClassDetail `json:"classes" yaml:"classes"`
}

// Validate checks that the script can drive a full run.
func (s Script) Validate() error {
	if len(s.Lines) == 0 {
		return invalidScript("script has no lines")
	}
	if len(s.Questions) == 0 {
		return invalidScript("script has no questions")
	}
	for i, q := range s.Questions {
		if len(q.Options) == 0 {
			return invalidScript("question %d has no options", i)
		}
		for j, o := range q.Options {
			if !o.Category.Known() {
				return invalidScript("question %d option %d: unknown category %q", i, j, o.Category)
			}
		}
	}
	for _, c := range Categories {
		if _, ok := s.Classes[c]; !ok {
			return invalidScript("missing class detail for %s", c)
		}
	}
	return nil
}

// QuestionView is what a client needs to render the active question.
type QuestionView struct {
	Index   int      `json:"index"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// ResultView is the resolved category and, once opened, its detail.
type ResultView struct {
	Category Category     `json:"category"`
	Detail   *ClassDetail `json:"detail,omitempty"`
}

// Snapshot is the render model of a running experience.
type Snapshot struct {
	Stage         Stage         `json:"stage"`
	ShowOverlay   bool          `json:"showOverlay"`
	LineIndex     int           `json:"lineIndex"`
	LineCount     int           `json:"lineCount"`
	Text          string        `json:"text"`
	Image         string        `json:"image,omitempty"`
	Typing        bool          `json:"typing"`
	QuestionCount int           `json:"questionCount"`
	Question      *QuestionView `json:"question,omitempty"`
	Tally         Tally         `json:"tally"`
	Result        *ResultView   `json:"result,omitempty"`
	Celebrating   bool          `json:"celebrating"`
}
