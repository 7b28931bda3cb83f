package game

import "strings"

// Question deadline bounds in seconds.
const (
	DefaultTimeLimit = 20
	MinTimeLimit     = 5
	MaxTimeLimit     = 60
)

// OptionCount is fixed: answers are reported as an index into four options.
const OptionCount = 4

// Question is one quiz question as accepted from the admin surface.
type Question struct {
	Text      string   `json:"text"`
	Options   []string `json:"options"`
	Correct   int      `json:"correct"`
	TimeLimit int      `json:"time_limit"`
}

// Normalize trims fields and applies the default time limit when the admin
// surface omitted it.
func (q *Question) Normalize() {
	q.Text = strings.TrimSpace(q.Text)
	for i, opt := range q.Options {
		q.Options[i] = strings.TrimSpace(opt)
	}
	if q.TimeLimit == 0 {
		q.TimeLimit = DefaultTimeLimit
	}
}

// Validate checks text, option count and content, correct index and the
// deadline range.
func (q Question) Validate() error {
	if q.Text == "" {
		return ErrQuestionText
	}
	if len(q.Options) != OptionCount {
		return ErrQuestionOptions
	}
	for _, opt := range q.Options {
		if opt == "" {
			return ErrQuestionOptions
		}
	}
	if q.Correct < 0 || q.Correct >= OptionCount {
		return ErrQuestionCorrect
	}
	if q.TimeLimit < MinTimeLimit || q.TimeLimit > MaxTimeLimit {
		return ErrQuestionTime
	}
	return nil
}

// QuestionView is the player-facing shape: the correct index stays hidden.
type QuestionView struct {
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Deadline int      `json:"deadline"`
}

// View returns the player-facing shape of the question.
func (q Question) View() QuestionView {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return QuestionView{Text: q.Text, Options: opts, Deadline: q.TimeLimit}
}

// Bank is the ordered question list owned by one room. Like the roster it
// relies on the room lock; the room additionally enforces that mutations
// only happen in the lobby phase.
type Bank struct {
	questions []Question
}

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{}
}

// Append adds a normalized, validated question to the end.
func (b *Bank) Append(q Question) error {
	q.Normalize()
	if err := q.Validate(); err != nil {
		return err
	}
	b.questions = append(b.questions, q)
	return nil
}

// List returns a copy of all questions.
func (b *Bank) List() []Question {
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Count returns the number of questions.
func (b *Bank) Count() int {
	return len(b.questions)
}

// Get returns the question at index.
func (b *Bank) Get(index int) (Question, error) {
	if index < 0 || index >= len(b.questions) {
		return Question{}, ErrQuestionIndex
	}
	return b.questions[index], nil
}

// RemoveAt deletes the question at index, keeping order.
func (b *Bank) RemoveAt(index int) error {
	if index < 0 || index >= len(b.questions) {
		return ErrQuestionIndex
	}
	b.questions = append(b.questions[:index], b.questions[index+1:]...)
	return nil
}

// Clear removes every question.
func (b *Bank) Clear() {
	b.questions = nil
}
