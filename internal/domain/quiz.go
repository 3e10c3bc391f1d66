package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OptionsPerQuestion is the fixed number of options every quiz question offers.
const OptionsPerQuestion = 4

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Validate checks the question invariants: non-empty text, exactly four
// non-empty options and a correct answer that indexes them.
func (q QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return NewValidationError("question", "cannot be empty", nil)
	}
	if len(q.Options) != OptionsPerQuestion {
		return NewValidationError("options",
			fmt.Sprintf("must contain exactly %d entries, got %d", OptionsPerQuestion, len(q.Options)), nil)
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return NewValidationError(fmt.Sprintf("options[%d]", i), "cannot be empty", nil)
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return NewValidationError("correctAnswer",
			fmt.Sprintf("must be between 0 and %d", len(q.Options)-1), ErrAnswerOutOfRange)
	}
	return nil
}

// ValidateQuestions validates a question set for a new session.
func ValidateQuestions(questions []QuizQuestion) error {
	if len(questions) == 0 {
		return ErrEmptyQuiz
	}
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

// Answer is the option chosen for a question, or Unanswered.
// It serializes as a JSON number, or null when unanswered.
type Answer int

// Unanswered marks a question slot with no chosen option.
const Unanswered Answer = -1

// IsAnswered reports whether an option has been chosen.
func (a Answer) IsAnswered() bool {
	return a >= 0
}

// MarshalJSON implements json.Marshaler.
func (a Answer) MarshalJSON() ([]byte, error) {
	if !a.IsAnswered() {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(a))), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Answer) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = Unanswered
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: answer must be an integer or null", ErrValidation)
	}
	if n < 0 {
		*a = Unanswered
		return nil
	}
	*a = Answer(n)
	return nil
}

// SessionState is the lifecycle position of the quiz session store.
type SessionState string

const (
	SessionIdle       SessionState = "idle"
	SessionInProgress SessionState = "in_progress"
	SessionCompleted  SessionState = "completed"
)

// QuizSession is one attempt at a quiz.
type QuizSession struct {
	ID              string         `json:"id"`
	Subject         string         `json:"subject"`
	Questions       []QuizQuestion `json:"questions"`
	Answers         []Answer       `json:"answers"`
	CurrentQuestion int            `json:"currentQuestion"`
	Completed       bool           `json:"completed"`
	Score           int            `json:"score"`
	Date            time.Time      `json:"date"`
}

// NewQuizSession builds a fresh, unanswered session. The caller is expected
// to have validated questions.
func NewQuizSession(subject string, questions []QuizQuestion, now time.Time) QuizSession {
	qs := make([]QuizQuestion, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		if strings.TrimSpace(q.ID) == "" {
			q.ID = strconv.Itoa(i + 1)
		}
		qs[i] = q
	}

	answers := make([]Answer, len(qs))
	for i := range answers {
		answers[i] = Unanswered
	}

	return QuizSession{
		ID:              uuid.NewString(),
		Subject:         subject,
		Questions:       qs,
		Answers:         answers,
		CurrentQuestion: 0,
		Completed:       false,
		Score:           0,
		Date:            now.UTC(),
	}
}

// Validate checks a session read back from storage: a valid question set,
// one answer slot per question within the question's options, a cursor on an
// existing question and a score between 0 and 100.
func (s QuizSession) Validate() error {
	if err := ValidateQuestions(s.Questions); err != nil {
		if errors.Is(err, ErrValidation) {
			return err
		}
		return NewValidationError("questions", err.Error(), err)
	}
	if len(s.Answers) != len(s.Questions) {
		return NewValidationError("answers",
			fmt.Sprintf("must have %d entries, got %d", len(s.Questions), len(s.Answers)), nil)
	}
	for i, a := range s.Answers {
		if a.IsAnswered() && int(a) >= len(s.Questions[i].Options) {
			return NewValidationError(fmt.Sprintf("answers[%d]", i),
				fmt.Sprintf("must be between 0 and %d", len(s.Questions[i].Options)-1), ErrAnswerOutOfRange)
		}
	}
	if s.CurrentQuestion < 0 || s.CurrentQuestion >= len(s.Questions) {
		return NewValidationError("currentQuestion",
			fmt.Sprintf("must be between 0 and %d", len(s.Questions)-1), ErrQuestionOutOfRange)
	}
	if s.Score < 0 || s.Score > 100 {
		return NewValidationError("score", "must be between 0 and 100", nil)
	}
	return nil
}

// State reports InProgress or Completed for an existing session.
func (s QuizSession) State() SessionState {
	if s.Completed {
		return SessionCompleted
	}
	return SessionInProgress
}

// CorrectCount counts answers that match their question's correct answer.
// Unanswered slots never match.
func (s QuizSession) CorrectCount() int {
	correct := 0
	for i, q := range s.Questions {
		if i >= len(s.Answers) {
			break
		}
		if a := s.Answers[i]; a.IsAnswered() && int(a) == q.CorrectAnswer {
			correct++
		}
	}
	return correct
}

// ComputeScore returns the rounded percentage of correct answers.
func (s QuizSession) ComputeScore() int {
	if len(s.Questions) == 0 {
		return 0
	}
	return int(math.Round(float64(s.CorrectCount()) / float64(len(s.Questions)) * 100))
}

// IsLastQuestion reports whether the cursor sits on the final question.
func (s QuizSession) IsLastQuestion() bool {
	return s.CurrentQuestion >= len(s.Questions)-1
}

// Clone returns a deep copy so callers cannot mutate store-owned slices.
func (s QuizSession) Clone() QuizSession {
	c := s
	c.Questions = make([]QuizQuestion, len(s.Questions))
	for i, q := range s.Questions {
		q.Options = append([]string(nil), q.Options...)
		c.Questions[i] = q
	}
	c.Answers = append([]Answer(nil), s.Answers...)
	return c
}

// ScoreBand is a coarse grading of a completed quiz score.
type ScoreBand string

const (
	ScoreExcellent     ScoreBand = "excellent"
	ScoreGood          ScoreBand = "good"
	ScoreNeedsPractice ScoreBand = "needs_practice"
)

// BandForScore grades a percentage score.
func BandForScore(score int) ScoreBand {
	switch {
	case score >= 90:
		return ScoreExcellent
	case score >= 70:
		return ScoreGood
	default:
		return ScoreNeedsPractice
	}
}
