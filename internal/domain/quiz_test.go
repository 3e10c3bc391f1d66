package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func validQuestion(correct int) QuizQuestion {
	return QuizQuestion{
		ID:            "q",
		Question:      "What is 2 + 2?",
		Options:       []string{"3", "4", "5", "22"},
		CorrectAnswer: correct,
		Explanation:   "Two plus two is four.",
	}
}

func TestQuizQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *QuizQuestion)
		wantErr bool
	}{
		{"valid", func(q *QuizQuestion) {}, false},
		{"empty question", func(q *QuizQuestion) { q.Question = "  " }, true},
		{"three options", func(q *QuizQuestion) { q.Options = q.Options[:3] }, true},
		{"five options", func(q *QuizQuestion) { q.Options = append(q.Options, "6") }, true},
		{"blank option", func(q *QuizQuestion) { q.Options[2] = "" }, true},
		{"negative answer", func(q *QuizQuestion) { q.CorrectAnswer = -1 }, true},
		{"answer past options", func(q *QuizQuestion) { q.CorrectAnswer = 4 }, true},
		{"empty explanation allowed", func(q *QuizQuestion) { q.Explanation = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion(1)
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestValidateQuestions(t *testing.T) {
	if err := ValidateQuestions(nil); !errors.Is(err, ErrEmptyQuiz) {
		t.Errorf("Expected ErrEmptyQuiz, got %v", err)
	}

	bad := validQuestion(9)
	err := ValidateQuestions([]QuizQuestion{validQuestion(0), bad})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if vErr.Field != "correctAnswer" {
		t.Errorf("Expected correctAnswer field, got %q", vErr.Field)
	}
}

func TestAnswerJSON(t *testing.T) {
	answers := []Answer{Unanswered, 2, 0}
	data, err := json.Marshal(answers)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "[null,2,0]" {
		t.Errorf("Expected [null,2,0], got %s", data)
	}

	var decoded []Answer
	if err := json.Unmarshal([]byte(`[1,null,3]`), &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded[0] != 1 || decoded[1] != Unanswered || decoded[2] != 3 {
		t.Errorf("Unexpected decoded answers %v", decoded)
	}

	var bad []Answer
	if err := json.Unmarshal([]byte(`["a"]`), &bad); err == nil {
		t.Error("Expected error for non-integer answer")
	}
}

func TestNewQuizSession(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	q := validQuestion(1)
	q.ID = ""
	questions := []QuizQuestion{q, validQuestion(2)}

	s := NewQuizSession("Mathematics", questions, now)

	if s.ID == "" {
		t.Error("Expected session ID")
	}
	if len(s.Answers) != 2 || s.Answers[0] != Unanswered || s.Answers[1] != Unanswered {
		t.Errorf("Expected two unanswered slots, got %v", s.Answers)
	}
	if s.CurrentQuestion != 0 || s.Completed || s.Score != 0 {
		t.Errorf("Unexpected initial session state %+v", s)
	}
	if !s.Date.Equal(now) {
		t.Errorf("Expected date %v, got %v", now, s.Date)
	}
	if s.Questions[0].ID != "1" {
		t.Errorf("Expected missing ID to be filled with position, got %q", s.Questions[0].ID)
	}

	// The session must not alias the caller's option slices.
	questions[1].Options[0] = "changed"
	if s.Questions[1].Options[0] == "changed" {
		t.Error("Session aliases caller's options")
	}
}

func TestQuizSessionScore(t *testing.T) {
	questions := []QuizQuestion{
		validQuestion(0), validQuestion(1), validQuestion(2), validQuestion(3), validQuestion(0),
	}
	s := NewQuizSession("Science", questions, time.Now())
	s.Answers = []Answer{0, 1, 2, 0, Unanswered}

	if got := s.CorrectCount(); got != 3 {
		t.Errorf("Expected 3 correct, got %d", got)
	}
	if got := s.ComputeScore(); got != 60 {
		t.Errorf("Expected score 60, got %d", got)
	}

	three := NewQuizSession("Science", questions[:3], time.Now())
	three.Answers = []Answer{0, 3, 3}
	if got := three.ComputeScore(); got != 33 {
		t.Errorf("Expected score 33, got %d", got)
	}
	three.Answers = []Answer{0, 1, 3}
	if got := three.ComputeScore(); got != 67 {
		t.Errorf("Expected score 67, got %d", got)
	}
}

func TestQuizSessionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *QuizSession)
		wantIs  error
		wantErr bool
	}{
		{"valid", func(s *QuizSession) {}, nil, false},
		{"answered and on last question", func(s *QuizSession) {
			s.Answers = []Answer{2, 3}
			s.CurrentQuestion = 1
		}, nil, false},
		{"no questions", func(s *QuizSession) {
			s.Questions = nil
			s.Answers = nil
		}, ErrEmptyQuiz, true},
		{"two options", func(s *QuizSession) { s.Questions[0].Options = []string{"a", "b"} }, ErrValidation, true},
		{"correct answer past options", func(s *QuizSession) { s.Questions[1].CorrectAnswer = 7 }, ErrAnswerOutOfRange, true},
		{"answer past options", func(s *QuizSession) { s.Answers[0] = 9 }, ErrAnswerOutOfRange, true},
		{"answers misaligned", func(s *QuizSession) { s.Answers = s.Answers[:1] }, ErrValidation, true},
		{"cursor past last question", func(s *QuizSession) { s.CurrentQuestion = 2 }, ErrQuestionOutOfRange, true},
		{"negative cursor", func(s *QuizSession) { s.CurrentQuestion = -1 }, ErrQuestionOutOfRange, true},
		{"score above 100", func(s *QuizSession) { s.Score = 101 }, ErrValidation, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewQuizSession("Math", []QuizQuestion{validQuestion(1), validQuestion(2)}, time.Now())
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Expected %v to match ErrValidation", err)
			}
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("Expected %v to match %v", err, tt.wantIs)
			}
		})
	}
}

func TestQuizSessionClone(t *testing.T) {
	s := NewQuizSession("History", []QuizQuestion{validQuestion(0)}, time.Now())
	c := s.Clone()
	c.Answers[0] = 3
	c.Questions[0].Options[0] = "x"

	if s.Answers[0] != Unanswered {
		t.Error("Clone shares answers")
	}
	if s.Questions[0].Options[0] == "x" {
		t.Error("Clone shares options")
	}
}

func TestBandForScore(t *testing.T) {
	if BandForScore(95) != ScoreExcellent || BandForScore(90) != ScoreExcellent {
		t.Error("Expected excellent band at 90 and above")
	}
	if BandForScore(70) != ScoreGood {
		t.Error("Expected good band at 70")
	}
	if BandForScore(69) != ScoreNeedsPractice {
		t.Error("Expected needs_practice below 70")
	}
}

func TestSolutionValidate(t *testing.T) {
	ok := Solution{Answer: "x = 4", Explanation: "subtract", Steps: []string{"Step 1"}}
	if err := ok.Validate(); err != nil {
		t.Errorf("Expected valid solution, got %v", err)
	}
	if err := (Solution{Steps: []string{"a"}}).Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected error for missing answer, got %v", err)
	}
	if err := (Solution{Answer: "a"}).Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected error for missing steps, got %v", err)
	}
	if err := (Solution{Answer: "a", Steps: []string{" "}}).Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected error for blank step, got %v", err)
	}
}

func TestSubjectByID(t *testing.T) {
	if SubjectByID("physics").Name != "Physics" {
		t.Error("Expected Physics")
	}
	if SubjectByID("unknown").Name != "Mathematics" {
		t.Error("Expected fallback to Mathematics")
	}
	if len(Subjects()) != 8 {
		t.Errorf("Expected 8 subjects, got %d", len(Subjects()))
	}
}
