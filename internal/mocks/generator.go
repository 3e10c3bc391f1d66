package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// Function fields override the default behavior when set
	GenerateQuizFn    func(ctx context.Context, subject string, count int) ([]domain.QuizQuestion, error)
	SolveImageFn      func(ctx context.Context, img generation.Image) (domain.Solution, error)
	SimilarQuestionFn func(ctx context.Context, base domain.Solution) (domain.Solution, error)

	// Default response values
	Questions []domain.QuizQuestion
	Solution  domain.Solution
	Err       error

	mu sync.Mutex

	// Call tracking for verification
	GenerateQuizCalls    []GenerateQuizCall
	SolveImageCalls      []generation.Image
	SimilarQuestionCalls []domain.Solution
}

// GenerateQuizCall records the arguments of one GenerateQuiz call.
type GenerateQuizCall struct {
	Subject string
	Count   int
}

var _ generation.Generator = (*MockGenerator)(nil)

// GenerateQuiz implements generation.QuizGenerator
func (m *MockGenerator) GenerateQuiz(ctx context.Context, subject string, count int) ([]domain.QuizQuestion, error) {
	m.mu.Lock()
	m.GenerateQuizCalls = append(m.GenerateQuizCalls, GenerateQuizCall{Subject: subject, Count: count})
	m.mu.Unlock()

	if m.GenerateQuizFn != nil {
		return m.GenerateQuizFn(ctx, subject, count)
	}
	return m.Questions, m.Err
}

// SolveImage implements generation.Solver
func (m *MockGenerator) SolveImage(ctx context.Context, img generation.Image) (domain.Solution, error) {
	m.mu.Lock()
	m.SolveImageCalls = append(m.SolveImageCalls, img)
	m.mu.Unlock()

	if m.SolveImageFn != nil {
		return m.SolveImageFn(ctx, img)
	}
	return m.Solution, m.Err
}

// SimilarQuestion implements generation.Solver
func (m *MockGenerator) SimilarQuestion(ctx context.Context, base domain.Solution) (domain.Solution, error) {
	m.mu.Lock()
	m.SimilarQuestionCalls = append(m.SimilarQuestionCalls, base)
	m.mu.Unlock()

	if m.SimilarQuestionFn != nil {
		return m.SimilarQuestionFn(ctx, base)
	}
	return m.Solution, m.Err
}

// CallCounts returns the number of calls per method.
func (m *MockGenerator) CallCounts() (quiz, solve, similar int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateQuizCalls), len(m.SolveImageCalls), len(m.SimilarQuestionCalls)
}

// NewMockGeneratorWithError creates a MockGenerator that fails every call with err
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}

// SampleQuestions returns n valid questions whose correct answer is i%4.
func SampleQuestions(n int) []domain.QuizQuestion {
	qs := make([]domain.QuizQuestion, n)
	for i := range qs {
		qs[i] = domain.QuizQuestion{
			ID:            fmt.Sprintf("%d", i+1),
			Question:      fmt.Sprintf("Sample question %d?", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: i % 4,
			Explanation:   "Sample explanation.",
		}
	}
	return qs
}

// SampleSolution returns a valid solution.
func SampleSolution() domain.Solution {
	return domain.Solution{
		Answer:      "x = 4",
		Explanation: "Isolate x.",
		Steps:       []string{"Subtract 3 from both sides", "Divide by 2"},
	}
}
