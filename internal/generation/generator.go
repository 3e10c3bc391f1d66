package generation

import (
	"context"

	"github.com/snapsolve/snapsolve/internal/domain"
)

// Image is a photographed problem.
type Image struct {
	Data     []byte
	MIMEType string
}

// QuizGenerator produces multiple-choice questions.
type QuizGenerator interface {
	// GenerateQuiz returns count validated questions about subject.
	GenerateQuiz(ctx context.Context, subject string, count int) ([]domain.QuizQuestion, error)
}

// Solver produces worked solutions.
type Solver interface {
	// SolveImage reads the problem in img and returns its validated solution.
	SolveImage(ctx context.Context, img Image) (domain.Solution, error)

	// SimilarQuestion returns a new problem testing the same concept as base,
	// together with its solution. The result always carries Question.
	SimilarQuestion(ctx context.Context, base domain.Solution) (domain.Solution, error)
}

// Generator is the full AI collaborator.
type Generator interface {
	QuizGenerator
	Solver
}
