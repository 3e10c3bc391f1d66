// Package mocks provides centralized mock implementations for testing.
//
// Each mock implements an application interface with function fields for
// every method, default return values, and call tracking, so tests across
// packages share the same behavior instead of redefining inline fakes.
//
// Usage:
//
//	gen := &mocks.MockGenerator{
//	    GenerateQuizFn: func(ctx context.Context, subject string, count int) ([]domain.QuizQuestion, error) {
//	        return questions, nil
//	    },
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Document any helper methods or special functionality
package mocks
