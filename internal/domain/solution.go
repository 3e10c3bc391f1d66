package domain

import (
	"fmt"
	"strings"
)

// Solution is the worked answer to a photographed (or generated) problem.
// Question is only set for generated "similar" problems.
type Solution struct {
	Question    string   `json:"question,omitempty"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
	Steps       []string `json:"steps"`
}

// Validate applies the same discipline as quiz questions: an answer and at
// least one non-empty step are required.
func (s Solution) Validate() error {
	if strings.TrimSpace(s.Answer) == "" {
		return NewValidationError("answer", "cannot be empty", nil)
	}
	if len(s.Steps) == 0 {
		return NewValidationError("steps", "must contain at least one step", nil)
	}
	for i, step := range s.Steps {
		if strings.TrimSpace(step) == "" {
			return NewValidationError(fmt.Sprintf("steps[%d]", i), "cannot be empty", nil)
		}
	}
	return nil
}
