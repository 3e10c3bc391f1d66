package generation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/snapsolve/snapsolve/internal/domain"
)

var validate = validator.New()

// flexibleID accepts question ids as JSON strings or numbers.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number")
	}
	*id = flexibleID(n.String())
	return nil
}

type questionPayload struct {
	ID            flexibleID `json:"id"`
	Question      string     `json:"question" validate:"required"`
	Options       []string   `json:"options" validate:"len=4,dive,required"`
	CorrectAnswer *int       `json:"correctAnswer" validate:"required,min=0,max=3"`
	Explanation   string     `json:"explanation"`
}

type quizPayload struct {
	Questions []questionPayload `json:"questions" validate:"required,min=1,dive"`
}

type solutionPayload struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer" validate:"required"`
	Explanation string   `json:"explanation"`
	Steps       []string `json:"steps" validate:"min=1,dive,required"`
}

// DecodeQuiz parses and validates a quiz payload of the form
// {"questions": [...]}.
func DecodeQuiz(raw []byte) ([]domain.QuizQuestion, error) {
	var payload quizPayload
	if err := unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	if err := validate.Struct(payload); err != nil {
		return nil, invalid(fromValidator(err))
	}

	questions := make([]domain.QuizQuestion, len(payload.Questions))
	for i, q := range payload.Questions {
		id := strings.TrimSpace(string(q.ID))
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		questions[i] = domain.QuizQuestion{
			ID:            id,
			Question:      strings.TrimSpace(q.Question),
			Options:       q.Options,
			CorrectAnswer: *q.CorrectAnswer,
			Explanation:   strings.TrimSpace(q.Explanation),
		}
	}

	if err := domain.ValidateQuestions(questions); err != nil {
		return nil, invalid(err)
	}
	return questions, nil
}

// DecodeSolution parses and validates a solution payload. When
// requireQuestion is set, the payload must also carry a non-empty question,
// as similar-question payloads do.
func DecodeSolution(raw []byte, requireQuestion bool) (domain.Solution, error) {
	var payload solutionPayload
	if err := unmarshal(raw, &payload); err != nil {
		return domain.Solution{}, err
	}
	if err := validate.Struct(payload); err != nil {
		return domain.Solution{}, invalid(fromValidator(err))
	}
	if requireQuestion && strings.TrimSpace(payload.Question) == "" {
		return domain.Solution{}, invalid(domain.NewValidationError("question", "cannot be empty", nil))
	}

	sol := domain.Solution{
		Question:    strings.TrimSpace(payload.Question),
		Answer:      strings.TrimSpace(payload.Answer),
		Explanation: strings.TrimSpace(payload.Explanation),
		Steps:       payload.Steps,
	}
	if err := sol.Validate(); err != nil {
		return domain.Solution{}, invalid(err)
	}
	return sol, nil
}

// StripCodeFence removes a surrounding Markdown code fence, which models
// often add around JSON output.
func StripCodeFence(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(trimmed, []byte("```")) {
		return trimmed
	}
	trimmed = trimmed[3:]
	if nl := bytes.IndexByte(trimmed, '\n'); nl >= 0 {
		trimmed = trimmed[nl+1:]
	} else {
		trimmed = bytes.TrimPrefix(trimmed, []byte("json"))
	}
	trimmed = bytes.TrimSpace(trimmed)
	trimmed = bytes.TrimSuffix(trimmed, []byte("```"))
	return bytes.TrimSpace(trimmed)
}

func unmarshal(raw []byte, v interface{}) error {
	body := StripCodeFence(raw)
	if len(body) == 0 {
		return invalid(domain.NewValidationError("", "empty payload", nil))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return invalid(domain.NewValidationError("", "malformed JSON: "+err.Error(), nil))
	}
	return nil
}

func invalid(err error) error {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		err = domain.NewValidationError("", err.Error(), nil)
	}
	return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
}

// fromValidator converts the first validator failure into a ValidationError
// naming the offending field by its JSON path.
func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("", err.Error(), nil)
	}

	fe := verrs[0]
	field := jsonPath(fe.Namespace())
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "len":
		msg = fmt.Sprintf("must contain exactly %s entries", fe.Param())
	case "min":
		msg = fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		msg = fmt.Sprintf("must be at most %s", fe.Param())
	default:
		msg = fmt.Sprintf("failed %q validation", fe.Tag())
	}
	return domain.NewValidationError(field, msg, nil)
}

var fieldNames = map[string]string{
	"Questions":     "questions",
	"Question":      "question",
	"Options":       "options",
	"CorrectAnswer": "correctAnswer",
	"Explanation":   "explanation",
	"Answer":        "answer",
	"Steps":         "steps",
}

// jsonPath maps a validator namespace such as
// "quizPayload.Questions[2].Options[1]" to "questions[2].options[1]".
func jsonPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		name, index := p, ""
		if j := strings.IndexByte(p, '['); j >= 0 {
			name, index = p[:j], p[j:]
		}
		if mapped, ok := fieldNames[name]; ok {
			name = mapped
		}
		parts[i] = name + index
	}
	return strings.Join(parts, ".")
}
