package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/snapsolve/snapsolve/internal/config"
	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/generation"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used by Generator.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// models performs the API calls
	models contentGenerator

	// model is the name of the Gemini model to use
	model string

	maxRetries int
	baseDelay  time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Generator from the LLM configuration.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	logger.InfoContext(ctx, "Gemini generator initialized", "model", cfg.ModelName)
	return newGenerator(client.Models, cfg, logger), nil
}

func newGenerator(models contentGenerator, cfg config.LLMConfig, logger *slog.Logger) *Generator {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 3
	}
	delaySeconds := cfg.RetryDelaySeconds
	if delaySeconds < 1 {
		delaySeconds = 2
	}

	return &Generator{
		logger:     logger.With("component", "gemini_generator"),
		models:     models,
		model:      cfg.ModelName,
		maxRetries: maxRetries,
		baseDelay:  time.Duration(delaySeconds) * time.Second,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GenerateQuiz implements generation.QuizGenerator.
func (g *Generator) GenerateQuiz(ctx context.Context, subject string, count int) ([]domain.QuizQuestion, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("%w: subject cannot be empty", generation.ErrInvalidInput)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: question count must be positive", generation.ErrInvalidInput)
	}

	prompt, err := quizPrompt(subject, count)
	if err != nil {
		return nil, err
	}

	text, err := g.callWithRetry(ctx, "generate_quiz", []*genai.Part{{Text: prompt}})
	if err != nil {
		return nil, err
	}

	questions, err := generation.DecodeQuiz([]byte(text))
	if err != nil {
		g.logger.WarnContext(ctx, "Gemini returned an invalid quiz", "subject", subject, "error", err)
		return nil, err
	}

	g.logger.InfoContext(ctx, "Quiz generated", "subject", subject, "question_count", len(questions))
	return questions, nil
}

// SolveImage implements generation.Solver.
func (g *Generator) SolveImage(ctx context.Context, img generation.Image) (domain.Solution, error) {
	if len(img.Data) == 0 {
		return domain.Solution{}, fmt.Errorf("%w: image is empty", generation.ErrInvalidInput)
	}
	if !strings.HasPrefix(img.MIMEType, "image/") {
		return domain.Solution{}, fmt.Errorf("%w: unsupported content type %q", generation.ErrInvalidInput, img.MIMEType)
	}

	prompt, err := solvePrompt()
	if err != nil {
		return domain.Solution{}, err
	}

	text, err := g.callWithRetry(ctx, "solve_image", []*genai.Part{
		{Text: prompt},
		{InlineData: &genai.Blob{Data: img.Data, MIMEType: img.MIMEType}},
	})
	if err != nil {
		return domain.Solution{}, err
	}

	return generation.DecodeSolution([]byte(text), false)
}

// SimilarQuestion implements generation.Solver.
func (g *Generator) SimilarQuestion(ctx context.Context, base domain.Solution) (domain.Solution, error) {
	if strings.TrimSpace(base.Answer) == "" {
		return domain.Solution{}, fmt.Errorf("%w: base solution has no answer", generation.ErrInvalidInput)
	}

	prompt, err := similarPrompt(base)
	if err != nil {
		return domain.Solution{}, err
	}

	text, err := g.callWithRetry(ctx, "similar_question", []*genai.Part{{Text: prompt}})
	if err != nil {
		return domain.Solution{}, err
	}

	return generation.DecodeSolution([]byte(text), true)
}

// callWithRetry makes a call to the Gemini API with exponential backoff retry logic.
//
// Transient errors are retried up to maxRetries times with jittered
// exponential backoff. Safety blocks and malformed responses are returned
// immediately.
func (g *Generator) callWithRetry(ctx context.Context, operation string, parts []*genai.Part) (string, error) {
	contents := []*genai.Content{{Role: "user", Parts: parts}}
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		g.logger.InfoContext(ctx, "Making Gemini API call",
			"operation", operation,
			"attempt", attemptNum,
			"max_attempts", g.maxRetries+1)

		resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
		if err == nil {
			var text string
			text, err = extractText(resp)
			if err == nil {
				g.logger.InfoContext(ctx, "Gemini API call successful",
					"operation", operation,
					"attempt", attemptNum)
				return text, nil
			}
		} else if ctx.Err() == nil {
			err = fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		} else {
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"operation", operation,
			"attempt", attemptNum,
			"error", err)

		if !errors.Is(err, generation.ErrTransientFailure) {
			return "", err
		}

		if attempt >= g.maxRetries {
			g.logger.WarnContext(ctx, "Maximum retry attempts reached",
				"max_retries", g.maxRetries)
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, g.maxRetries)
		}

		delay := g.backoff(attempt)
		g.logger.InfoContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay_ms", delay.Milliseconds())

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// backoff returns baseDelay * 2^attempt * a jitter factor in [0.5, 1.0).
func (g *Generator) backoff(attempt int) time.Duration {
	g.rngMu.Lock()
	jitter := 0.5 + g.rng.Float64()*0.5
	g.rngMu.Unlock()
	return time.Duration(float64(g.baseDelay) * math.Pow(2, float64(attempt)) * jitter)
}

// extractText returns the concatenated text of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: response contains no text", generation.ErrInvalidResponse)
	}
	return sb.String(), nil
}
