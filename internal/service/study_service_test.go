package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/snapsolve/snapsolve/internal/clock"
	"github.com/snapsolve/snapsolve/internal/config"
	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/generation"
	"github.com/snapsolve/snapsolve/internal/mocks"
	"github.com/snapsolve/snapsolve/internal/progress"
	"github.com/snapsolve/snapsolve/internal/quiz"
	"github.com/snapsolve/snapsolve/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncPersister struct {
	adapter store.Adapter
}

func (p syncPersister) Enqueue(key string, value []byte) error {
	return p.adapter.Set(context.Background(), key, value)
}

var testRewards = config.RewardsConfig{SolveXP: 10, QuizXP: 20, SimilarXP: 5}

type harness struct {
	svc       StudyService
	progress  *progress.Store
	quiz      *quiz.Store
	generator *mocks.MockGenerator
	verifier  *mocks.MockReceiptVerifier
	clock     *clock.Manual
}

func newHarness(t *testing.T) harness {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adapter := store.NewMemory()
	persister := syncPersister{adapter: adapter}
	clk := clock.NewManual(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))

	ps, err := progress.NewStore(progress.Config{
		Adapter:   adapter,
		Persister: persister,
		Clock:     clk,
		Limits:    domain.DefaultQuotaLimits(),
		Logger:    logger,
	})
	require.NoError(t, err)
	require.NoError(t, ps.Load(ctx))

	qs, err := quiz.NewStore(quiz.Config{
		Adapter:   adapter,
		Persister: persister,
		Clock:     clk,
		Logger:    logger,
	})
	require.NoError(t, err)
	require.NoError(t, qs.Load(ctx))

	gen := &mocks.MockGenerator{
		Questions: mocks.SampleQuestions(3),
		Solution:  mocks.SampleSolution(),
	}
	verifier := &mocks.MockReceiptVerifier{}

	svc, err := NewStudyService(StudyConfig{
		Progress:      ps,
		Quiz:          qs,
		Generator:     gen,
		Verifier:      verifier,
		Rewards:       testRewards,
		QuestionCount: 3,
		Logger:        logger,
	})
	require.NoError(t, err)

	return harness{svc: svc, progress: ps, quiz: qs, generator: gen, verifier: verifier, clock: clk}
}

func TestNewStudyServiceRequiresStores(t *testing.T) {
	_, err := NewStudyService(StudyConfig{})
	require.Error(t, err)

	var svcErr *StudyServiceError
	assert.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "create_service", svcErr.Operation)
}

func TestSolveImage(t *testing.T) {
	ctx := context.Background()

	t.Run("awards xp and consumes a solve", func(t *testing.T) {
		h := newHarness(t)

		sol, err := h.svc.SolveImage(ctx, generation.Image{Data: []byte{1, 2}, MIMEType: "image/png"})
		require.NoError(t, err)
		assert.Equal(t, "x = 4", sol.Answer)

		p := h.svc.Profile()
		assert.Equal(t, 10, p.XP)
		assert.Equal(t, 1, p.DailySolves)
		assert.Equal(t, 4, h.svc.Remaining(domain.QuotaSolve))
	})

	t.Run("quota exhausted skips the generator", func(t *testing.T) {
		h := newHarness(t)
		for i := 0; i < 5; i++ {
			_, err := h.svc.SolveImage(ctx, generation.Image{Data: []byte{1}, MIMEType: "image/png"})
			require.NoError(t, err)
		}

		_, err := h.svc.SolveImage(ctx, generation.Image{Data: []byte{1}, MIMEType: "image/png"})
		assert.ErrorIs(t, err, ErrQuotaExhausted)

		_, solves, _ := h.generator.CallCounts()
		assert.Equal(t, 5, solves)
		assert.Equal(t, 50, h.svc.Profile().XP)
	})

	t.Run("generator failure still counts and awards nothing", func(t *testing.T) {
		h := newHarness(t)
		h.generator.Err = generation.ErrInvalidResponse

		_, err := h.svc.SolveImage(ctx, generation.Image{Data: []byte{1}, MIMEType: "image/png"})
		require.Error(t, err)
		assert.ErrorIs(t, err, generation.ErrInvalidResponse)

		var svcErr *StudyServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, "solve_image", svcErr.Operation)

		p := h.svc.Profile()
		assert.Equal(t, 0, p.XP)
		assert.Equal(t, 1, p.DailySolves)
	})

	t.Run("pro profiles are unlimited", func(t *testing.T) {
		h := newHarness(t)
		h.progress.UpgradeToPro(ctx)

		for i := 0; i < 8; i++ {
			_, err := h.svc.SolveImage(ctx, generation.Image{Data: []byte{1}, MIMEType: "image/png"})
			require.NoError(t, err)
		}
		assert.Equal(t, progress.Unlimited, h.svc.Remaining(domain.QuotaSolve))
	})
}

func TestGenerationDisabled(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	svc, err := NewStudyService(StudyConfig{Progress: h.progress, Quiz: h.quiz})
	require.NoError(t, err)

	_, err = svc.SolveImage(ctx, generation.Image{Data: []byte{1}})
	assert.ErrorIs(t, err, ErrGenerationDisabled)
	_, err = svc.StartQuiz(ctx, "math")
	assert.ErrorIs(t, err, ErrGenerationDisabled)
	_, err = svc.SimilarQuestion(ctx, mocks.SampleSolution())
	assert.ErrorIs(t, err, ErrGenerationDisabled)

	assert.Equal(t, 0, h.progress.Profile().DailySolves, "disabled generation consumes nothing")
	assert.Equal(t, 0, h.progress.Profile().DailyQuizzes)
}

func TestSimilarQuestion(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	similar := mocks.SampleSolution()
	similar.Question = "Solve 2y + 5 = 13"
	h.generator.Solution = similar

	got, err := h.svc.SimilarQuestion(ctx, mocks.SampleSolution())
	require.NoError(t, err)
	assert.Equal(t, "Solve 2y + 5 = 13", got.Question)
	assert.Equal(t, 5, h.svc.Profile().XP)
	assert.Equal(t, 0, h.svc.Profile().DailySolves, "similar questions are not quota-gated")

	_, err = h.svc.SimilarQuestion(ctx, domain.Solution{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStartQuiz(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves subject and starts a session", func(t *testing.T) {
		h := newHarness(t)

		session, err := h.svc.StartQuiz(ctx, "science")
		require.NoError(t, err)
		assert.Equal(t, "Science", session.Subject)
		assert.Len(t, session.Questions, 3)

		require.Len(t, h.generator.GenerateQuizCalls, 1)
		assert.Equal(t, mocks.GenerateQuizCall{Subject: "Science", Count: 3}, h.generator.GenerateQuizCalls[0])

		current, ok := h.svc.CurrentQuiz()
		require.True(t, ok)
		assert.Equal(t, session.ID, current.ID)
	})

	t.Run("unknown subject falls back to mathematics", func(t *testing.T) {
		h := newHarness(t)

		session, err := h.svc.StartQuiz(ctx, "astrology")
		require.NoError(t, err)
		assert.Equal(t, "Mathematics", session.Subject)
	})

	t.Run("second quiz of the day is denied", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.svc.StartQuiz(ctx, "math")
		require.NoError(t, err)
		_, err = h.svc.StartQuiz(ctx, "math")
		assert.ErrorIs(t, err, ErrQuotaExhausted)

		quizzes, _, _ := h.generator.CallCounts()
		assert.Equal(t, 1, quizzes)
	})

	t.Run("quota resets on the next day", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.svc.StartQuiz(ctx, "math")
		require.NoError(t, err)
		h.clock.AdvanceDays(1)
		_, err = h.svc.StartQuiz(ctx, "math")
		assert.NoError(t, err)
	})

	t.Run("failed generation consumes the quiz and keeps the store idle", func(t *testing.T) {
		h := newHarness(t)
		h.generator.Err = generation.ErrContentBlocked

		_, err := h.svc.StartQuiz(ctx, "math")
		assert.ErrorIs(t, err, generation.ErrContentBlocked)

		_, ok := h.svc.CurrentQuiz()
		assert.False(t, ok)
		assert.Equal(t, 0, h.svc.Remaining(domain.QuotaQuiz))
	})

	t.Run("empty question set is rejected", func(t *testing.T) {
		h := newHarness(t)
		h.generator.Questions = nil

		_, err := h.svc.StartQuiz(ctx, "math")
		assert.ErrorIs(t, err, domain.ErrEmptyQuiz)
	})
}

func TestQuizPlayThrough(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.svc.StartQuiz(ctx, "math")
	require.NoError(t, err)

	// Sample questions are correct at i%4: 0, 1, 2.
	answers := []int{0, 1, 3}
	for i, a := range answers {
		session, err := h.svc.AnswerQuestion(ctx, nil, a)
		require.NoError(t, err)
		assert.Equal(t, domain.Answer(a), session.Answers[i])

		result, err := h.svc.Advance(ctx)
		require.NoError(t, err)
		if i < len(answers)-1 {
			assert.False(t, result.Completed)
			assert.Equal(t, i+1, result.Session.CurrentQuestion)
		} else {
			assert.True(t, result.Completed)
			assert.Equal(t, 67, result.Session.Score)
		}
	}

	assert.Equal(t, 20, h.svc.Profile().XP)
	history := h.svc.QuizHistory()
	require.Len(t, history, 1)
	assert.True(t, history[0].Completed)

	_, err = h.svc.Advance(ctx)
	assert.ErrorIs(t, err, domain.ErrSessionCompleted)
}

func TestAnswerQuestionErrors(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.svc.AnswerQuestion(ctx, nil, 0)
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
	_, err = h.svc.Advance(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)

	_, err = h.svc.StartQuiz(ctx, "math")
	require.NoError(t, err)

	qi := 7
	_, err = h.svc.AnswerQuestion(ctx, &qi, 0)
	assert.ErrorIs(t, err, domain.ErrQuestionOutOfRange)
	_, err = h.svc.AnswerQuestion(ctx, nil, 4)
	assert.ErrorIs(t, err, domain.ErrAnswerOutOfRange)

	qi = 2
	session, err := h.svc.AnswerQuestion(ctx, &qi, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.Answer(2), session.Answers[2])
	assert.Equal(t, 0, session.CurrentQuestion)
}

func TestCompleteQuizDirectly(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.svc.CompleteQuiz(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
	assert.Equal(t, 0, h.svc.Profile().XP)

	_, err = h.svc.StartQuiz(ctx, "math")
	require.NoError(t, err)
	session, err := h.svc.CompleteQuiz(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, session.Score)
	assert.Equal(t, 20, h.svc.Profile().XP)

	h.svc.ClearQuiz(ctx)
	_, ok := h.svc.CurrentQuiz()
	assert.False(t, ok)
	assert.Len(t, h.svc.QuizHistory(), 1)
}

func TestUpgradeToPro(t *testing.T) {
	ctx := context.Background()

	t.Run("verified receipt upgrades", func(t *testing.T) {
		h := newHarness(t)
		userID := h.svc.Profile().UserID
		h.verifier.VerifyFn = func(_ context.Context, receipt, id string) error {
			if receipt != "good" || id != userID {
				return errors.New("bad receipt")
			}
			return nil
		}

		p, err := h.svc.UpgradeToPro(ctx, "  good ")
		require.NoError(t, err)
		assert.True(t, p.IsPro)
	})

	t.Run("rejected receipt leaves the tier unchanged", func(t *testing.T) {
		h := newHarness(t)
		cause := errors.New("signature mismatch")
		h.verifier.Err = cause

		_, err := h.svc.UpgradeToPro(ctx, "forged")
		assert.ErrorIs(t, err, ErrInvalidReceipt)
		assert.ErrorIs(t, err, cause)
		assert.False(t, h.svc.Profile().IsPro)
	})

	t.Run("no verifier", func(t *testing.T) {
		h := newHarness(t)
		svc, err := NewStudyService(StudyConfig{Progress: h.progress, Quiz: h.quiz})
		require.NoError(t, err)

		_, err = svc.UpgradeToPro(ctx, "anything")
		assert.ErrorIs(t, err, ErrUpgradeUnavailable)
	})
}

func TestProfileOperations(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	p := h.svc.RecordActivity(ctx)
	assert.Equal(t, 1, p.Streak)
	assert.Equal(t, "2026-05-04", p.LastActiveDate)

	h.clock.AdvanceDays(1)
	p = h.svc.RecordActivity(ctx)
	assert.Equal(t, 2, p.Streak)

	calendar := h.svc.StreakCalendar(7)
	require.Len(t, calendar, 7)
	assert.True(t, calendar[6].Active)
	assert.True(t, calendar[5].Active)
	assert.False(t, calendar[4].Active)

	p = h.svc.SetAvatar(ctx, 4)
	assert.Equal(t, 4, p.AvatarID)

	_, err := h.svc.SolveImage(ctx, generation.Image{Data: []byte{1}, MIMEType: "image/png"})
	require.NoError(t, err)
	p = h.svc.ResetDailyLimits(ctx)
	assert.Equal(t, 0, p.DailySolves)
}

func TestNewStudyServiceErrorPassesSentinelsThrough(t *testing.T) {
	assert.Nil(t, NewStudyServiceError("op", "msg", nil))
	assert.Same(t, domain.ErrEmptyQuiz, NewStudyServiceError("op", "msg", domain.ErrEmptyQuiz))

	wrapped := NewStudyServiceError("op", "msg", errors.New("boom"))
	var svcErr *StudyServiceError
	require.True(t, errors.As(wrapped, &svcErr))
	assert.Equal(t, "study service op failed: msg: boom", wrapped.Error())
}
