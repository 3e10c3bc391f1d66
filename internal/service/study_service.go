package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/snapsolve/snapsolve/internal/config"
	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/generation"
	"github.com/snapsolve/snapsolve/internal/progress"
)

// DefaultQuestionCount is used when no question count is configured.
const DefaultQuestionCount = 5

// ProgressStore is the subset of the progress store used by the study service.
type ProgressStore interface {
	Profile() domain.UserProfile
	Remaining(kind domain.QuotaKind) int
	StreakCalendar(n int) []progress.CalendarDay
	IncrementXP(ctx context.Context, amount int) error
	UseSolve(ctx context.Context) domain.Decision
	UseQuiz(ctx context.Context) domain.Decision
	UpdateStreak(ctx context.Context)
	SetAvatar(ctx context.Context, avatarID int)
	UpgradeToPro(ctx context.Context)
	ResetDailyLimits(ctx context.Context)
}

// QuizStore is the subset of the quiz store used by the study service.
type QuizStore interface {
	Current() (domain.QuizSession, bool)
	History() []domain.QuizSession
	StartQuiz(ctx context.Context, subject string, questions []domain.QuizQuestion) (domain.QuizSession, error)
	AnswerQuestion(ctx context.Context, questionIndex, answerIndex int) error
	NextQuestion(ctx context.Context) error
	CompleteQuiz(ctx context.Context) (domain.QuizSession, error)
	ClearCurrentSession(ctx context.Context)
}

// ReceiptVerifier checks purchase receipts for the pro upgrade.
type ReceiptVerifier interface {
	// Verify returns nil when receipt grants the pro tier to userID.
	Verify(ctx context.Context, receipt string, userID string) error
}

// StudyConfig holds the collaborators of the study service.
// Generator and Verifier are optional; the features they back report
// ErrGenerationDisabled and ErrUpgradeUnavailable when absent.
type StudyConfig struct {
	Progress      ProgressStore
	Quiz          QuizStore
	Generator     generation.Generator
	Verifier      ReceiptVerifier
	Rewards       config.RewardsConfig
	QuestionCount int
	Logger        *slog.Logger
}

// AdvanceResult reports the session after Advance and whether it completed it.
type AdvanceResult struct {
	Session   domain.QuizSession
	Completed bool
}

// StudyService provides the learning flows of the app.
type StudyService interface {
	// Profile returns the current user profile.
	Profile() domain.UserProfile

	// Remaining returns the allowance left today for kind, or progress.Unlimited.
	Remaining(kind domain.QuotaKind) int

	// StreakCalendar returns the last n days with streak activity marked.
	StreakCalendar(n int) []progress.CalendarDay

	// RecordActivity updates the daily streak.
	RecordActivity(ctx context.Context) domain.UserProfile

	// SetAvatar selects the profile avatar.
	SetAvatar(ctx context.Context, avatarID int) domain.UserProfile

	// UpgradeToPro verifies receipt and switches the profile to the pro tier.
	UpgradeToPro(ctx context.Context, receipt string) (domain.UserProfile, error)

	// ResetDailyLimits zeroes today's counters.
	ResetDailyLimits(ctx context.Context) domain.UserProfile

	// SolveImage consumes a solve, asks the generator for a solution and
	// awards solve XP.
	SolveImage(ctx context.Context, img generation.Image) (domain.Solution, error)

	// SimilarQuestion generates a problem like base and awards similar XP.
	SimilarQuestion(ctx context.Context, base domain.Solution) (domain.Solution, error)

	// StartQuiz consumes a quiz, generates questions for subjectID and
	// starts a session.
	StartQuiz(ctx context.Context, subjectID string) (domain.QuizSession, error)

	// CurrentQuiz returns the current session, if any.
	CurrentQuiz() (domain.QuizSession, bool)

	// QuizHistory returns completed sessions, newest first.
	QuizHistory() []domain.QuizSession

	// AnswerQuestion records an answer. A nil questionIndex answers the
	// current question.
	AnswerQuestion(ctx context.Context, questionIndex *int, answerIndex int) (domain.QuizSession, error)

	// NextQuestion moves to the next question.
	NextQuestion(ctx context.Context) (domain.QuizSession, error)

	// Advance moves to the next question, or completes the quiz when the
	// current question is the last one.
	Advance(ctx context.Context) (AdvanceResult, error)

	// CompleteQuiz scores the session, records it and awards quiz XP.
	CompleteQuiz(ctx context.Context) (domain.QuizSession, error)

	// ClearQuiz abandons the current session.
	ClearQuiz(ctx context.Context)
}

// studyServiceImpl implements the StudyService interface
type studyServiceImpl struct {
	progress      ProgressStore
	quiz          QuizStore
	generator     generation.Generator
	verifier      ReceiptVerifier
	rewards       config.RewardsConfig
	questionCount int
	logger        *slog.Logger
}

// NewStudyService creates a new StudyService.
// It returns an error if any of the required dependencies are nil.
func NewStudyService(cfg StudyConfig) (StudyService, error) {
	if cfg.Progress == nil {
		return nil, &StudyServiceError{Operation: "create_service", Message: "progress store cannot be nil"}
	}
	if cfg.Quiz == nil {
		return nil, &StudyServiceError{Operation: "create_service", Message: "quiz store cannot be nil"}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	count := cfg.QuestionCount
	if count <= 0 {
		count = DefaultQuestionCount
	}

	return &studyServiceImpl{
		progress:      cfg.Progress,
		quiz:          cfg.Quiz,
		generator:     cfg.Generator,
		verifier:      cfg.Verifier,
		rewards:       cfg.Rewards,
		questionCount: count,
		logger:        logger.With("component", "study_service"),
	}, nil
}

func (s *studyServiceImpl) Profile() domain.UserProfile {
	return s.progress.Profile()
}

func (s *studyServiceImpl) Remaining(kind domain.QuotaKind) int {
	return s.progress.Remaining(kind)
}

func (s *studyServiceImpl) StreakCalendar(n int) []progress.CalendarDay {
	return s.progress.StreakCalendar(n)
}

func (s *studyServiceImpl) RecordActivity(ctx context.Context) domain.UserProfile {
	s.progress.UpdateStreak(ctx)
	return s.progress.Profile()
}

func (s *studyServiceImpl) SetAvatar(ctx context.Context, avatarID int) domain.UserProfile {
	s.progress.SetAvatar(ctx, avatarID)
	return s.progress.Profile()
}

// UpgradeToPro verifies the receipt against the profile's user id before
// upgrading. The upgrade itself is idempotent.
func (s *studyServiceImpl) UpgradeToPro(ctx context.Context, receipt string) (domain.UserProfile, error) {
	if s.verifier == nil {
		return domain.UserProfile{}, ErrUpgradeUnavailable
	}

	profile := s.progress.Profile()
	if err := s.verifier.Verify(ctx, strings.TrimSpace(receipt), profile.UserID); err != nil {
		s.logger.WarnContext(ctx, "receipt rejected",
			"user_id", profile.UserID,
			"error", err)
		return domain.UserProfile{}, fmt.Errorf("%w: %w", ErrInvalidReceipt, err)
	}

	s.progress.UpgradeToPro(ctx)
	return s.progress.Profile(), nil
}

func (s *studyServiceImpl) ResetDailyLimits(ctx context.Context) domain.UserProfile {
	s.progress.ResetDailyLimits(ctx)
	return s.progress.Profile()
}

// SolveImage gates on the solve quota first; a failed generation still
// counts against today's allowance.
func (s *studyServiceImpl) SolveImage(ctx context.Context, img generation.Image) (domain.Solution, error) {
	if s.generator == nil {
		return domain.Solution{}, ErrGenerationDisabled
	}

	if decision := s.progress.UseSolve(ctx); !decision.Allowed() {
		s.logger.InfoContext(ctx, "solve denied by daily quota")
		return domain.Solution{}, ErrQuotaExhausted
	}

	solution, err := s.generator.SolveImage(ctx, img)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to solve image",
			"error", err,
			"mime_type", img.MIMEType,
			"size_bytes", len(img.Data))
		return domain.Solution{}, NewStudyServiceError("solve_image", "failed to solve image", err)
	}

	s.award(ctx, s.rewards.SolveXP, "solve")
	return solution, nil
}

func (s *studyServiceImpl) SimilarQuestion(ctx context.Context, base domain.Solution) (domain.Solution, error) {
	if s.generator == nil {
		return domain.Solution{}, ErrGenerationDisabled
	}
	if err := base.Validate(); err != nil {
		return domain.Solution{}, err
	}

	similar, err := s.generator.SimilarQuestion(ctx, base)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate similar question", "error", err)
		return domain.Solution{}, NewStudyServiceError("similar_question", "failed to generate similar question", err)
	}

	s.award(ctx, s.rewards.SimilarXP, "similar")
	return similar, nil
}

// StartQuiz gates on the quiz quota before calling the generator. Generated
// questions are validated at the generation boundary, so an invalid payload
// never reaches the quiz store.
func (s *studyServiceImpl) StartQuiz(ctx context.Context, subjectID string) (domain.QuizSession, error) {
	if s.generator == nil {
		return domain.QuizSession{}, ErrGenerationDisabled
	}

	subject := domain.SubjectByID(subjectID)

	if decision := s.progress.UseQuiz(ctx); !decision.Allowed() {
		s.logger.InfoContext(ctx, "quiz denied by daily quota", "subject", subject.ID)
		return domain.QuizSession{}, ErrQuotaExhausted
	}

	questions, err := s.generator.GenerateQuiz(ctx, subject.Name, s.questionCount)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate quiz",
			"error", err,
			"subject", subject.ID)
		return domain.QuizSession{}, NewStudyServiceError("start_quiz", "failed to generate quiz", err)
	}

	session, err := s.quiz.StartQuiz(ctx, subject.Name, questions)
	if err != nil {
		return domain.QuizSession{}, NewStudyServiceError("start_quiz", "failed to start quiz", err)
	}

	s.logger.InfoContext(ctx, "quiz started",
		"session_id", session.ID,
		"subject", subject.ID,
		"questions", len(session.Questions))
	return session, nil
}

func (s *studyServiceImpl) CurrentQuiz() (domain.QuizSession, bool) {
	return s.quiz.Current()
}

func (s *studyServiceImpl) QuizHistory() []domain.QuizSession {
	return s.quiz.History()
}

func (s *studyServiceImpl) AnswerQuestion(
	ctx context.Context,
	questionIndex *int,
	answerIndex int,
) (domain.QuizSession, error) {
	current, ok := s.quiz.Current()
	if !ok {
		return domain.QuizSession{}, domain.ErrNoActiveSession
	}

	qi := current.CurrentQuestion
	if questionIndex != nil {
		qi = *questionIndex
	}

	if err := s.quiz.AnswerQuestion(ctx, qi, answerIndex); err != nil {
		return domain.QuizSession{}, NewStudyServiceError("answer_question", "failed to record answer", err)
	}
	return s.currentOrErr()
}

func (s *studyServiceImpl) NextQuestion(ctx context.Context) (domain.QuizSession, error) {
	if err := s.quiz.NextQuestion(ctx); err != nil {
		return domain.QuizSession{}, NewStudyServiceError("next_question", "failed to move to next question", err)
	}
	return s.currentOrErr()
}

func (s *studyServiceImpl) Advance(ctx context.Context) (AdvanceResult, error) {
	current, ok := s.quiz.Current()
	if !ok {
		return AdvanceResult{}, domain.ErrNoActiveSession
	}

	if !current.IsLastQuestion() {
		session, err := s.NextQuestion(ctx)
		if err != nil {
			return AdvanceResult{}, err
		}
		return AdvanceResult{Session: session}, nil
	}

	session, err := s.CompleteQuiz(ctx)
	if err != nil {
		return AdvanceResult{}, err
	}
	return AdvanceResult{Session: session, Completed: true}, nil
}

func (s *studyServiceImpl) CompleteQuiz(ctx context.Context) (domain.QuizSession, error) {
	session, err := s.quiz.CompleteQuiz(ctx)
	if err != nil {
		return domain.QuizSession{}, NewStudyServiceError("complete_quiz", "failed to complete quiz", err)
	}

	s.award(ctx, s.rewards.QuizXP, "quiz")
	return session, nil
}

func (s *studyServiceImpl) ClearQuiz(ctx context.Context) {
	s.quiz.ClearCurrentSession(ctx)
}

func (s *studyServiceImpl) currentOrErr() (domain.QuizSession, error) {
	session, ok := s.quiz.Current()
	if !ok {
		return domain.QuizSession{}, domain.ErrNoActiveSession
	}
	return session, nil
}

// award grants XP for a finished activity. Failures are logged only; the
// activity itself has already succeeded.
func (s *studyServiceImpl) award(ctx context.Context, amount int, activity string) {
	if amount <= 0 {
		return
	}
	if err := s.progress.IncrementXP(ctx, amount); err != nil {
		s.logger.ErrorContext(ctx, "failed to award xp",
			"error", err,
			"activity", activity,
			"amount", amount)
	}
}
