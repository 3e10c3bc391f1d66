package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/snapsolve/snapsolve/internal/clock"
	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/events"
	"github.com/snapsolve/snapsolve/internal/store"
)

// Config holds the collaborators of a Store. Emitter is optional.
type Config struct {
	Adapter   store.Adapter
	Persister store.Persister
	Clock     clock.Clock
	Emitter   events.EventEmitter
	Logger    *slog.Logger
}

// state is the persisted document under store.QuizStoreKey.
type state struct {
	CurrentSession *domain.QuizSession  `json:"currentSession"`
	QuizHistory    []domain.QuizSession `json:"quizHistory"`
}

// Store is the quiz session store. It is safe for concurrent use.
type Store struct {
	adapter   store.Adapter
	persister store.Persister
	clock     clock.Clock
	emitter   events.EventEmitter
	logger    *slog.Logger

	mu    sync.Mutex
	state state
}

// NewStore creates an idle Store with an empty history. Call Load to hydrate
// it from the adapter.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Adapter == nil {
		return nil, fmt.Errorf("adapter cannot be nil")
	}
	if cfg.Persister == nil {
		return nil, fmt.Errorf("persister cannot be nil")
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("clock cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Store{
		adapter:   cfg.Adapter,
		persister: cfg.Persister,
		clock:     cfg.Clock,
		emitter:   cfg.Emitter,
		logger:    cfg.Logger.With("component", "quiz_store"),
		state:     state{QuizHistory: []domain.QuizSession{}},
	}, nil
}

// Load hydrates the store from the adapter. A missing blob leaves the store
// idle with an empty history. A blob holding a session that breaks the
// question or cursor invariants is rejected and the store stays as it was.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.adapter.Get(ctx, store.QuizStoreKey)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.InfoContext(ctx, "no persisted quiz state, starting empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load quiz state: %w", err)
	}

	var st state
	if err := store.Decode(data, &st); err != nil {
		return fmt.Errorf("decode quiz state: %w", err)
	}
	if st.CurrentSession != nil {
		normalizeAnswers(st.CurrentSession)
		if err := st.CurrentSession.Validate(); err != nil {
			return fmt.Errorf("hydrated quiz session is invalid: %w", err)
		}
	}
	for i := range st.QuizHistory {
		normalizeAnswers(&st.QuizHistory[i])
		if err := st.QuizHistory[i].Validate(); err != nil {
			return fmt.Errorf("hydrated quiz history entry %d is invalid: %w", i, err)
		}
	}
	if st.QuizHistory == nil {
		st.QuizHistory = []domain.QuizSession{}
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "quiz state loaded",
		"has_current_session", st.CurrentSession != nil,
		"history_size", len(st.QuizHistory))
	return nil
}

// normalizeAnswers pads or truncates answers to the question count.
func normalizeAnswers(s *domain.QuizSession) {
	if len(s.Answers) == len(s.Questions) {
		return
	}
	answers := make([]domain.Answer, len(s.Questions))
	for i := range answers {
		answers[i] = domain.Unanswered
		if i < len(s.Answers) {
			answers[i] = s.Answers[i]
		}
	}
	s.Answers = answers
}

// State reports the lifecycle position of the store.
func (s *Store) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() domain.SessionState {
	if s.state.CurrentSession == nil {
		return domain.SessionIdle
	}
	return s.state.CurrentSession.State()
}

// Current returns a copy of the current session, if any.
func (s *Store) Current() (domain.QuizSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.CurrentSession == nil {
		return domain.QuizSession{}, false
	}
	return s.state.CurrentSession.Clone(), true
}

// History returns copies of the completed sessions, most recent first.
func (s *Store) History() []domain.QuizSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.QuizSession, len(s.state.QuizHistory))
	for i, sess := range s.state.QuizHistory {
		out[i] = sess.Clone()
	}
	return out
}

// StartQuiz validates questions and replaces any current session with a new
// one on subject.
func (s *Store) StartQuiz(ctx context.Context, subject string, questions []domain.QuizQuestion) (domain.QuizSession, error) {
	if err := domain.ValidateQuestions(questions); err != nil {
		return domain.QuizSession{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := domain.NewQuizSession(subject, questions, s.clock.Now())
	if prev := s.state.CurrentSession; prev != nil && !prev.Completed {
		s.logger.InfoContext(ctx, "abandoning unfinished quiz session", "session_id", prev.ID)
	}
	s.state.CurrentSession = &sess
	s.persistLocked(ctx)

	s.logger.InfoContext(ctx, "quiz session started",
		"session_id", sess.ID,
		"subject", subject,
		"question_count", len(sess.Questions))
	return sess.Clone(), nil
}

// inProgressLocked returns the current session if it can accept answers.
func (s *Store) inProgressLocked() (*domain.QuizSession, error) {
	sess := s.state.CurrentSession
	if sess == nil {
		return nil, domain.ErrNoActiveSession
	}
	if sess.Completed {
		return nil, domain.ErrSessionCompleted
	}
	return sess, nil
}

// AnswerQuestion records answerIndex for questionIndex, overwriting any prior
// answer. It does not move the cursor.
func (s *Store) AnswerQuestion(ctx context.Context, questionIndex, answerIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.inProgressLocked()
	if err != nil {
		return err
	}
	if questionIndex < 0 || questionIndex >= len(sess.Questions) {
		return fmt.Errorf("%w: %d not in [0,%d)", domain.ErrQuestionOutOfRange, questionIndex, len(sess.Questions))
	}
	if answerIndex < 0 || answerIndex >= len(sess.Questions[questionIndex].Options) {
		return fmt.Errorf("%w: %d not in [0,%d)", domain.ErrAnswerOutOfRange,
			answerIndex, len(sess.Questions[questionIndex].Options))
	}

	sess.Answers[questionIndex] = domain.Answer(answerIndex)
	s.persistLocked(ctx)
	return nil
}

// NextQuestion moves the cursor forward. It refuses to move past the last
// question.
func (s *Store) NextQuestion(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.inProgressLocked()
	if err != nil {
		return err
	}
	if sess.IsLastQuestion() {
		return fmt.Errorf("%w: already on the last question", domain.ErrQuestionOutOfRange)
	}

	sess.CurrentQuestion++
	s.persistLocked(ctx)
	return nil
}

// CompleteQuiz scores the current session, marks it completed and prepends
// it to the history. The session stays current until cleared.
func (s *Store) CompleteQuiz(ctx context.Context) (domain.QuizSession, error) {
	s.mu.Lock()

	sess, err := s.inProgressLocked()
	if err != nil {
		s.mu.Unlock()
		return domain.QuizSession{}, err
	}

	now := s.clock.Now()
	sess.Score = sess.ComputeScore()
	sess.Completed = true

	history := make([]domain.QuizSession, 0, len(s.state.QuizHistory)+1)
	history = append(history, sess.Clone())
	s.state.QuizHistory = append(history, s.state.QuizHistory...)
	s.persistLocked(ctx)

	completed := sess.Clone()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "quiz session completed",
		"session_id", completed.ID,
		"subject", completed.Subject,
		"score", completed.Score)

	if err := events.Emit(ctx, s.emitter, events.TypeQuizCompleted, events.QuizCompletedPayload{
		SessionID: completed.ID,
		Subject:   completed.Subject,
		Score:     completed.Score,
		Correct:   completed.CorrectCount(),
		Total:     len(completed.Questions),
	}, now); err != nil {
		s.logger.WarnContext(ctx, "failed to emit event", "event_type", events.TypeQuizCompleted, "error", err)
	}

	return completed, nil
}

// ClearCurrentSession drops the current session. History is untouched.
func (s *Store) ClearCurrentSession(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.CurrentSession = nil
	s.persistLocked(ctx)
}

// persistLocked serializes the state and queues it for writing.
// s.mu must be held.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := store.Encode(s.state)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode quiz state", "error", err)
		return
	}
	if err := s.persister.Enqueue(store.QuizStoreKey, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to queue quiz state", "error", err)
	}
}
