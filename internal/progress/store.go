package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/snapsolve/snapsolve/internal/clock"
	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/events"
	"github.com/snapsolve/snapsolve/internal/store"
)

// Unlimited is reported by Remaining for pro profiles.
const Unlimited = -1

// Config holds the collaborators of a Store. Emitter is optional.
type Config struct {
	Adapter   store.Adapter
	Persister store.Persister
	Clock     clock.Clock
	Limits    domain.QuotaLimits
	Emitter   events.EventEmitter
	Logger    *slog.Logger
}

// Store is the user progress store. It is safe for concurrent use.
type Store struct {
	adapter   store.Adapter
	persister store.Persister
	clock     clock.Clock
	limits    domain.QuotaLimits
	emitter   events.EventEmitter
	logger    *slog.Logger

	mu      sync.Mutex
	profile domain.UserProfile
}

// NewStore creates a Store holding a fresh, unsaved profile. Call Load to
// hydrate it from the adapter.
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
		limits:    cfg.Limits,
		emitter:   cfg.Emitter,
		logger:    cfg.Logger.With("component", "progress_store"),
		profile:   domain.NewUserProfile(clock.Today(cfg.Clock).String()),
	}, nil
}

// Load hydrates the store from the adapter. A missing blob yields a fresh
// profile which is persisted immediately. The level is always re-derived from
// the experience total.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.adapter.Get(ctx, store.UserStoreKey)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load user progress: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if errors.Is(err, store.ErrNotFound) {
		s.profile = domain.NewUserProfile(clock.Today(s.clock).String())
		s.logger.InfoContext(ctx, "created new user profile", "user_id", s.profile.UserID)
		s.persistLocked(ctx)
		return nil
	}

	var p domain.UserProfile
	if err := store.Decode(data, &p); err != nil {
		return fmt.Errorf("decode user progress: %w", err)
	}
	s.profile = normalize(p, clock.Today(s.clock))
	if err := s.profile.Validate(); err != nil {
		return fmt.Errorf("hydrated user progress is invalid: %w", err)
	}

	s.logger.InfoContext(ctx, "user progress loaded",
		"user_id", s.profile.UserID,
		"xp", s.profile.XP,
		"level", s.profile.Level,
		"streak", s.profile.Streak)
	return nil
}

// normalize repairs fields a legacy or hand-edited blob may lack.
func normalize(p domain.UserProfile, today clock.Day) domain.UserProfile {
	if p.UserID == "" {
		p.UserID = domain.NewUserProfile(today.String()).UserID
	}
	if p.AvatarID == 0 {
		p.AvatarID = domain.DefaultAvatarID
	}
	p.XP = max(p.XP, 0)
	p.Level = domain.LevelForXP(p.XP)
	p.DailySolves = max(p.DailySolves, 0)
	p.DailyQuizzes = max(p.DailyQuizzes, 0)
	p.Streak = max(p.Streak, 0)
	if p.LastResetDate == "" {
		p.LastResetDate = today.String()
	}
	return p
}

// Profile returns a snapshot of the current profile.
func (s *Store) Profile() domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// IncrementXP adds amount to the experience total and recomputes the level.
// Negative amounts are rejected without mutation.
func (s *Store) IncrementXP(ctx context.Context, amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidXPAmount, amount)
	}

	s.mu.Lock()
	now := s.clock.Now()
	from := s.profile.Level
	s.profile.XP += amount
	s.profile.Level = domain.LevelForXP(s.profile.XP)
	snapshot := s.profile
	s.persistLocked(ctx)
	s.mu.Unlock()

	if snapshot.Level > from {
		s.logger.InfoContext(ctx, "level up", "from", from, "to", snapshot.Level, "xp", snapshot.XP)
		s.emit(ctx, events.TypeLevelUp, events.LevelUpPayload{
			UserID:    snapshot.UserID,
			FromLevel: from,
			ToLevel:   snapshot.Level,
			XP:        snapshot.XP,
		}, now)
	}
	return nil
}

// UseSolve consumes one photo solve from today's allowance.
func (s *Store) UseSolve(ctx context.Context) domain.Decision {
	return s.tryConsume(ctx, domain.QuotaSolve)
}

// UseQuiz consumes one quiz generation from today's allowance.
func (s *Store) UseQuiz(ctx context.Context) domain.Decision {
	return s.tryConsume(ctx, domain.QuotaQuiz)
}

// tryConsume performs the day reset, the threshold check and the increment as
// one atomic step.
func (s *Store) tryConsume(ctx context.Context, kind domain.QuotaKind) domain.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := clock.Today(s.clock).String()
	changed := false

	if s.profile.LastResetDate != today {
		s.profile.DailySolves = 0
		s.profile.DailyQuizzes = 0
		s.profile.LastResetDate = today
		changed = true
	}

	counter := s.counterLocked(kind)
	decision := domain.Denied
	if counter != nil && (s.profile.IsPro || *counter < s.limits.Limit(kind)) {
		*counter++
		s.profile.LastResetDate = today
		decision = domain.Granted
		changed = true
	}

	if changed {
		s.persistLocked(ctx)
	}

	s.logger.DebugContext(ctx, "quota decision",
		"kind", kind,
		"decision", decision.String(),
		"is_pro", s.profile.IsPro,
		"daily_solves", s.profile.DailySolves,
		"daily_quizzes", s.profile.DailyQuizzes)
	return decision
}

func (s *Store) counterLocked(kind domain.QuotaKind) *int {
	switch kind {
	case domain.QuotaSolve:
		return &s.profile.DailySolves
	case domain.QuotaQuiz:
		return &s.profile.DailyQuizzes
	default:
		return nil
	}
}

// Remaining reports how many units of kind are left today, or Unlimited for
// pro profiles. It never mutates state.
func (s *Store) Remaining(kind domain.QuotaKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile.IsPro {
		return Unlimited
	}

	used := 0
	if s.profile.LastResetDate == clock.Today(s.clock).String() {
		switch kind {
		case domain.QuotaSolve:
			used = s.profile.DailySolves
		case domain.QuotaQuiz:
			used = s.profile.DailyQuizzes
		}
	}
	return max(s.limits.Limit(kind)-used, 0)
}

// UpdateStreak records activity for today. A second call on the same day is
// a no-op; activity on the day after the last active day extends the streak;
// any longer gap restarts it at 1.
func (s *Store) UpdateStreak(ctx context.Context) {
	s.mu.Lock()
	now := s.clock.Now()
	today := clock.DayOf(now)

	if s.profile.LastActiveDate == today.String() {
		s.mu.Unlock()
		return
	}

	if s.profile.LastActiveDate == today.Prev().String() {
		s.profile.Streak++
	} else {
		s.profile.Streak = 1
	}
	s.profile.LastActiveDate = today.String()
	snapshot := s.profile
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.emit(ctx, events.TypeStreakUpdated, events.StreakUpdatedPayload{
		UserID: snapshot.UserID,
		Streak: snapshot.Streak,
		Day:    today.String(),
	}, now)
}

// SetAvatar selects the profile avatar.
func (s *Store) SetAvatar(ctx context.Context, avatarID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.AvatarID = avatarID
	s.persistLocked(ctx)
}

// UpgradeToPro switches the profile to the pro tier. The upgrade is
// irreversible; repeating it is a no-op.
func (s *Store) UpgradeToPro(ctx context.Context) {
	s.mu.Lock()
	if s.profile.IsPro {
		s.mu.Unlock()
		return
	}
	now := s.clock.Now()
	s.profile.IsPro = true
	snapshot := s.profile
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "profile upgraded to pro", "user_id", snapshot.UserID)
	s.emit(ctx, events.TypeProUpgraded, events.ProUpgradedPayload{UserID: snapshot.UserID}, now)
}

// ResetDailyLimits zeroes both daily counters and anchors them to today.
func (s *Store) ResetDailyLimits(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.DailySolves = 0
	s.profile.DailyQuizzes = 0
	s.profile.LastResetDate = clock.Today(s.clock).String()
	s.persistLocked(ctx)
}

// persistLocked serializes the profile and queues it for writing.
// s.mu must be held so snapshots reach the persister in mutation order.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := store.Encode(s.profile)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode user progress", "error", err)
		return
	}
	if err := s.persister.Enqueue(store.UserStoreKey, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to queue user progress", "error", err)
	}
}

func (s *Store) emit(ctx context.Context, eventType string, payload interface{}, at time.Time) {
	if err := events.Emit(ctx, s.emitter, eventType, payload, at); err != nil {
		s.logger.WarnContext(ctx, "failed to emit event", "event_type", eventType, "error", err)
	}
}
