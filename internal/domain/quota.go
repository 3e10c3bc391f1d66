package domain

// QuotaKind identifies a daily-gated action.
type QuotaKind string

const (
	// QuotaSolve gates photo solves.
	QuotaSolve QuotaKind = "solve"
	// QuotaQuiz gates quiz generation.
	QuotaQuiz QuotaKind = "quiz"
)

// Decision is the result of a try-consume on a daily quota.
type Decision int

const (
	// Denied means the allowance for today is exhausted and nothing was consumed.
	Denied Decision = iota
	// Granted means one unit of the allowance was consumed.
	Granted
)

// Allowed reports whether the decision granted the action.
func (d Decision) Allowed() bool {
	return d == Granted
}

func (d Decision) String() string {
	if d == Granted {
		return "granted"
	}
	return "denied"
}

// QuotaLimits holds the free-tier daily allowances. Pro profiles are unlimited.
type QuotaLimits struct {
	DailySolves  int
	DailyQuizzes int
}

// DefaultQuotaLimits returns the free-tier allowances: five photo solves and
// one quiz per day.
func DefaultQuotaLimits() QuotaLimits {
	return QuotaLimits{
		DailySolves:  5,
		DailyQuizzes: 1,
	}
}

// Limit returns the free-tier allowance for kind.
func (l QuotaLimits) Limit(kind QuotaKind) int {
	switch kind {
	case QuotaSolve:
		return l.DailySolves
	case QuotaQuiz:
		return l.DailyQuizzes
	default:
		return 0
	}
}
