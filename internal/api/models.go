package api

import (
	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/progress"
)

// CalendarDays is the length of the streak calendar in profile responses.
const CalendarDays = 7

// SetAvatarRequest defines the payload for selecting an avatar.
type SetAvatarRequest struct {
	AvatarID int `json:"avatarId" validate:"required,gte=1"`
}

// UpgradeRequest defines the payload for the pro upgrade endpoint.
type UpgradeRequest struct {
	// Receipt is the signed purchase receipt issued by the store backend
	Receipt string `json:"receipt" validate:"required"`
}

// SimilarQuestionRequest carries the solution a similar question is based on.
type SimilarQuestionRequest struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer" validate:"required"`
	Explanation string   `json:"explanation"`
	Steps       []string `json:"steps" validate:"required,min=1,dive,required"`
}

// StartQuizRequest defines the payload for generating a quiz.
type StartQuizRequest struct {
	// Subject is a catalog id such as "math"; unknown ids fall back to Mathematics
	Subject string `json:"subject" validate:"required"`
}

// AnswerRequest records an answer. QuestionIndex defaults to the current question.
type AnswerRequest struct {
	QuestionIndex *int `json:"questionIndex" validate:"omitempty,gte=0"`
	AnswerIndex   *int `json:"answerIndex" validate:"required,gte=0"`
}

// QuotaResponse holds the remaining daily allowances; -1 means unlimited.
type QuotaResponse struct {
	Solves  int `json:"solves"`
	Quizzes int `json:"quizzes"`
}

// ProfileResponse is the read view of the user profile.
type ProfileResponse struct {
	domain.UserProfile
	XPIntoLevel    int                    `json:"xpIntoLevel"`
	XPToNextLevel  int                    `json:"xpToNextLevel"`
	Remaining      QuotaResponse          `json:"remaining"`
	StreakCalendar []progress.CalendarDay `json:"streakCalendar"`
}

// SolveResponse carries a solution and the solves left today.
type SolveResponse struct {
	Solution        domain.Solution `json:"solution"`
	RemainingSolves int             `json:"remainingSolves"`
}

// QuizSessionResponse is the read view of a quiz session.
type QuizSessionResponse struct {
	domain.QuizSession
	State        domain.SessionState `json:"state"`
	CorrectCount int                 `json:"correctCount"`
	ScoreBand    domain.ScoreBand    `json:"scoreBand,omitempty"`
}

// AdvanceResponse reports the session after an advance.
type AdvanceResponse struct {
	Session   QuizSessionResponse `json:"session"`
	Completed bool                `json:"completed"`
}

// QuizHistoryResponse lists completed sessions, newest first.
type QuizHistoryResponse struct {
	Sessions []QuizSessionResponse `json:"sessions"`
}

// SubjectsResponse lists the quiz subject catalog.
type SubjectsResponse struct {
	Subjects []domain.Subject `json:"subjects"`
}

func sessionToResponse(s domain.QuizSession) QuizSessionResponse {
	resp := QuizSessionResponse{
		QuizSession:  s,
		State:        s.State(),
		CorrectCount: s.CorrectCount(),
	}
	if s.Completed {
		resp.ScoreBand = domain.BandForScore(s.Score)
	}
	return resp
}
