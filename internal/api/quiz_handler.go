package api

import (
	"log/slog"
	"net/http"

	"github.com/snapsolve/snapsolve/internal/api/shared"
	"github.com/snapsolve/snapsolve/internal/platform/logger"
	"github.com/snapsolve/snapsolve/internal/redact"
	"github.com/snapsolve/snapsolve/internal/service"
)

// QuizHandler handles quiz session HTTP requests
type QuizHandler struct {
	studyService service.StudyService
	logger       *slog.Logger
}

// NewQuizHandler creates a new QuizHandler
func NewQuizHandler(studyService service.StudyService, logger *slog.Logger) *QuizHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizHandler{
		studyService: studyService,
		logger:       logger.With("component", "quiz_handler"),
	}
}

// StartQuiz handles POST /api/quizzes requests
func (h *QuizHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req StartQuizRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	session, err := h.studyService.StartQuiz(r.Context(), req.Subject)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate quiz")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session))
}

// GetCurrent handles GET /api/quizzes/current requests
func (h *QuizHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	session, ok := h.studyService.CurrentQuiz()
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "No quiz in progress")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// AnswerQuestion handles POST /api/quizzes/current/answers requests
func (h *QuizHandler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req AnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	session, err := h.studyService.AnswerQuestion(r.Context(), req.QuestionIndex, *req.AnswerIndex)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record answer")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// NextQuestion handles POST /api/quizzes/current/next requests
func (h *QuizHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	session, err := h.studyService.NextQuestion(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to move to the next question")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// Advance handles POST /api/quizzes/current/advance requests.
// It completes the quiz when the current question is the last one.
func (h *QuizHandler) Advance(w http.ResponseWriter, r *http.Request) {
	result, err := h.studyService.Advance(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to advance quiz")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, AdvanceResponse{
		Session:   sessionToResponse(result.Session),
		Completed: result.Completed,
	})
}

// CompleteQuiz handles POST /api/quizzes/current/complete requests
func (h *QuizHandler) CompleteQuiz(w http.ResponseWriter, r *http.Request) {
	session, err := h.studyService.CompleteQuiz(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete quiz")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// ClearCurrent handles DELETE /api/quizzes/current requests
func (h *QuizHandler) ClearCurrent(w http.ResponseWriter, r *http.Request) {
	h.studyService.ClearQuiz(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// GetHistory handles GET /api/quizzes/history requests
func (h *QuizHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history := h.studyService.QuizHistory()
	resp := QuizHistoryResponse{Sessions: make([]QuizSessionResponse, 0, len(history))}
	for _, s := range history {
		resp.Sessions = append(resp.Sessions, sessionToResponse(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
