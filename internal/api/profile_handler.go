package api

import (
	"log/slog"
	"net/http"

	"github.com/snapsolve/snapsolve/internal/api/shared"
	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/platform/logger"
	"github.com/snapsolve/snapsolve/internal/redact"
	"github.com/snapsolve/snapsolve/internal/service"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	studyService service.StudyService
	logger       *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(studyService service.StudyService, logger *slog.Logger) *ProfileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{
		studyService: studyService,
		logger:       logger.With("component", "profile_handler"),
	}
}

// GetProfile handles GET /api/profile requests
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.profileResponse(h.studyService.Profile()))
}

// RecordActivity handles POST /api/profile/activity requests
func (h *ProfileHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	profile := h.studyService.RecordActivity(r.Context())
	shared.RespondWithJSON(w, r, http.StatusOK, h.profileResponse(profile))
}

// SetAvatar handles PUT /api/profile/avatar requests
func (h *ProfileHandler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SetAvatarRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	profile := h.studyService.SetAvatar(r.Context(), req.AvatarID)
	shared.RespondWithJSON(w, r, http.StatusOK, h.profileResponse(profile))
}

// UpgradeToPro handles POST /api/profile/pro requests
func (h *ProfileHandler) UpgradeToPro(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req UpgradeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	profile, err := h.studyService.UpgradeToPro(r.Context(), req.Receipt)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to upgrade")
		return
	}

	log.Info("pro upgrade applied", slog.String("user_id", profile.UserID))
	shared.RespondWithJSON(w, r, http.StatusOK, h.profileResponse(profile))
}

// ResetDailyLimits handles POST /api/profile/limits/reset requests
func (h *ProfileHandler) ResetDailyLimits(w http.ResponseWriter, r *http.Request) {
	profile := h.studyService.ResetDailyLimits(r.Context())
	shared.RespondWithJSON(w, r, http.StatusOK, h.profileResponse(profile))
}

// ListSubjects handles GET /api/subjects requests
func (h *ProfileHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, SubjectsResponse{Subjects: domain.Subjects()})
}

func (h *ProfileHandler) profileResponse(p domain.UserProfile) ProfileResponse {
	return ProfileResponse{
		UserProfile:   p,
		XPIntoLevel:   p.XPIntoLevel(),
		XPToNextLevel: p.XPToNextLevel(),
		Remaining: QuotaResponse{
			Solves:  h.studyService.Remaining(domain.QuotaSolve),
			Quizzes: h.studyService.Remaining(domain.QuotaQuiz),
		},
		StreakCalendar: h.studyService.StreakCalendar(CalendarDays),
	}
}
