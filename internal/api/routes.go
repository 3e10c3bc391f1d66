package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/snapsolve/snapsolve/internal/service"
)

// RegisterRoutes mounts the /api routes on r.
func RegisterRoutes(r chi.Router, studyService service.StudyService, maxImageBytes int64, logger *slog.Logger) {
	profileHandler := NewProfileHandler(studyService, logger)
	solveHandler := NewSolveHandler(studyService, maxImageBytes, logger)
	quizHandler := NewQuizHandler(studyService, logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/subjects", profileHandler.ListSubjects)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profileHandler.GetProfile)
			r.Post("/activity", profileHandler.RecordActivity)
			r.Put("/avatar", profileHandler.SetAvatar)
			r.Post("/pro", profileHandler.UpgradeToPro)
			r.Post("/limits/reset", profileHandler.ResetDailyLimits)
		})

		r.Post("/solves", solveHandler.SolveImage)
		r.Post("/solves/similar", solveHandler.SimilarQuestion)

		r.Route("/quizzes", func(r chi.Router) {
			r.Post("/", quizHandler.StartQuiz)
			r.Get("/history", quizHandler.GetHistory)
			r.Get("/current", quizHandler.GetCurrent)
			r.Delete("/current", quizHandler.ClearCurrent)
			r.Post("/current/answers", quizHandler.AnswerQuestion)
			r.Post("/current/next", quizHandler.NextQuestion)
			r.Post("/current/advance", quizHandler.Advance)
			r.Post("/current/complete", quizHandler.CompleteQuiz)
		})
	})
}
