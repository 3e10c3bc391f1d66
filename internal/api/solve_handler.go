package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/snapsolve/snapsolve/internal/api/shared"
	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/generation"
	"github.com/snapsolve/snapsolve/internal/platform/logger"
	"github.com/snapsolve/snapsolve/internal/redact"
	"github.com/snapsolve/snapsolve/internal/service"
)

// DefaultMaxImageBytes bounds uploaded problem photos.
const DefaultMaxImageBytes = 10 << 20

// ImageFormField is the multipart field carrying the photo.
const ImageFormField = "image"

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
	"image/gif":  true,
}

// SolveHandler handles photo solve requests
type SolveHandler struct {
	studyService  service.StudyService
	maxImageBytes int64
	logger        *slog.Logger
}

// NewSolveHandler creates a new SolveHandler. A non-positive maxImageBytes
// selects DefaultMaxImageBytes.
func NewSolveHandler(studyService service.StudyService, maxImageBytes int64, logger *slog.Logger) *SolveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &SolveHandler{
		studyService:  studyService,
		maxImageBytes: maxImageBytes,
		logger:        logger.With("component", "solve_handler"),
	}
}

// SolveImage handles POST /api/solves requests.
// The photo is sent as multipart/form-data in the "image" field.
func (h *SolveHandler) SolveImage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxImageBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Image is too large")
			return
		}
		log.Warn("invalid multipart form", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(ImageFormField)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Image file is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Image could not be read", err)
		return
	}
	if int64(len(data)) > h.maxImageBytes {
		shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Image is too large")
		return
	}
	if len(data) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Image file is empty")
		return
	}

	mimeType := imageMIMEType(header.Header.Get("Content-Type"), data)
	if !allowedImageTypes[mimeType] {
		log.Debug("unsupported image type", slog.String("mime_type", mimeType))
		shared.RespondWithError(w, r, http.StatusUnsupportedMediaType, "Unsupported image type")
		return
	}

	solution, err := h.studyService.SolveImage(r.Context(), generation.Image{Data: data, MIMEType: mimeType})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to solve the question")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SolveResponse{
		Solution:        solution,
		RemainingSolves: h.studyService.Remaining(domain.QuotaSolve),
	})
}

// SimilarQuestion handles POST /api/solves/similar requests
func (h *SolveHandler) SimilarQuestion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SimilarQuestionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	similar, err := h.studyService.SimilarQuestion(r.Context(), domain.Solution{
		Question:    req.Question,
		Answer:      req.Answer,
		Explanation: req.Explanation,
		Steps:       req.Steps,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate similar question")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, similar)
}

// imageMIMEType prefers the declared part type and sniffs the content when
// the client sent none or a generic one.
func imageMIMEType(declared string, data []byte) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}
