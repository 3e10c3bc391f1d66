package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/snapsolve/snapsolve/internal/api/shared"
	"github.com/snapsolve/snapsolve/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

func TestTraceMiddleware(t *testing.T) {
	base, logs := logger.NewTestLogger(t)

	var seenTrace string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTrace = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("handled")
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	NewTraceMiddleware(base)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, seenTrace)
	assert.Equal(t, seenTrace, rec.Header().Get(TraceIDHeader))

	entry := logger.LastEntry(t, logs)
	assert.Equal(t, "handled", entry["msg"])
	assert.Equal(t, seenTrace, entry["trace_id"])
}
