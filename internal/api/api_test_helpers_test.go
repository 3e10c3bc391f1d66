package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/snapsolve/snapsolve/internal/api"
	"github.com/snapsolve/snapsolve/internal/api/middleware"
	"github.com/snapsolve/snapsolve/internal/api/shared"
	"github.com/snapsolve/snapsolve/internal/clock"
	"github.com/snapsolve/snapsolve/internal/config"
	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/mocks"
	"github.com/snapsolve/snapsolve/internal/progress"
	"github.com/snapsolve/snapsolve/internal/quiz"
	"github.com/snapsolve/snapsolve/internal/service"
	"github.com/snapsolve/snapsolve/internal/store"
	"github.com/stretchr/testify/require"
)

// pngBytes starts with the PNG signature so content sniffing reports image/png.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

type syncPersister struct {
	adapter store.Adapter
}

func (p syncPersister) Enqueue(key string, value []byte) error {
	return p.adapter.Set(context.Background(), key, value)
}

type testServer struct {
	router    http.Handler
	generator *mocks.MockGenerator
	verifier  *mocks.MockReceiptVerifier
}

func newTestServer(t *testing.T, maxImageBytes int64) *testServer {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adapter := store.NewMemory()
	persister := syncPersister{adapter: adapter}
	clk := clock.NewManual(time.Date(2026, 9, 14, 16, 0, 0, 0, time.UTC))

	ps, err := progress.NewStore(progress.Config{
		Adapter:   adapter,
		Persister: persister,
		Clock:     clk,
		Limits:    domain.DefaultQuotaLimits(),
		Logger:    logger,
	})
	require.NoError(t, err)
	require.NoError(t, ps.Load(ctx))

	qs, err := quiz.NewStore(quiz.Config{Adapter: adapter, Persister: persister, Clock: clk, Logger: logger})
	require.NoError(t, err)
	require.NoError(t, qs.Load(ctx))

	gen := &mocks.MockGenerator{Questions: mocks.SampleQuestions(3), Solution: mocks.SampleSolution()}
	verifier := &mocks.MockReceiptVerifier{}

	svc, err := service.NewStudyService(service.StudyConfig{
		Progress:      ps,
		Quiz:          qs,
		Generator:     gen,
		Verifier:      verifier,
		Rewards:       config.RewardsConfig{SolveXP: 10, QuizXP: 20, SimilarXP: 5},
		QuestionCount: 3,
		Logger:        logger,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(logger))
	api.RegisterRoutes(r, svc, maxImageBytes, logger)

	return &testServer{router: r, generator: gen, verifier: verifier}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(t *testing.T, field string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "problem.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/solves", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	return decode[shared.ErrorResponse](t, rec)
}
