package api

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"matching-workers/internal/common/database"
	"matching-workers/internal/common/errors"
	"matching-workers/internal/common/logger"
	"matching-workers/internal/common/validation"
	"matching-workers/internal/matching"
	"matching-workers/internal/models"
	"matching-workers/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type fakeCandidates struct {
	workers []models.WorkerProfile
	err     error
	calls   int
}

func (f *fakeCandidates) Candidates(_ context.Context, _ models.JobRequest) ([]models.WorkerProfile, error) {
	f.calls++
	return f.workers, f.err
}

const plumbingJob = `{"id":"job-1","category":"plumbing","location":"Accra","requiredSkills":["Pipe Repair"],"budget":400,"estimatedHours":8}`

func plumber(id string) models.WorkerProfile {
	rate, response := 45.0, 1.5
	return models.WorkerProfile{
		ID:                       id,
		Location:                 "Accra",
		Skills:                   []string{"Pipe Repair", "Drainage"},
		HourlyRate:               &rate,
		Rating:                   4.8,
		CompletionRate:           96,
		AverageResponseTimeHours: &response,
		Certifications:           []string{"Ghana Institute of Plumbers"},
	}
}

func newTestServer(t *testing.T, cfg Config, candidates CandidateSource, pingers map[string]database.Pinger) *gin.Engine {
	t.Helper()
	log := logger.NewTestLogger(t)
	engine, err := matching.NewEngine(matching.DefaultTables(), matching.WithLogger(log))
	require.NoError(t, err)
	return NewServer(cfg, engine, candidates, nil, pingers, nil, log).Router()
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestServer(t, Config{}, nil, nil)

	rec := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = do(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReady(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return stderrors.New("connection refused") })

	t.Run("all dependencies up", func(t *testing.T) {
		router := newTestServer(t, Config{}, nil, map[string]database.Pinger{"postgres": ok, "redis": ok})
		rec := do(t, router, http.MethodGet, "/ready", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode[map[string]interface{}](t, rec)
		assert.Equal(t, "ready", body["status"])
	})

	t.Run("one dependency down", func(t *testing.T) {
		router := newTestServer(t, Config{}, nil, map[string]database.Pinger{"postgres": ok, "elasticsearch": down})
		rec := do(t, router, http.MethodGet, "/ready", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decode[map[string]interface{}](t, rec)
		checks := body["checks"].(map[string]interface{})
		assert.Equal(t, "ok", checks["postgres"])
		assert.Equal(t, "connection refused", checks["elasticsearch"])
	})
}

func TestMatch(t *testing.T) {
	t.Run("ranks inline candidates", func(t *testing.T) {
		router := newTestServer(t, Config{}, nil, nil)
		candidates, err := json.Marshal([]models.WorkerProfile{plumber("w-1"), plumber("w-2")})
		require.NoError(t, err)

		rec := do(t, router, http.MethodPost, "/v1/match", `{"job":`+plumbingJob+`,"candidates":`+string(candidates)+`,"options":{"maxResults":1}}`)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[matchResponse](t, rec)
		assert.NotEmpty(t, resp.MatchRequestID)
		assert.Equal(t, 1, resp.Count)
		require.Len(t, resp.Matches, 1)
		assert.Equal(t, "w-1", resp.Matches[0].Worker.ID)
		assert.InDelta(t, 0.8105, resp.Matches[0].MatchScore.TotalScore, 1e-3)
	})

	t.Run("nobody qualifies", func(t *testing.T) {
		router := newTestServer(t, Config{}, nil, nil)
		rec := do(t, router, http.MethodPost, "/v1/match", `{"job":`+plumbingJob+`,"candidates":[{"id":"w-1"}],"options":{"minimumScore":1}}`)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[matchResponse](t, rec)
		assert.Equal(t, 0, resp.Count)
		assert.NotNil(t, resp.Matches)
	})

	t.Run("searches the pool when candidates are absent", func(t *testing.T) {
		source := &fakeCandidates{workers: []models.WorkerProfile{plumber("w-9")}}
		router := newTestServer(t, Config{}, source, nil)

		rec := do(t, router, http.MethodPost, "/v1/match", `{"job":`+plumbingJob+`}`)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 1, source.calls)
		assert.Equal(t, "w-9", decode[matchResponse](t, rec).Matches[0].Worker.ID)
	})

	t.Run("deadline", func(t *testing.T) {
		router := newTestServer(t, Config{RequestTimeout: time.Nanosecond}, nil, nil)

		rec := do(t, router, http.MethodPost, "/v1/match", `{"job":`+plumbingJob+`,"candidates":[{"id":"w-1"}]}`)

		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		assert.Equal(t, string(errors.ErrCodeMatchingTimeout), decode[errorResponse](t, rec).Code)
	})

	tests := []struct {
		name       string
		source     *fakeCandidates
		body       string
		wantStatus int
		wantCode   errors.ErrorCode
	}{
		{"malformed body", nil, `{"job":`, http.StatusBadRequest, errors.ErrCodePayloadValidationFailed},
		{"invalid options", nil, `{"job":` + plumbingJob + `,"candidates":[],"options":{"maxResults":0}}`, http.StatusBadRequest, errors.ErrCodeInvalidOptions},
		{"missing location", nil, `{"job":{"category":"plumbing"},"candidates":[]}`, http.StatusBadRequest, errors.ErrCodeInvalidJobRequest},
		{"no candidates and no search", nil, `{"job":` + plumbingJob + `}`, http.StatusBadRequest, errors.ErrCodeInvalidJobRequest},
		{"search timeout", &fakeCandidates{err: errors.NewSearchTimeoutError("candidates")}, `{"job":` + plumbingJob + `}`, http.StatusGatewayTimeout, errors.ErrCodeSearchTimeout},
		{"search down", &fakeCandidates{err: errors.NewCandidateSearchFailedError(stderrors.New("boom"))}, `{"job":` + plumbingJob + `}`, http.StatusServiceUnavailable, errors.ErrCodeCandidateSearchFailed},
		{"index missing", &fakeCandidates{err: errors.NewIndexNotFoundError("workers")}, `{"job":` + plumbingJob + `}`, http.StatusInternalServerError, errors.ErrCodeIndexNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var source CandidateSource
			if tt.source != nil {
				source = tt.source
			}
			router := newTestServer(t, Config{}, source, nil)

			rec := do(t, router, http.MethodPost, "/v1/match", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, string(tt.wantCode), decode[errorResponse](t, rec).Code)
		})
	}
}

func TestScore(t *testing.T) {
	router := newTestServer(t, Config{}, nil, nil)

	t.Run("explains a pair", func(t *testing.T) {
		worker, err := json.Marshal(plumber("w-1"))
		require.NoError(t, err)

		rec := do(t, router, http.MethodPost, "/v1/score", `{"job":`+plumbingJob+`,"worker":`+string(worker)+`}`)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[scoreResponse](t, rec)
		assert.InDelta(t, 0.8105, resp.MatchScore.TotalScore, 1e-3)
		assert.Contains(t, resp.Reasoning, "Conveniently located near your project")
		assert.Equal(t, []string{"Verify specific skill requirements during interview"}, resp.Recommendations)
	})

	t.Run("worker required", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/score", `{"job":`+plumbingJob+`}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown experience level", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/score", `{"job":{"category":"plumbing","location":"Accra","experienceLevel":"guru"},"worker":{"id":"w-1"}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, string(errors.ErrCodeInvalidJobRequest), decode[errorResponse](t, rec).Code)
	})
}

func TestSchemaValidation(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	validator, err := validation.NewValidator(reg)
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	engine, err := matching.NewEngine(matching.DefaultTables(), matching.WithLogger(log))
	require.NoError(t, err)
	router := NewServer(Config{}, engine, nil, validator, nil, nil, log).Router()

	t.Run("valid match body", func(t *testing.T) {
		worker, err := json.Marshal(plumber("w-1"))
		require.NoError(t, err)

		rec := do(t, router, http.MethodPost, "/v1/match", `{"job":`+plumbingJob+`,"candidates":[`+string(worker)+`]}`)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	tests := []struct {
		name string
		path string
		body string
		want errors.ErrorCode
	}{
		{"match budget is a string", "/v1/match", `{"job":{"category":"plumbing","location":"Accra","budget":"400"},"candidates":[]}`, errors.ErrCodePayloadValidationFailed},
		{"score without worker", "/v1/score", `{"job":` + plumbingJob + `}`, errors.ErrCodePayloadValidationFailed},
		{"match job without location", "/v1/match", `{"job":{"category":"plumbing"},"candidates":[]}`, errors.ErrCodeInvalidJobRequest},
		{"score job without category", "/v1/score", `{"job":{"location":"Accra"},"worker":{"id":"w-1"}}`, errors.ErrCodeInvalidJobRequest},
		{"minimum score above one", "/v1/match", `{"job":` + plumbingJob + `,"candidates":[],"options":{"minimumScore":1.5}}`, errors.ErrCodeInvalidOptions},
		{"max results zero", "/v1/match", `{"job":` + plumbingJob + `,"candidates":[],"options":{"maxResults":0}}`, errors.ErrCodeInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, string(tt.want), decode[errorResponse](t, rec).Code)
		})
	}
}

func TestTables(t *testing.T) {
	router := newTestServer(t, Config{}, nil, nil)

	rec := do(t, router, http.MethodGet, "/v1/tables", "")

	require.Equal(t, http.StatusOK, rec.Code)
	tables := decode[matching.Tables](t, rec)
	assert.Len(t, tables.Regions, len(matching.DefaultTables().Regions))
	assert.NotEmpty(t, tables.Certifications)
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestServer(t, Config{}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
}
