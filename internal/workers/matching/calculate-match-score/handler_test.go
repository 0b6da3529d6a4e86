// internal/workers/matching/calculate-match-score/handler_test.go
package calculatematchscore

import (
	"context"
	"testing"
	"time"

	"matching-workers/internal/common/config"
	"matching-workers/internal/common/errors"
	"matching-workers/internal/common/logger"
	"matching-workers/internal/matching"
	"matching-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func ptr(v float64) *float64 {
	return &v
}

func createTestJob() models.JobRequest {
	return models.JobRequest{
		ID:             "job-1",
		Category:       "plumbing",
		Location:       "Accra",
		RequiredSkills: []string{"Pipe Repair"},
		Budget:         ptr(400),
		EstimatedHours: ptr(8),
	}
}

func createTestWorker() models.WorkerProfile {
	return models.WorkerProfile{
		ID:                       "w-1",
		Location:                 "Accra",
		Skills:                   []string{"Pipe Repair", "Drainage"},
		HourlyRate:               ptr(45),
		Rating:                   4.8,
		CompletionRate:           96,
		AverageResponseTimeHours: ptr(1.5),
		Certifications:           []string{"Ghana Institute of Plumbers"},
	}
}

type fakeWorkerStore struct {
	workers map[string]models.WorkerProfile
}

func (f *fakeWorkerStore) GetWorker(_ context.Context, id string) (models.WorkerProfile, error) {
	w, ok := f.workers[id]
	if !ok {
		return models.WorkerProfile{}, errors.NewWorkerNotFoundError(id)
	}
	return w, nil
}

func (f *fakeWorkerStore) GetWorkers(ctx context.Context, ids []string) ([]models.WorkerProfile, error) {
	out := []models.WorkerProfile{}
	for _, id := range ids {
		if w, ok := f.workers[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func newTestHandler(t *testing.T, store *fakeWorkerStore) *Handler {
	engine, err := matching.NewEngine(matching.DefaultTables(), matching.WithLogger(&testLogger{t: t}))
	require.NoError(t, err)

	h := NewHandler(LoadConfig(config.WorkerConfig{}), engine, nil, nil, nil, &testLogger{t: t})
	if store != nil {
		h.workers = store
	}
	return h
}

// ==========================
// Tests
// ==========================

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 10*time.Second, LoadConfig(config.WorkerConfig{}).Timeout)
	assert.Equal(t, 2*time.Second, LoadConfig(config.WorkerConfig{Timeout: 2000}).Timeout)
}

func TestHandler_Execute_InlineWorker(t *testing.T) {
	h := newTestHandler(t, nil)
	worker := createTestWorker()

	out, err := h.Execute(context.Background(), &Input{Job: createTestJob(), Worker: &worker})

	require.NoError(t, err)
	assert.InDelta(t, 0.8105, out.MatchScore.TotalScore, 1e-3)
	assert.Len(t, out.MatchScore.Breakdown, 5)
	assert.Equal(t, []string{
		"Conveniently located near your project",
		"Highly reliable with excellent track record",
		"Competitive pricing within your budget",
	}, out.Reasoning)
	assert.Equal(t, []string{"Verify specific skill requirements during interview"}, out.Recommendations)
}

func TestHandler_Execute_StoredWorker(t *testing.T) {
	h := newTestHandler(t, &fakeWorkerStore{workers: map[string]models.WorkerProfile{"w-1": createTestWorker()}})

	out, err := h.Execute(context.Background(), &Input{Job: createTestJob(), WorkerID: "w-1"})

	require.NoError(t, err)
	assert.Greater(t, out.MatchScore.TotalScore, 0.8)
	assert.False(t, out.MatchScore.Timestamp.IsZero())
}

func TestHandler_Execute_Errors(t *testing.T) {
	store := &fakeWorkerStore{workers: map[string]models.WorkerProfile{}}
	worker := createTestWorker()

	tests := []struct {
		name     string
		store    *fakeWorkerStore
		input    *Input
		wantCode errors.ErrorCode
	}{
		{"no worker", store, &Input{Job: createTestJob()}, errors.ErrCodeInvalidJobRequest},
		{"no store", nil, &Input{Job: createTestJob(), WorkerID: "w-1"}, errors.ErrCodeInvalidJobRequest},
		{"unknown worker", store, &Input{Job: createTestJob(), WorkerID: "ghost"}, errors.ErrCodeWorkerNotFound},
		{"invalid job", store, &Input{Job: models.JobRequest{Category: "plumbing"}, Worker: &worker}, errors.ErrCodeInvalidJobRequest},
		{"unknown experience level", store, &Input{Job: models.JobRequest{Category: "plumbing", Location: "Accra", ExperienceLevel: "guru"}, Worker: &worker}, errors.ErrCodeInvalidJobRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.store)
			_, err := h.Execute(context.Background(), tt.input)
			assert.Equal(t, tt.wantCode, errors.Code(err))
		})
	}
}

func TestHandler_Run_ParseError(t *testing.T) {
	h := newTestHandler(t, nil)

	_, err := h.run(context.Background(), []byte(`{"job": "not an object"}`))

	assert.True(t, errors.IsCode(err, errors.ErrCodePayloadValidationFailed))
}
