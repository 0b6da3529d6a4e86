package providers

import (
	"context"
	stderrors "errors"
	"testing"

	"matching-workers/internal/common/errors"
	"matching-workers/internal/common/logger"
	"matching-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCandidatePool_Candidates(t *testing.T) {
	log := logger.NewZapAdapter(zaptest.NewLogger(t))
	job := models.JobRequest{ID: "job-1", Category: "plumbing", Location: "Accra"}

	t.Run("search then load in search order", func(t *testing.T) {
		search := &fakeSearch{ids: []string{"w-3", "w-1", "w-9"}}
		store := newFakeWorkerStore(profile("w-1", "Accra"), profile("w-3", "Tema"))
		pool := NewCandidatePool(search, store, 50, log)

		workers, err := pool.Candidates(context.Background(), job)

		require.NoError(t, err)
		require.Len(t, workers, 2)
		assert.Equal(t, "w-3", workers[0].ID)
		assert.Equal(t, "w-1", workers[1].ID)
		assert.Equal(t, 50, search.size)
	})

	t.Run("default pool size", func(t *testing.T) {
		search := &fakeSearch{}
		pool := NewCandidatePool(search, newFakeWorkerStore(), 0, log)
		_, err := pool.Candidates(context.Background(), job)
		require.NoError(t, err)
		assert.Equal(t, 200, search.size)
	})

	t.Run("no hits skips the store", func(t *testing.T) {
		store := newFakeWorkerStore()
		pool := NewCandidatePool(&fakeSearch{}, store, 10, log)

		workers, err := pool.Candidates(context.Background(), job)

		require.NoError(t, err)
		assert.NotNil(t, workers)
		assert.Empty(t, workers)
		assert.Equal(t, 0, store.calls())
	})

	tests := []struct {
		name      string
		searchErr error
		storeErr  error
		wantCode  errors.ErrorCode
	}{
		{"search failure", errors.NewSearchQueryFailedError("candidates", stderrors.New("boom")), nil, errors.ErrCodeCandidateSearchFailed},
		{"search timeout kept", errors.NewSearchTimeoutError("candidates"), nil, errors.ErrCodeSearchTimeout},
		{"store failure", nil, errors.NewQueryExecutionFailedError("worker_profiles", stderrors.New("boom")), errors.ErrCodeCandidateFetchFailed},
		{"store timeout kept", nil, errors.NewQueryTimeoutError("worker_profiles"), errors.ErrCodeQueryTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeWorkerStore(profile("w-1", "Accra"))
			store.err = tt.storeErr
			pool := NewCandidatePool(&fakeSearch{ids: []string{"w-1"}, err: tt.searchErr}, store, 10, log)

			_, err := pool.Candidates(context.Background(), job)

			assert.Equal(t, tt.wantCode, errors.Code(err))
		})
	}
}
