package providers

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"matching-workers/internal/common/errors"
	"matching-workers/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newCachedStore(t *testing.T, next WorkerStore) (*CachedWorkerStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCachedWorkerStore(next, rdb, time.Minute, logger.NewZapAdapter(zaptest.NewLogger(t))), mr
}

func TestCachedWorkerStore_GetWorkers(t *testing.T) {
	ctx := context.Background()

	t.Run("loads misses and writes them back", func(t *testing.T) {
		next := newFakeWorkerStore(profile("w-1", "Accra"), profile("w-2", "Tema"))
		store, mr := newCachedStore(t, next)

		workers, err := store.GetWorkers(ctx, []string{"w-2", "w-1", "w-404"})
		require.NoError(t, err)
		require.Len(t, workers, 2)
		assert.Equal(t, "w-2", workers[0].ID)
		assert.Equal(t, "w-1", workers[1].ID)

		assert.True(t, mr.Exists("worker:profile:w-1"))
		assert.True(t, mr.Exists("worker:profile:w-2"))
		assert.False(t, mr.Exists("worker:profile:w-404"))
		assert.Equal(t, time.Minute, mr.TTL("worker:profile:w-1"))
	})

	t.Run("serves hits from cache", func(t *testing.T) {
		next := newFakeWorkerStore(profile("w-1", "Accra"), profile("w-2", "Tema"))
		store, _ := newCachedStore(t, next)

		_, err := store.GetWorkers(ctx, []string{"w-1"})
		require.NoError(t, err)

		workers, err := store.GetWorkers(ctx, []string{"w-1", "w-2"})
		require.NoError(t, err)
		require.Len(t, workers, 2)
		assert.Equal(t, "w-1", workers[0].ID)
		require.NotNil(t, workers[0].HourlyRate)
		assert.Equal(t, 40.0, *workers[0].HourlyRate)

		require.Equal(t, 2, next.calls())
		assert.Equal(t, []string{"w-2"}, next.requests[1])
	})

	t.Run("ignores corrupt entries", func(t *testing.T) {
		next := newFakeWorkerStore(profile("w-1", "Accra"))
		store, mr := newCachedStore(t, next)
		require.NoError(t, mr.Set("worker:profile:w-1", "{not json"))

		workers, err := store.GetWorkers(ctx, []string{"w-1"})
		require.NoError(t, err)
		require.Len(t, workers, 1)
		assert.Equal(t, 1, next.calls())
		assert.True(t, mr.Exists("worker:profile:w-1"), "refilled from the store")
	})

	t.Run("evicts corrupt entries the store no longer has", func(t *testing.T) {
		next := newFakeWorkerStore(profile("w-1", "Accra"))
		store, mr := newCachedStore(t, next)
		require.NoError(t, mr.Set("worker:profile:gone", "{not json"))

		workers, err := store.GetWorkers(ctx, []string{"w-1", "gone"})
		require.NoError(t, err)
		require.Len(t, workers, 1)
		assert.False(t, mr.Exists("worker:profile:gone"))
	})

	t.Run("store errors propagate", func(t *testing.T) {
		next := newFakeWorkerStore()
		next.err = errors.NewQueryTimeoutError("worker_profiles")
		store, _ := newCachedStore(t, next)

		_, err := store.GetWorkers(ctx, []string{"w-1"})
		assert.True(t, errors.IsCode(err, errors.ErrCodeQueryTimeout))
	})
}

func TestCachedWorkerStore_GetWorker(t *testing.T) {
	ctx := context.Background()
	next := newFakeWorkerStore(profile("w-1", "Accra"))
	store, mr := newCachedStore(t, next)

	w, err := store.GetWorker(ctx, "w-1")
	require.NoError(t, err)
	assert.Equal(t, "Accra", w.Location)
	assert.True(t, mr.Exists("worker:profile:w-1"))

	_, err = store.GetWorker(ctx, "w-1")
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls())

	_, err = store.GetWorker(ctx, "ghost")
	assert.True(t, errors.IsCode(err, errors.ErrCodeWorkerNotFound))
}

func TestCachedWorkerStore_Invalidate(t *testing.T) {
	ctx := context.Background()
	next := newFakeWorkerStore(profile("w-1", "Accra"), profile("w-2", "Tema"))
	store, mr := newCachedStore(t, next)

	_, err := store.GetWorkers(ctx, []string{"w-1", "w-2"})
	require.NoError(t, err)

	require.NoError(t, store.Invalidate(ctx, "w-1"))
	assert.False(t, mr.Exists("worker:profile:w-1"))
	assert.True(t, mr.Exists("worker:profile:w-2"))
	assert.NoError(t, store.Invalidate(ctx))
}

func TestCachedWorkerStore_RedisDown(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectMGet("worker:profile:w-1").SetErr(stderrors.New("connection refused"))

	next := newFakeWorkerStore(profile("w-1", "Accra"))
	store := NewCachedWorkerStore(next, db, time.Minute, logger.NewZapAdapter(zaptest.NewLogger(t)))

	workers, err := store.GetWorkers(context.Background(), []string{"w-1"})

	require.NoError(t, err)
	require.Len(t, workers, 1)
	assert.Equal(t, "w-1", workers[0].ID)
	assert.Equal(t, 1, next.calls())
}
