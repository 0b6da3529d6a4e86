package providers

import (
	"context"
	"time"

	"matching-workers/internal/common/logger"
	"matching-workers/internal/models"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const workerKeyPrefix = "worker:profile:"

// CachedWorkerStore puts a Redis cache-aside layer in front of another
// WorkerStore. Cache failures are logged and never fail a read.
type CachedWorkerStore struct {
	next   WorkerStore
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedWorkerStore(next WorkerStore, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedWorkerStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedWorkerStore{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "worker-cache"}),
	}
}

func workerKey(id string) string {
	return workerKeyPrefix + id
}

func (s *CachedWorkerStore) GetWorker(ctx context.Context, id string) (models.WorkerProfile, error) {
	if val, err := s.redis.Get(ctx, workerKey(id)).Bytes(); err == nil {
		var w models.WorkerProfile
		if err := json.Unmarshal(val, &w); err == nil {
			return w, nil
		}
		s.evict(ctx, []string{id})
	} else if err != redis.Nil {
		s.logger.Warn("cache read failed", map[string]interface{}{"workerId": id, "error": err.Error()})
	}

	w, err := s.next.GetWorker(ctx, id)
	if err != nil {
		return models.WorkerProfile{}, err
	}
	s.store(ctx, []models.WorkerProfile{w})
	return w, nil
}

func (s *CachedWorkerStore) GetWorkers(ctx context.Context, ids []string) ([]models.WorkerProfile, error) {
	if len(ids) == 0 {
		return []models.WorkerProfile{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = workerKey(id)
	}

	byID := make(map[string]models.WorkerProfile, len(ids))
	vals, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		s.logger.Warn("cache read failed", map[string]interface{}{"count": len(ids), "error": err.Error()})
		vals = nil
	}
	var corrupt []string
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var w models.WorkerProfile
		if err := json.Unmarshal([]byte(raw), &w); err != nil || w.ID != ids[i] {
			corrupt = append(corrupt, ids[i])
			continue
		}
		byID[w.ID] = w
	}
	s.evict(ctx, corrupt)

	var misses []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			misses = append(misses, id)
		}
	}

	if len(misses) > 0 {
		loaded, err := s.next.GetWorkers(ctx, misses)
		if err != nil {
			return nil, err
		}
		for _, w := range loaded {
			byID[w.ID] = w
		}
		s.store(ctx, loaded)
	}

	s.logger.Debug("worker profiles resolved", map[string]interface{}{
		"requested": len(ids),
		"cacheHits": len(ids) - len(misses),
	})
	return inOrder(ids, byID), nil
}

func (s *CachedWorkerStore) store(ctx context.Context, workers []models.WorkerProfile) {
	if len(workers) == 0 {
		return
	}
	pipe := s.redis.Pipeline()
	for _, w := range workers {
		data, err := json.Marshal(w)
		if err != nil {
			continue
		}
		pipe.Set(ctx, workerKey(w.ID), data, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{"count": len(workers), "error": err.Error()})
	}
}

// evict drops entries that no longer decode so a worker missing upstream
// does not keep a broken cache entry until its TTL.
func (s *CachedWorkerStore) evict(ctx context.Context, ids []string) {
	if err := s.Invalidate(ctx, ids...); err != nil {
		s.logger.Warn("cache evict failed", map[string]interface{}{"count": len(ids), "error": err.Error()})
	}
}

// Invalidate drops cached profiles, for example after a profile update.
func (s *CachedWorkerStore) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = workerKey(id)
	}
	return s.redis.Del(ctx, keys...).Err()
}
