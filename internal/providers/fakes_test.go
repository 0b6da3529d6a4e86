package providers

import (
	"context"
	"sync"

	"matching-workers/internal/common/errors"
	"matching-workers/internal/models"
)

type fakeWorkerStore struct {
	mu       sync.Mutex
	workers  map[string]models.WorkerProfile
	requests [][]string
	err      error
}

func newFakeWorkerStore(workers ...models.WorkerProfile) *fakeWorkerStore {
	s := &fakeWorkerStore{workers: make(map[string]models.WorkerProfile)}
	for _, w := range workers {
		s.workers[w.ID] = w
	}
	return s
}

func (s *fakeWorkerStore) GetWorker(ctx context.Context, id string) (models.WorkerProfile, error) {
	out, err := s.GetWorkers(ctx, []string{id})
	if err != nil {
		return models.WorkerProfile{}, err
	}
	if len(out) == 0 {
		return models.WorkerProfile{}, errors.NewWorkerNotFoundError(id)
	}
	return out[0], nil
}

func (s *fakeWorkerStore) GetWorkers(_ context.Context, ids []string) ([]models.WorkerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, append([]string(nil), ids...))
	if s.err != nil {
		return nil, s.err
	}
	return inOrder(ids, s.workers), nil
}

func (s *fakeWorkerStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

type fakeSearch struct {
	ids  []string
	err  error
	size int
}

func (f *fakeSearch) SearchCandidates(_ context.Context, _ models.JobRequest, size int) ([]string, error) {
	f.size = size
	return f.ids, f.err
}

func ptr(v float64) *float64 {
	return &v
}

func profile(id, location string) models.WorkerProfile {
	return models.WorkerProfile{
		ID:         id,
		Location:   location,
		Skills:     []string{"Pipe Repair"},
		HourlyRate: ptr(40),
		Rating:     4.5,
	}
}
