// Package providers loads job requests and candidate pools for the matching
// engine. Nothing here is called while scoring.
package providers

import (
	"context"

	"matching-workers/internal/common/errors"
	"matching-workers/internal/common/logger"
	"matching-workers/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "matching-workers/providers"

type JobStore interface {
	GetJob(ctx context.Context, id string) (models.JobRequest, error)
}

// WorkerStore returns profiles in the order of ids. Unknown ids are skipped
// by GetWorkers and reported as WORKER_NOT_FOUND by GetWorker.
type WorkerStore interface {
	GetWorker(ctx context.Context, id string) (models.WorkerProfile, error)
	GetWorkers(ctx context.Context, ids []string) ([]models.WorkerProfile, error)
}

// CandidateSearch returns worker ids likely to fit job, best first.
type CandidateSearch interface {
	SearchCandidates(ctx context.Context, job models.JobRequest, size int) ([]string, error)
}

// CandidatePool resolves the candidate list for a job: search for ids, then
// load the profiles.
type CandidatePool struct {
	search CandidateSearch
	store  WorkerStore
	size   int
	logger logger.Logger
	tracer trace.Tracer
}

func NewCandidatePool(search CandidateSearch, store WorkerStore, size int, log logger.Logger) *CandidatePool {
	if size <= 0 {
		size = 200
	}
	return &CandidatePool{
		search: search,
		store:  store,
		size:   size,
		logger: log.WithFields(map[string]interface{}{"component": "candidate-pool"}),
		tracer: otel.Tracer(tracerName),
	}
}

func (p *CandidatePool) Candidates(ctx context.Context, job models.JobRequest) ([]models.WorkerProfile, error) {
	ctx, span := p.tracer.Start(ctx, "providers.Candidates", trace.WithAttributes(
		attribute.String("job.category", job.Category),
	))
	defer span.End()

	ids, err := p.search.SearchCandidates(ctx, job, p.size)
	if err != nil {
		span.RecordError(err)
		return nil, wrapCandidateError(err, errors.NewCandidateSearchFailedError)
	}
	if len(ids) == 0 {
		return []models.WorkerProfile{}, nil
	}

	workers, err := p.store.GetWorkers(ctx, ids)
	if err != nil {
		span.RecordError(err)
		return nil, wrapCandidateError(err, errors.NewCandidateFetchFailedError)
	}

	span.SetAttributes(attribute.Int("candidates", len(workers)))
	p.logger.Debug("candidate pool loaded", map[string]interface{}{
		"jobId":   job.ID,
		"found":   len(ids),
		"loaded":  len(workers),
		"missing": len(ids) - len(workers),
	})
	return workers, nil
}

// wrapCandidateError keeps timeouts as they are so callers can still map
// them to a deadline response.
func wrapCandidateError(err error, wrap func(error) *errors.StandardError) error {
	switch errors.Code(err) {
	case errors.ErrCodeQueryTimeout, errors.ErrCodeSearchTimeout:
		return err
	}
	return wrap(err)
}
