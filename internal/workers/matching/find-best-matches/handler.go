// internal/workers/matching/find-best-matches/handler.go
package findbestmatches

import (
	"context"
	"fmt"
	"time"

	"matching-workers/internal/common/errors"
	"matching-workers/internal/common/logger"
	"matching-workers/internal/common/metrics"
	"matching-workers/internal/common/observability"
	"matching-workers/internal/common/validation"
	"matching-workers/internal/matching"
	"matching-workers/internal/models"
	"matching-workers/internal/providers"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	TaskType = "find-best-matches"
)

// CandidateSource loads the candidate pool for a job when the process does
// not pass one in.
type CandidateSource interface {
	Candidates(ctx context.Context, job models.JobRequest) ([]models.WorkerProfile, error)
}

type Handler struct {
	config     *Config
	engine     *matching.Engine
	jobs       providers.JobStore
	candidates CandidateSource
	validator  *validation.Validator
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

// NewHandler wires the worker. jobs and candidates may be nil, in which case
// the process must supply the job and the pool inline.
func NewHandler(config *Config, engine *matching.Engine, jobs providers.JobStore, candidates CandidateSource, validator *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		engine:     engine,
		jobs:       jobs,
		candidates: candidates,
		validator:  validator,
		obs:        obs,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	timer := metrics.StartJob(TaskType)
	started := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.run(ctx, []byte(job.Variables))
	if err != nil {
		h.record(timer, started, errors.Normalize(err).Code)
		h.errHandler.HandleJobError(context.Background(), client, job, err)
		return err
	}

	if err := h.completeJob(client, job, output); err != nil {
		h.record(timer, started, errors.ErrCodeBrokerUnavailable)
		return err
	}
	h.record(timer, started, "")
	h.obs.RecordMatchesRanked(ctx, "zeebe", output.MatchCount)
	return nil
}

func (h *Handler) run(ctx context.Context, payload []byte) (*Output, error) {
	input, err := h.decode(payload)
	if err != nil {
		return nil, err
	}
	return h.execute(ctx, input)
}

func (h *Handler) decode(payload []byte) (*Input, error) {
	if h.validator != nil {
		if err := h.validator.ValidateInput(TaskType, payload); err != nil {
			return nil, err
		}
	}
	var input Input
	if err := json.Unmarshal(payload, &input); err != nil {
		return nil, errors.NewPayloadValidationFailedError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidJobRequestError("input cannot be nil")
	}

	jobRequest, err := h.resolveJob(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := matching.ValidateJob(jobRequest); err != nil {
		return nil, err
	}

	candidates, err := h.resolveCandidates(ctx, jobRequest, input)
	if err != nil {
		return nil, err
	}

	opts := h.options(input.Options)
	matches, err := h.engine.FindBestMatches(ctx, jobRequest, candidates, opts)
	if err != nil {
		return nil, err
	}

	output := &Output{
		MatchRequestID: uuid.NewString(),
		Matches:        matches,
		MatchCount:     len(matches),
	}

	h.logger.Info("matches ranked", map[string]interface{}{
		"matchRequestId": output.MatchRequestID,
		"jobId":          jobRequest.ID,
		"candidates":     len(candidates),
		"matches":        output.MatchCount,
	})
	return output, nil
}

func (h *Handler) resolveJob(ctx context.Context, input *Input) (models.JobRequest, error) {
	if input.Job != nil {
		return *input.Job, nil
	}
	if input.JobID == "" {
		return models.JobRequest{}, errors.NewInvalidJobRequestError("job or jobId is required")
	}
	if h.jobs == nil {
		return models.JobRequest{}, errors.NewInvalidJobRequestError("jobId given but no job store is configured")
	}
	return h.jobs.GetJob(ctx, input.JobID)
}

func (h *Handler) resolveCandidates(ctx context.Context, job models.JobRequest, input *Input) ([]models.WorkerProfile, error) {
	if input.Candidates != nil {
		return input.Candidates, nil
	}
	if h.candidates == nil {
		return nil, errors.NewInvalidJobRequestError("candidates are required when no candidate search is configured")
	}
	return h.candidates.Candidates(ctx, job)
}

func (h *Handler) options(in *OptionsInput) matching.Options {
	opts := h.config.Defaults
	if in == nil {
		return opts
	}
	if in.MinimumScore != nil {
		opts.MinimumScore = *in.MinimumScore
	}
	if in.MaxResults != nil {
		opts.MaxResults = *in.MaxResults
	}
	if in.Concurrency != nil {
		opts.Concurrency = *in.Concurrency
	}
	return opts
}

func (h *Handler) record(timer *metrics.JobTimer, started time.Time, code errors.ErrorCode) {
	status := "completed"
	if code != "" {
		status = "failed"
	}
	timer.Done(string(code))
	h.obs.RecordJobProcessed(context.Background(), TaskType, status)
	h.obs.RecordJobDuration(context.Background(), TaskType, time.Since(started), status)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
