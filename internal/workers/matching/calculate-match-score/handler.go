// internal/workers/matching/calculate-match-score/handler.go
package calculatematchscore

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
)

const (
	TaskType = "calculate-match-score"
)

type Handler struct {
	config     *Config
	engine     *matching.Engine
	workers    providers.WorkerStore
	validator  *validation.Validator
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, engine *matching.Engine, workers providers.WorkerStore, validator *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		engine:     engine,
		workers:    workers,
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
		code := errors.Normalize(err).Code
		timer.Done(string(code))
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		h.errHandler.HandleJobError(context.Background(), client, job, err)
		return err
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err == nil {
		_, err = cmd.Send(context.Background())
	}
	if err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		timer.Done(string(errors.ErrCodeBrokerUnavailable))
		return err
	}

	timer.Done("")
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(started), "completed")
	return nil
}

func (h *Handler) run(ctx context.Context, payload []byte) (*Output, error) {
	if h.validator != nil {
		if err := h.validator.ValidateInput(TaskType, payload); err != nil {
			return nil, err
		}
	}
	var input Input
	if err := json.Unmarshal(payload, &input); err != nil {
		return nil, errors.NewPayloadValidationFailedError(fmt.Sprintf("parse input: %v", err))
	}
	return h.execute(ctx, &input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	profile, err := h.resolveWorker(ctx, input)
	if err != nil {
		return nil, err
	}

	score, err := h.engine.Score(input.Job, profile)
	if err != nil {
		return nil, err
	}
	reasoning, recommendations := matching.Explain(score)

	h.logger.Info("match score calculated", map[string]interface{}{
		"jobId":      input.Job.ID,
		"workerId":   profile.ID,
		"score":      score.TotalScore,
		"confidence": score.Confidence,
	})

	return &Output{
		MatchScore:      score,
		Reasoning:       reasoning,
		Recommendations: recommendations,
	}, nil
}

func (h *Handler) resolveWorker(ctx context.Context, input *Input) (models.WorkerProfile, error) {
	if input.Worker != nil {
		return *input.Worker, nil
	}
	if input.WorkerID == "" {
		return models.WorkerProfile{}, errors.NewInvalidJobRequestError("worker or workerId is required")
	}
	if h.workers == nil {
		return models.WorkerProfile{}, errors.NewInvalidJobRequestError("workerId given but no worker store is configured")
	}
	return h.workers.GetWorker(ctx, input.WorkerID)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
