package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"matching-workers/internal/common/errors"
	"matching-workers/internal/matching"
	"matching-workers/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Registry task types whose input schemas the request bodies share.
const (
	matchTaskType = "find-best-matches"
	scoreTaskType = "calculate-match-score"
)

type optionsRequest struct {
	MinimumScore *float64 `json:"minimumScore"`
	MaxResults   *int     `json:"maxResults"`
	Concurrency  *int     `json:"concurrency"`
}

type matchRequest struct {
	Job        models.JobRequest      `json:"job"`
	Candidates []models.WorkerProfile `json:"candidates"`
	Options    *optionsRequest        `json:"options"`
}

type matchResponse struct {
	MatchRequestID string         `json:"matchRequestId"`
	Matches        []models.Match `json:"matches"`
	Count          int            `json:"count"`
}

type scoreRequest struct {
	Job    models.JobRequest     `json:"job"`
	Worker *models.WorkerProfile `json:"worker"`
}

type scoreResponse struct {
	MatchRequestID  string            `json:"matchRequestId"`
	MatchScore      models.MatchScore `json:"matchScore"`
	Reasoning       []string          `json:"reasoning"`
	Recommendations []string          `json:"recommendations"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.pingers))
	status := http.StatusOK
	for name, p := range s.pingers {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}

func (s *Server) match(c *gin.Context) {
	var req matchRequest
	if err := s.bind(c, matchTaskType, &req); err != nil {
		s.fail(c, err)
		return
	}
	ctx := c.Request.Context()

	candidates := req.Candidates
	if candidates == nil {
		if req.Job.ID == "" || s.candidates == nil {
			s.fail(c, errors.NewInvalidJobRequestError("candidates are required unless job.id is set and candidate search is configured"))
			return
		}
		if err := matching.ValidateJob(req.Job); err != nil {
			s.fail(c, err)
			return
		}
		pool, err := s.candidates.Candidates(ctx, req.Job)
		if err != nil {
			s.fail(c, err)
			return
		}
		candidates = pool
	}

	matches, err := s.engine.FindBestMatches(ctx, req.Job, candidates, s.options(req.Options))
	if err != nil {
		s.fail(c, err)
		return
	}

	s.obs.RecordMatchesRanked(ctx, "http", len(matches))
	c.JSON(http.StatusOK, matchResponse{
		MatchRequestID: uuid.NewString(),
		Matches:        matches,
		Count:          len(matches),
	})
}

func (s *Server) score(c *gin.Context) {
	var req scoreRequest
	if err := s.bind(c, scoreTaskType, &req); err != nil {
		s.fail(c, err)
		return
	}
	if req.Worker == nil {
		s.fail(c, errors.NewPayloadValidationFailedError("worker is required"))
		return
	}

	score, err := s.engine.Score(req.Job, *req.Worker)
	if err != nil {
		s.fail(c, err)
		return
	}
	reasoning, recommendations := matching.Explain(score)

	c.JSON(http.StatusOK, scoreResponse{
		MatchRequestID:  uuid.NewString(),
		MatchScore:      score,
		Reasoning:       reasoning,
		Recommendations: recommendations,
	})
}

func (s *Server) bind(c *gin.Context, taskType string, dst interface{}) error {
	body, err := c.GetRawData()
	if err != nil {
		return errors.NewPayloadValidationFailedError(fmt.Sprintf("read body: %v", err))
	}
	if s.validator != nil {
		if err := s.validator.ValidateInput(taskType, body); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.NewPayloadValidationFailedError(fmt.Sprintf("decode body: %v", err))
	}
	return nil
}

func (s *Server) tables(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Tables())
}

func (s *Server) options(in *optionsRequest) matching.Options {
	opts := s.config.Defaults
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
