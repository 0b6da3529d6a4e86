package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	MatchingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_requests_total",
			Help: "Total number of ranking requests by outcome",
		},
		[]string{"outcome"},
	)

	MatchingCandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_scored_total",
			Help: "Total number of candidates scored",
		},
	)

	MatchingCandidatesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_candidates_skipped_total",
			Help: "Total number of candidates skipped before or during scoring",
		},
		[]string{"reason"},
	)

	MatchingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_duration_seconds",
			Help:    "Duration of a full ranking request in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	MatchingResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_results_returned",
			Help:    "Number of matches returned per request",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
		},
	)
)

// MatchingRecorder feeds engine events into the Prometheus collectors above.
type MatchingRecorder struct{}

func NewMatchingRecorder() *MatchingRecorder {
	return &MatchingRecorder{}
}

func (MatchingRecorder) CandidateSkipped(reason string) {
	MatchingCandidatesSkipped.WithLabelValues(reason).Inc()
}

func (MatchingRecorder) RankingFinished(outcome string, scored, returned int, elapsed time.Duration) {
	MatchingRequests.WithLabelValues(outcome).Inc()
	MatchingCandidatesScored.Add(float64(scored))
	MatchingDuration.Observe(elapsed.Seconds())
	if outcome == "ok" {
		MatchingResultsReturned.Observe(float64(returned))
	}
}

// JobTimer tracks one job from activation to completion.
type JobTimer struct {
	taskType string
	start    time.Time
}

func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{taskType: taskType, start: time.Now()}
}

func (t *JobTimer) Done(errorCode string) {
	WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	WorkerJobDuration.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(t.taskType, errorCode).Inc()
}
