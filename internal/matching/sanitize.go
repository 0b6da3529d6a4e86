package matching

import (
	"math"
	"strings"

	"matching-workers/internal/models"
)

// sanitizeJob copies job with unusable optional numbers cleared: a
// non-positive or non-finite budget is unspecified, and so are hours.
func sanitizeJob(job models.JobRequest) models.JobRequest {
	job.Budget = positiveOrNil(job.Budget)
	job.EstimatedHours = positiveOrNil(job.EstimatedHours)
	job.ExperienceLevel = models.ExperienceLevel(strings.ToLower(strings.TrimSpace(string(job.ExperienceLevel))))
	return job
}

// sanitizeWorker clamps every numeric field into its documented range so
// malformed records score with neutral values instead of failing.
func sanitizeWorker(w models.WorkerProfile) models.WorkerProfile {
	w.HourlyRate = positiveOrNil(w.HourlyRate)
	w.Rating = clampRange(w.Rating, 0, 5)
	w.CompletionRate = clampRange(w.CompletionRate, 0, 100)
	w.AverageResponseTimeHours = clampOrNil(w.AverageResponseTimeHours, 0, math.MaxFloat64)
	w.PunctualityScore = clampRange(w.PunctualityScore, 0, 100)
	w.CommunityRating = clampOrNil(w.CommunityRating, 0, 5)
	w.ExperienceYears = clampRange(w.ExperienceYears, 0, math.MaxFloat64)
	if w.LocalRecommendations < 0 {
		w.LocalRecommendations = 0
	}
	if w.RepeatCustomers < 0 {
		w.RepeatCustomers = 0
	}
	return w
}

func positiveOrNil(v *float64) *float64 {
	if v == nil || !finite(*v) || *v <= 0 {
		return nil
	}
	out := *v
	return &out
}

// clampOrNil clamps an optional number, treating NaN as absent.
func clampOrNil(v *float64, lo, hi float64) *float64 {
	if v == nil || math.IsNaN(*v) {
		return nil
	}
	out := clampRange(*v, lo, hi)
	return &out
}

func clampRange(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
