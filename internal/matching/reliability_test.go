package matching

import (
	"testing"

	"matching-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestReliabilityScore(t *testing.T) {
	score := ReliabilityScore(plumber("w-1"))

	assert.InDelta(t, 0.96, score.Factors["rating"], 1e-9)
	assert.InDelta(t, 0.96, score.Factors["completionRate"], 1e-9)
	assert.Equal(t, 0.8, score.Factors["responseTime"])
	assert.Equal(t, 0.0, score.Factors["punctuality"])
	assert.InDelta(t, 0.832, score.RawScore, 1e-9)
}

func TestReliabilityScore_Perfect(t *testing.T) {
	w := models.WorkerProfile{
		ID:                       "w-1",
		Rating:                   5,
		CompletionRate:           100,
		AverageResponseTimeHours: ptr(0.5),
		PunctualityScore:         100,
	}
	assert.InDelta(t, 1.0, ReliabilityScore(w).RawScore, 1e-9)
}

func TestReliabilityScore_MissingResponseTime(t *testing.T) {
	w := plumber("w-1")
	w.AverageResponseTimeHours = nil

	score := ReliabilityScore(w)

	assert.Equal(t, 0.6, score.Factors["responseTime"])
	assert.InDelta(t, 0.384+0.288+0.12, score.RawScore, 1e-9)
}

func TestResponseTimeScore(t *testing.T) {
	tests := []struct {
		hours, want float64
	}{
		{0, 1.0}, {1, 1.0}, {1.01, 0.8}, {6, 0.8}, {12, 0.6}, {24, 0.6}, {24.5, 0.3}, {72, 0.3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResponseTimeScore(tt.hours), "hours=%v", tt.hours)
	}
}
