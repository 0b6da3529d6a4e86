package matching

import (
	"math"
	"testing"

	"matching-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeJob(t *testing.T) {
	job := plumbingJob()
	job.Budget = ptr(-5)
	job.EstimatedHours = ptr(math.Inf(1))
	job.ExperienceLevel = " Expert"

	got := sanitizeJob(job)

	assert.Nil(t, got.Budget)
	assert.Nil(t, got.EstimatedHours)
	assert.Equal(t, models.ExperienceExpert, got.ExperienceLevel)
	assert.Equal(t, -5.0, *job.Budget, "input untouched")
}

func TestSanitizeWorker(t *testing.T) {
	w := models.WorkerProfile{
		ID:                       "w",
		HourlyRate:               ptr(0),
		Rating:                   math.NaN(),
		CompletionRate:           140,
		AverageResponseTimeHours: ptr(-3),
		PunctualityScore:         -1,
		CommunityRating:          ptr(7),
		ExperienceYears:          math.Inf(1),
		LocalRecommendations:     -2,
		RepeatCustomers:          -1,
	}

	got := sanitizeWorker(w)

	assert.Nil(t, got.HourlyRate)
	assert.Equal(t, 0.0, got.Rating)
	assert.Equal(t, 100.0, got.CompletionRate)
	assert.Equal(t, 0.0, *got.AverageResponseTimeHours)
	assert.Equal(t, 0.0, got.PunctualityScore)
	assert.Equal(t, 5.0, *got.CommunityRating)
	assert.Equal(t, math.MaxFloat64, got.ExperienceYears)
	assert.Equal(t, 0, got.LocalRecommendations)
	assert.Equal(t, 0, got.RepeatCustomers)
}

func TestSanitizeWorker_MissingOptionalNumbers(t *testing.T) {
	got := sanitizeWorker(models.WorkerProfile{ID: "w", CommunityRating: ptr(math.NaN())})

	assert.Nil(t, got.AverageResponseTimeHours)
	assert.Nil(t, got.CommunityRating)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "kumasi", fold("  KUMASÍ "))
	assert.Equal(t, "", fold("   "))
	assert.Equal(t, []string{"a", "b"}, foldAll([]string{"A", " ", "b"}))
}
