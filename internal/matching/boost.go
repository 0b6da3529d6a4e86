package matching

import (
	"math"

	"matching-workers/internal/models"
)

const MaxBoost = 0.20

const (
	urgentResponseBoost = 0.10
	communityBoost      = 0.05
	verifiedIDBoost     = 0.03
	apprenticeBoost     = 0.02
)

// Boost sums the promotional adjustments for a pair, capped at MaxBoost.
func Boost(job models.JobRequest, worker models.WorkerProfile) float64 {
	boost := 0.0
	if job.Urgent && worker.AverageResponseTimeHours != nil && *worker.AverageResponseTimeHours <= 2 {
		boost += urgentResponseBoost
	}
	if worker.CommunityRating != nil && *worker.CommunityRating >= 4.5 {
		boost += communityBoost
	}
	if worker.VerifiedID {
		boost += verifiedIDBoost
	}
	if worker.ApprenticeshipCompleted {
		boost += apprenticeBoost
	}
	return math.Min(boost, MaxBoost)
}

// ApplyBoost records boost on score and raises TotalScore from BaseScore,
// never past 1.0.
func ApplyBoost(score *models.MatchScore, boost float64) {
	boost = math.Max(0, math.Min(boost, MaxBoost))
	score.Boost = boost
	score.TotalScore = math.Min(score.BaseScore+boost, 1.0)
}
