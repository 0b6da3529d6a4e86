package matching

import (
	"strings"

	"matching-workers/internal/models"
)

const (
	// DiversityPenalty multiplies the score of a repeated profile.
	DiversityPenalty = 0.95
	// diversityFreeRanks is how many leading ranks are never penalized.
	diversityFreeRanks = 6
)

// RateTier buckets an hourly rate for diversity grouping.
func RateTier(rate *float64) string {
	switch {
	case rate == nil:
		return "unknown"
	case *rate < 30:
		return "low"
	case *rate < 60:
		return "mid"
	default:
		return "high"
	}
}

// DiversityKey groups workers by region, top skill and rate tier.
func DiversityKey(region string, worker models.WorkerProfile) string {
	return strings.Join([]string{region, fold(worker.TopSkill()), RateTier(worker.HourlyRate)}, "|")
}

// ApplyDiversity penalizes, in place, every match past the free ranks whose
// key was already seen at a better rank. keys[i] belongs to matches[i]. The
// slice is not re-sorted. It returns how many matches were penalized.
func ApplyDiversity(matches []models.Match, keys []string) int {
	seen := make(map[string]struct{}, len(matches))
	penalized := 0
	for i := range matches {
		key := keys[i]
		if _, dup := seen[key]; dup && i >= diversityFreeRanks {
			matches[i].MatchScore.TotalScore *= DiversityPenalty
			matches[i].MatchScore.DiversityPenalty = true
			penalized++
		}
		seen[key] = struct{}{}
	}
	return penalized
}
