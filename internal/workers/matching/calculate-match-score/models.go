// internal/workers/matching/calculate-match-score/models.go
package calculatematchscore

import "matching-workers/internal/models"

type Input struct {
	Job      models.JobRequest     `json:"job"`
	WorkerID string                `json:"workerId,omitempty"`
	Worker   *models.WorkerProfile `json:"worker,omitempty"`
}

type Output struct {
	MatchScore      models.MatchScore `json:"matchScore"`
	Reasoning       []string          `json:"reasoning"`
	Recommendations []string          `json:"recommendations"`
}
