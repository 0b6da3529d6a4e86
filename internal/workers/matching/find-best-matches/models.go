// internal/workers/matching/find-best-matches/models.go
package findbestmatches

import "matching-workers/internal/models"

// Input is read from the process variables. Candidates left out (or null)
// means "search the pool"; an empty array means an empty pool.
type Input struct {
	Job        *models.JobRequest     `json:"job,omitempty"`
	JobID      string                 `json:"jobId,omitempty"`
	Candidates []models.WorkerProfile `json:"candidates,omitempty"`
	Options    *OptionsInput          `json:"options,omitempty"`
}

type OptionsInput struct {
	MinimumScore *float64 `json:"minimumScore,omitempty"`
	MaxResults   *int     `json:"maxResults,omitempty"`
	Concurrency  *int     `json:"concurrency,omitempty"`
}

type Output struct {
	MatchRequestID string         `json:"matchRequestId"`
	Matches        []models.Match `json:"matches"`
	MatchCount     int            `json:"matchCount"`
}
