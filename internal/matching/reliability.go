package matching

import "matching-workers/internal/models"

// A worker with no response history is scored as a next-day responder.
const defaultResponseHours = 24.0

func ReliabilityScore(worker models.WorkerProfile) models.CategoryScore {
	rating := worker.Rating / 5
	completion := worker.CompletionRate / 100
	hours := defaultResponseHours
	if worker.AverageResponseTimeHours != nil {
		hours = *worker.AverageResponseTimeHours
	}
	response := ResponseTimeScore(hours)
	punctuality := worker.PunctualityScore / 100

	return models.CategoryScore{
		RawScore: clamp01(rating*0.4 + completion*0.3 + response*0.2 + punctuality*0.1),
		Factors: map[string]float64{
			"rating":         rating,
			"completionRate": completion,
			"responseTime":   response,
			"punctuality":    punctuality,
		},
	}
}

func ResponseTimeScore(hours float64) float64 {
	switch {
	case hours <= 1:
		return 1.0
	case hours <= 6:
		return 0.8
	case hours <= 24:
		return 0.6
	default:
		return 0.3
	}
}
