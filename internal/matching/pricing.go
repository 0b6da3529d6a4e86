package matching

import "matching-workers/internal/models"

const (
	defaultEstimatedHours = 8.0
	referenceRate         = 50.0
	neutralPricing        = 0.5
	unratedRating         = 3.0

	budgetMatchWeight   = 0.5
	valueForMoneyWeight = 0.3
	paymentTermsWeight  = 0.2
)

// PricingScore is exactly 0.5 when the job has no budget or the worker has
// no rate.
func PricingScore(job models.JobRequest, worker models.WorkerProfile) models.CategoryScore {
	if job.Budget == nil || worker.HourlyRate == nil {
		return models.CategoryScore{RawScore: neutralPricing}
	}

	budget := *job.Budget
	rate := *worker.HourlyRate
	hours := defaultEstimatedHours
	if job.EstimatedHours != nil {
		hours = *job.EstimatedHours
	}

	fit := BudgetFitScore(rate*hours, budget)
	value := ValueScore(worker.Rating, rate)
	payment := PaymentCompatibility(job.PaymentMethods, worker.AcceptedPayments)

	return models.CategoryScore{
		RawScore: clamp01(fit*budgetMatchWeight + value*valueForMoneyWeight + payment*paymentTermsWeight),
		Factors: map[string]float64{
			"budgetMatch":   fit,
			"valueForMoney": value,
			"paymentTerms":  payment,
		},
	}
}

func BudgetFitScore(cost, budget float64) float64 {
	switch {
	case cost <= budget:
		return 1.0
	case cost <= budget*1.2:
		return 0.8
	case cost <= budget*1.5:
		return 0.5
	default:
		return 0.2
	}
}

// ValueScore rewards rating relative to a reference rate of 50 per hour. An
// unrated worker counts as 3 stars.
func ValueScore(rating, rate float64) float64 {
	if rating <= 0 {
		rating = unratedRating
	}
	if rate <= 0 {
		return 1.0
	}
	return clamp01((rating / 5) / (rate / referenceRate))
}

// PaymentCompatibility is 1.0 on any overlap, 0.5 on none and 0.8 when
// either side lists nothing.
func PaymentCompatibility(requested, accepted []string) float64 {
	req := foldAll(requested)
	acc := foldSet(accepted)
	if len(req) == 0 || len(acc) == 0 {
		return 0.8
	}
	for _, m := range req {
		if _, ok := acc[m]; ok {
			return 1.0
		}
	}
	return 0.5
}
