package matching

import (
	"math"

	"matching-workers/internal/models"

	"gonum.org/v1/gonum/stat"
)

// CategoryWeights sum to 1.0.
var CategoryWeights = map[models.Category]float64{
	models.CategoryLocation:    0.25,
	models.CategorySkills:      0.30,
	models.CategoryPricing:     0.20,
	models.CategoryReliability: 0.15,
	models.CategoryCultural:    0.10,
}

// aggregationOrder fixes the summation order so totals are bit-identical
// across calls.
var aggregationOrder = []models.Category{
	models.CategoryLocation,
	models.CategorySkills,
	models.CategoryPricing,
	models.CategoryReliability,
	models.CategoryCultural,
}

// Aggregate weights each category, sums them into BaseScore and TotalScore
// and derives confidence from the population variance of the raw scores.
// Missing categories count as zero.
func Aggregate(raw map[models.Category]models.CategoryScore) models.MatchScore {
	breakdown := make(map[models.Category]models.CategoryScore, len(aggregationOrder))
	raws := make([]float64, 0, len(aggregationOrder))

	total := 0.0
	for _, cat := range aggregationOrder {
		cs := raw[cat]
		cs.RawScore = clamp01(cs.RawScore)
		cs.Weight = CategoryWeights[cat]
		cs.WeightedScore = cs.RawScore * cs.Weight
		total += cs.WeightedScore
		breakdown[cat] = cs
		raws = append(raws, cs.RawScore)
	}
	total = math.Min(total, 1.0)

	return models.MatchScore{
		TotalScore: total,
		BaseScore:  total,
		Breakdown:  breakdown,
		Confidence: Confidence(raws),
	}
}

// Confidence is 1 minus the population variance of scores, floored at 0.5.
func Confidence(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.5
	}
	return math.Max(0.5, 1-stat.PopVariance(scores, nil))
}
