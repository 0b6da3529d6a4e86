package matching

import "matching-workers/internal/models"

const (
	reasonSkills      = "Excellent skills match for your requirements"
	reasonLocation    = "Conveniently located near your project"
	reasonReliability = "Highly reliable with excellent track record"
	reasonPricing     = "Competitive pricing within your budget"
	reasonCultural    = "Great cultural fit and local language compatibility"
	reasonGeneric     = "Good overall match for your project needs"

	recommendPricing  = "Consider discussing flexible pricing options"
	recommendLocation = "Factor in transportation costs and time"
	recommendSkills   = "Verify specific skill requirements during interview"
)

type explainRule struct {
	category  models.Category
	threshold float64
	text      string
}

// Reasons are emitted in this order when the raw score exceeds threshold.
var reasonRules = []explainRule{
	{models.CategorySkills, 0.8, reasonSkills},
	{models.CategoryLocation, 0.8, reasonLocation},
	{models.CategoryReliability, 0.8, reasonReliability},
	{models.CategoryPricing, 0.8, reasonPricing},
	{models.CategoryCultural, 0.7, reasonCultural},
}

// Recommendations are emitted when the raw score falls below threshold.
var recommendationRules = []explainRule{
	{models.CategoryPricing, 0.6, recommendPricing},
	{models.CategoryLocation, 0.7, recommendLocation},
	{models.CategorySkills, 0.8, recommendSkills},
}

// Explain turns a score breakdown into reasoning and recommendations. The
// skills reason also requires skills to be the top weighted contributor.
func Explain(score models.MatchScore) (reasoning, recommendations []string) {
	top := topContributor(score.Breakdown)

	for _, rule := range reasonRules {
		cs, ok := score.Breakdown[rule.category]
		if !ok || cs.RawScore <= rule.threshold {
			continue
		}
		if rule.category == models.CategorySkills && top != models.CategorySkills {
			continue
		}
		reasoning = append(reasoning, rule.text)
	}
	if len(reasoning) == 0 {
		reasoning = []string{reasonGeneric}
	}

	recommendations = []string{}
	for _, rule := range recommendationRules {
		if cs, ok := score.Breakdown[rule.category]; ok && cs.RawScore < rule.threshold {
			recommendations = append(recommendations, rule.text)
		}
	}
	return reasoning, recommendations
}

// topContributor returns the category with the largest weighted score; ties
// go to the earlier category in aggregation order.
func topContributor(breakdown map[models.Category]models.CategoryScore) models.Category {
	var top models.Category
	best := -1.0
	for _, cat := range aggregationOrder {
		cs, ok := breakdown[cat]
		if !ok {
			continue
		}
		if cs.WeightedScore > best {
			best = cs.WeightedScore
			top = cat
		}
	}
	return top
}
