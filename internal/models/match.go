package models

import "time"

type Category string

const (
	CategoryLocation    Category = "location"
	CategorySkills      Category = "skills"
	CategoryPricing     Category = "pricing"
	CategoryReliability Category = "reliability"
	CategoryCultural    Category = "cultural"
)

// Categories lists the scoring categories in explanation priority order.
var Categories = []Category{
	CategorySkills,
	CategoryLocation,
	CategoryReliability,
	CategoryPricing,
	CategoryCultural,
}

type CategoryScore struct {
	RawScore      float64            `json:"rawScore"`
	Weight        float64            `json:"weight"`
	WeightedScore float64            `json:"weightedScore"`
	Factors       map[string]float64 `json:"factors,omitempty"`
}

type MatchScore struct {
	TotalScore       float64                    `json:"totalScore"`
	BaseScore        float64                    `json:"baseScore"`
	Breakdown        map[Category]CategoryScore `json:"breakdown"`
	Confidence       float64                    `json:"confidence"`
	Boost            float64                    `json:"boost"`
	DiversityPenalty bool                       `json:"diversityPenalty,omitempty"`
	Timestamp        time.Time                  `json:"timestamp"`
}

type Match struct {
	Worker          WorkerProfile `json:"worker"`
	MatchScore      MatchScore    `json:"matchScore"`
	Reasoning       []string      `json:"reasoning"`
	Recommendations []string      `json:"recommendations"`
}
