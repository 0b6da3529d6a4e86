package models

// WorkerProfile is one candidate from the pool. Only ID is structurally
// required; missing numeric fields are read as their neutral defaults.
type WorkerProfile struct {
	ID                       string   `json:"id"`
	Name                     string   `json:"name,omitempty"`
	Location                 string   `json:"location"`
	Skills                   []string `json:"skills"`
	Certifications           []string `json:"certifications,omitempty"`
	Specializations          []string `json:"specializations,omitempty"`
	HourlyRate               *float64 `json:"hourlyRate,omitempty"`
	Rating                   float64  `json:"rating"`
	CompletionRate           float64  `json:"completionRate"`
	AverageResponseTimeHours *float64 `json:"averageResponseTimeHours,omitempty"`
	PunctualityScore         float64  `json:"punctualityScore"`
	Languages                []string `json:"languages,omitempty"`
	AcceptedPayments         []string `json:"acceptedPayments,omitempty"`
	CommunityRating          *float64 `json:"communityRating,omitempty"`
	LocalRecommendations     int      `json:"localRecommendations"`
	RepeatCustomers          int      `json:"repeatCustomers"`
	VerifiedID               bool     `json:"verifiedId"`
	ApprenticeshipCompleted  bool     `json:"apprenticeshipCompleted"`
	ExperienceYears          float64  `json:"experienceYears"`
	LocalExperience          bool     `json:"localExperience"`
}

func (w WorkerProfile) TopSkill() string {
	if len(w.Skills) == 0 {
		return ""
	}
	return w.Skills[0]
}
