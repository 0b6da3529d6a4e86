package models

type ExperienceLevel string

const (
	ExperienceEntry        ExperienceLevel = "entry"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExperienced  ExperienceLevel = "experienced"
	ExperienceExpert       ExperienceLevel = "expert"
)

func (l ExperienceLevel) IsValid() bool {
	switch l {
	case ExperienceEntry, ExperienceIntermediate, ExperienceExperienced, ExperienceExpert:
		return true
	default:
		return false
	}
}

// JobRequest is the job side of a match. Budget and EstimatedHours are
// optional; nil means "not specified" and never "zero".
type JobRequest struct {
	ID              string          `json:"id,omitempty"`
	Title           string          `json:"title"`
	Category        string          `json:"category"`
	Location        string          `json:"location"`
	RequiredSkills  []string        `json:"requiredSkills"`
	Budget          *float64        `json:"budget,omitempty"`
	EstimatedHours  *float64        `json:"estimatedHours,omitempty"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel,omitempty"`
	Urgent          bool            `json:"urgent"`
	PaymentMethods  []string        `json:"paymentMethods,omitempty"`
}
