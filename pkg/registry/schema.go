package registry

import (
	"encoding/json"
	"time"
)

// ActivityRegistry lists the task types this service registers with the
// broker, together with their payload contracts.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity is one task type. Schemas are kept as raw JSON and compiled by
// internal/common/validation.
type Activity struct {
	ID                   string          `json:"id"`
	DisplayName          string          `json:"displayName"`
	Description          string          `json:"description"`
	Category             string          `json:"category"`
	Version              string          `json:"version"`
	TaskType             string          `json:"taskType"`
	ImplementationStatus string          `json:"implementationStatus"`
	InputSchema          json.RawMessage `json:"inputSchema,omitempty"`
	OutputSchema         json.RawMessage `json:"outputSchema,omitempty"`
	ErrorCodes           []string        `json:"errorCodes"`
	Timeout              string          `json:"timeout"`
	Retries              int             `json:"retries"`
	Tags                 []string        `json:"tags"`
}

// TimeoutDuration parses Timeout. Unset or malformed values yield zero.
func (a Activity) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Declares reports whether code is listed in ErrorCodes.
func (a Activity) Declares(code string) bool {
	for _, c := range a.ErrorCodes {
		if c == code {
			return true
		}
	}
	return false
}
