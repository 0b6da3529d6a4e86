// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

//go:embed activities.json
var builtin []byte

var activityIDPattern = regexp.MustCompile(`^[a-z]+\.[a-z]+\.[a-z]+$`)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Default returns the registry compiled into the binary.
func Default() (*ActivityRegistry, error) {
	return Parse(builtin)
}

func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks activity ids follow domain.subdomain.action and that task
// types are unique.
func (r *ActivityRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if !activityIDPattern.MatchString(a.ID) {
			return fmt.Errorf("activity %q: id must follow domain.subdomain.action", a.ID)
		}
		if a.TaskType == "" {
			return fmt.Errorf("activity %q: taskType is required", a.ID)
		}
		if seen[a.TaskType] {
			return fmt.Errorf("activity %q: duplicate taskType %q", a.ID, a.TaskType)
		}
		seen[a.TaskType] = true
	}
	return nil
}

func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}
