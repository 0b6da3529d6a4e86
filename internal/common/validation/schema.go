package validation

import (
	"fmt"
	"sort"
	"strings"

	"matching-workers/internal/common/errors"
	"matching-workers/pkg/registry"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator checks job variables and request bodies against the input
// schemas of the activity registry.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles the input schema of every activity in reg.
func NewValidator(reg *registry.ActivityRegistry) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(reg.Activities))}
	for _, a := range reg.Activities {
		if len(a.InputSchema) == 0 {
			continue
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(a.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile input schema of %s: %w", a.TaskType, err)
		}
		v.schemas[a.TaskType] = schema
	}
	return v, nil
}

// ValidateInput validates a raw JSON payload for taskType. Task types without
// a schema accept anything.
func (v *Validator) ValidateInput(taskType string, payload []byte) error {
	schema, ok := v.schemas[taskType]
	if !ok {
		return nil
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return errors.NewPayloadValidationFailedError(fmt.Sprintf("%s: %v", taskType, err))
	}
	return toError(taskType, collect(result))
}

// ValidateJSON validates document against a schema given as a decoded map.
func ValidateJSON(schema map[string]interface{}, document interface{}) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return collect(result), nil
}

func collect(result *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool { return out.Errors[i].Field < out.Errors[j].Field })
	return out
}

func toError(taskType string, result *ValidationResult) error {
	if result.Valid {
		return nil
	}
	return errors.NewPayloadValidationFailedError(fmt.Sprintf("%s: %s", taskType, strings.Join(result.GetErrorMessages(), "; "))).
		WithMetadata("errors", result.Errors)
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}
