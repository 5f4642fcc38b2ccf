// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// CallEventSchema describes an inbound call event. Everything past call_id and
// to_number is optional; event_type and call_status are closed enums.
const CallEventSchema = `{
  "type": "object",
  "required": ["call_id", "to_number"],
  "properties": {
    "call_id":         {"type": "string", "minLength": 1, "maxLength": 255},
    "to_number":       {"type": "string", "minLength": 1, "pattern": "\\d"},
    "from_number":     {"type": "string"},
    "event_type":      {"type": "string", "enum": ["call_started", "call_ended", "call_analyzed"]},
    "call_status":     {"type": "string", "enum": ["completed", "failed", "in-progress"]},
    "transcript":      {"type": "string"},
    "transcript_text": {"type": "string"},
    "conversation":    {"type": "string"},
    "call_summary":    {"type": "string"},
    "summary":         {"type": "string"},
    "recording_url":   {"type": "string"},
    "call_duration":   {"type": "number", "minimum": 0}
  },
  "additionalProperties": true
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

var (
	callEventOnce   sync.Once
	callEventSchema *gojsonschema.Schema
	callEventErr    error
)

func compiledCallEventSchema() (*gojsonschema.Schema, error) {
	callEventOnce.Do(func() {
		callEventSchema, callEventErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(CallEventSchema))
	})
	return callEventSchema, callEventErr
}

// ValidateCallEvent checks a decoded payload against CallEventSchema.
func ValidateCallEvent(input map[string]interface{}) (*ValidationResult, error) {
	schema, err := compiledCallEventSchema()
	if err != nil {
		return nil, fmt.Errorf("compile call event schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

// ValidateDocument validates data against an arbitrary JSON schema document.
func ValidateDocument(schemaJSON string, data interface{}) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schemaJSON), gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

func toResult(r *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: r.Valid()}
	for _, desc := range r.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				field = prop
			}
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}
