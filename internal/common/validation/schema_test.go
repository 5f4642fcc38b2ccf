package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCallEvent(t *testing.T) {
	tests := []struct {
		name           string
		input          map[string]interface{}
		validateOutput func(t *testing.T, res *ValidationResult)
	}{
		{
			name: "explicit event",
			input: map[string]interface{}{
				"call_id":       "call-1",
				"to_number":     "+15551234567",
				"event_type":    "call_analyzed",
				"transcript":    "hello",
				"call_duration": 42.5,
			},
			validateOutput: func(t *testing.T, res *ValidationResult) {
				assert.True(t, res.Valid)
				assert.Empty(t, res.Errors)
			},
		},
		{
			name: "legacy event with extra fields",
			input: map[string]interface{}{
				"call_id":     "call-1",
				"to_number":   "555-123-4567",
				"call_status": "completed",
				"agent_id":    "agent-9",
			},
			validateOutput: func(t *testing.T, res *ValidationResult) {
				assert.True(t, res.Valid)
			},
		},
		{
			name:  "missing required fields",
			input: map[string]interface{}{"event_type": "call_started"},
			validateOutput: func(t *testing.T, res *ValidationResult) {
				assert.False(t, res.Valid)
				assert.True(t, res.HasErrors("call_id"))
				assert.True(t, res.HasErrors("to_number"))
				assert.Len(t, res.GetErrorMessages(), 2)
			},
		},
		{
			name: "unknown event type",
			input: map[string]interface{}{
				"call_id":    "call-1",
				"to_number":  "+15551234567",
				"event_type": "call_transferred",
			},
			validateOutput: func(t *testing.T, res *ValidationResult) {
				assert.False(t, res.Valid)
				assert.True(t, res.HasErrors("event_type"))
			},
		},
		{
			name: "bad types",
			input: map[string]interface{}{
				"call_id":       "call-1",
				"to_number":     "no digits",
				"call_duration": -3,
				"call_status":   "ringing",
			},
			validateOutput: func(t *testing.T, res *ValidationResult) {
				assert.False(t, res.Valid)
				assert.True(t, res.HasErrors("to_number"))
				assert.True(t, res.HasErrors("call_duration"))
				assert.True(t, res.HasErrors("call_status"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ValidateCallEvent(tt.input)
			require.NoError(t, err)
			tt.validateOutput(t, res)
		})
	}
}

func TestValidateDocument(t *testing.T) {
	schema := `{"type": "object", "required": ["text"], "properties": {"text": {"type": "string"}}}`

	res, err := ValidateDocument(schema, map[string]interface{}{"text": "hi"})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = ValidateDocument(schema, map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "REQUIRED", res.Errors[0].Code)
}
