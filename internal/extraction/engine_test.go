package extraction

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Extract(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name           string
		transcript     string
		validateOutput func(t *testing.T, res Result)
	}{
		{
			name:       "blank transcript yields nothing",
			transcript: "   \n\t ",
			validateOutput: func(t *testing.T, res Result) {
				assert.Equal(t, Result{}, res)
			},
		},
		{
			name:       "no recognizable pattern",
			transcript: "Hello there, how are you",
			validateOutput: func(t *testing.T, res Result) {
				assert.Nil(t, res.Name)
				assert.Nil(t, res.CallbackNumber)
				assert.Nil(t, res.Address)
				assert.Nil(t, res.Reason)
				require.NotNil(t, res.CallSummary)
				assert.Equal(t, "Customer inquiry", *res.CallSummary)
				assert.Zero(t, res.Confidence)
			},
		},
		{
			name:       "name and reason",
			transcript: "My name is Sarah Jones and I need help with a clogged drain",
			validateOutput: func(t *testing.T, res Result) {
				require.NotNil(t, res.Name)
				assert.Equal(t, "Sarah Jones", *res.Name)
				require.NotNil(t, res.Reason)
				assert.Equal(t, "A clogged drain", *res.Reason)
				assert.Equal(t, *res.Reason, *res.CallSummary)
				assert.Nil(t, res.CallbackNumber)
				assert.Nil(t, res.Address)
				assert.InDelta(t, 0.5, res.Confidence, 1e-9)
			},
		},
		{
			name: "all fields",
			transcript: "Hi, this is John Smith. I'm calling about a broken water heater. " +
				"My address is 12 Elm Street and my number is 555-123-4567.",
			validateOutput: func(t *testing.T, res Result) {
				assert.Equal(t, "John Smith", *res.Name)
				assert.Equal(t, "+15551234567", *res.CallbackNumber)
				assert.Equal(t, "12 elm street", *res.Address)
				assert.Equal(t, "A broken water heater", *res.Reason)
				assert.Equal(t, "A broken water heater", *res.CallSummary)
				assert.InDelta(t, 1.0, res.Confidence, 1e-9)
				assert.Equal(t, map[string]bool{
					"name": true, "callback_number": true, "address": true, "reason": true,
				}, res.Fields())
			},
		},
		{
			name:       "long reason is summarized",
			transcript: "I'm calling about getting the whole back yard cleaned up and replanted before the party next month",
			validateOutput: func(t *testing.T, res Result) {
				require.NotNil(t, res.Reason)
				assert.Equal(t, "Getting the whole back yard cleaned up", *res.Reason)

				res2 := engine.Extract("I'm calling about getting the whole back yard cleared out for the big party next month")
				require.NotNil(t, res2.Reason)
				assert.Equal(t, "Getting the whole back yard cleared out for the big...", *res2.CallSummary)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateOutput(t, engine.Extract(tt.transcript))
		})
	}
}

func TestEngine_ExtractIsDeterministicUnderConcurrency(t *testing.T) {
	engine := NewEngine(DefaultPatterns())
	transcript := "This is Dana Lee, my number is (555) 987-6543, I live at 8 Cedar Court and need hvac repair"
	want := engine.Extract(transcript)

	var wg sync.WaitGroup
	results := make([]Result, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = engine.Extract(transcript)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
	assert.Equal(t, "Dana Lee", *want.Name)
	assert.Equal(t, "+15559876543", *want.CallbackNumber)
}
