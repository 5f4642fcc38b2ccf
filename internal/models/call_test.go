package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallStatus_Advances(t *testing.T) {
	tests := []struct {
		from, to CallStatus
		want     bool
	}{
		{"", CallStatusInProgress, true},
		{CallStatusInProgress, CallStatusCompleted, true},
		{CallStatusInProgress, CallStatusFailed, true},
		{CallStatusFailed, CallStatusCompleted, true},
		{CallStatusCompleted, CallStatusInProgress, false},
		{CallStatusCompleted, CallStatusFailed, false},
		{CallStatusCompleted, CallStatusCompleted, false},
		{CallStatusInProgress, CallStatus("bogus"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.Advances(tt.to))
		})
	}
}

func TestCallUpdate_Apply(t *testing.T) {
	rec := &CallRecord{
		CallID:     "c1",
		BusinessID: "b1",
		Status:     CallStatusCompleted,
		CallerName: Ptr("Old Name"),
		Address:    Ptr("1 Main St"),
	}

	CallUpdate{
		BusinessID:         "b2",
		Status:             Ptr(CallStatusInProgress),
		CallerName:         Ptr("New Name"),
		Reason:             Ptr("Leak"),
		NotificationStatus: Ptr(NotificationSent),
		NotificationSent:   Ptr(true),
	}.Apply(rec)

	assert.Equal(t, "b1", rec.BusinessID)
	assert.Equal(t, CallStatusCompleted, rec.Status)
	assert.Equal(t, "New Name", *rec.CallerName)
	assert.Equal(t, "1 Main St", *rec.Address)
	assert.Equal(t, "Leak", *rec.Reason)
	assert.True(t, rec.NotificationSent)
	assert.Equal(t, NotificationSent, rec.NotificationStatus)
}

func TestCallEvent_TranscriptSource(t *testing.T) {
	assert.Equal(t, "a", CallEvent{Transcript: "a", Summary: "e"}.TranscriptSource())
	assert.Equal(t, "c", CallEvent{Transcript: "  ", Conversation: "c", CallSummary: "d"}.TranscriptSource())
	assert.Equal(t, "e", CallEvent{Summary: "e"}.TranscriptSource())
	assert.False(t, CallEvent{}.HasTranscript())
}
