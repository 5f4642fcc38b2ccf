// internal/models/event.go
package models

import "strings"

const (
	EventTypeCallStarted  = "call_started"
	EventTypeCallEnded    = "call_ended"
	EventTypeCallAnalyzed = "call_analyzed"
)

// CallEvent is one inbound delivery about a call. Explicit events carry EventType;
// legacy events carry only CallStatus.
type CallEvent struct {
	CallID         string   `json:"call_id"`
	ToNumber       string   `json:"to_number"`
	FromNumber     string   `json:"from_number,omitempty"`
	EventType      string   `json:"event_type,omitempty"`
	CallStatus     string   `json:"call_status,omitempty"`
	Transcript     string   `json:"transcript,omitempty"`
	TranscriptText string   `json:"transcript_text,omitempty"`
	Conversation   string   `json:"conversation,omitempty"`
	CallSummary    string   `json:"call_summary,omitempty"`
	Summary        string   `json:"summary,omitempty"`
	RecordingURL   string   `json:"recording_url,omitempty"`
	CallDuration   *float64 `json:"call_duration,omitempty"`
}

// TranscriptSource returns the first non-blank transcript-bearing field in priority
// order: transcript, transcript_text, conversation, call_summary, summary.
func (e CallEvent) TranscriptSource() string {
	for _, s := range []string{e.Transcript, e.TranscriptText, e.Conversation, e.CallSummary, e.Summary} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func (e CallEvent) HasTranscript() bool {
	return e.TranscriptSource() != ""
}
