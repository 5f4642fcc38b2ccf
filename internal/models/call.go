// internal/models/call.go
package models

import "time"

type CallStatus string

const (
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
)

// Rank orders statuses so that a call only ever moves forward:
// in-progress < failed < completed. Unknown statuses rank 0.
func (s CallStatus) Rank() int {
	switch s {
	case CallStatusInProgress:
		return 1
	case CallStatusFailed:
		return 2
	case CallStatusCompleted:
		return 3
	default:
		return 0
	}
}

func (s CallStatus) Valid() bool { return s.Rank() > 0 }

func (s CallStatus) IsTerminal() bool {
	return s == CallStatusCompleted || s == CallStatusFailed
}

// Advances reports whether moving from s to next is a forward transition.
func (s CallStatus) Advances(next CallStatus) bool {
	return next.Rank() > s.Rank()
}

type NotificationStatus string

const (
	NotificationNone     NotificationStatus = ""
	NotificationPending  NotificationStatus = "pending"
	NotificationSent     NotificationStatus = "sent"
	NotificationFailed   NotificationStatus = "failed"
	NotificationDisabled NotificationStatus = "disabled"
)

// EventSource records which payload shape last shaped the record.
type EventSource string

const (
	EventSourceExplicit EventSource = "explicit"
	EventSourceLegacy   EventSource = "legacy"
)

// CallRecord is the canonical per-call aggregate, unique by CallID.
type CallRecord struct {
	ID                    string             `json:"id"`
	CallID                string             `json:"call_id"`
	BusinessID            string             `json:"business_id"`
	Status                CallStatus         `json:"status"`
	CallerName            *string            `json:"caller_name"`
	CallbackNumber        *string            `json:"callback_number"`
	Address               *string            `json:"address"`
	Reason                *string            `json:"reason"`
	CallSummary           *string            `json:"call_summary"`
	RecordingURL          *string            `json:"recording_url"`
	TranscriptText        *string            `json:"transcript_text"`
	DurationSeconds       *int               `json:"duration_seconds"`
	Cost                  *float64           `json:"cost"`
	FromNumber            *string            `json:"from_number"`
	ToNumber              *string            `json:"to_number"`
	Confidence            *float64           `json:"confidence"`
	NotificationSent      bool               `json:"notification_sent"`
	NotificationStatus    NotificationStatus `json:"notification_status,omitempty"`
	NotificationClaimedAt *time.Time         `json:"notification_claimed_at,omitempty"`
	EventSource           EventSource        `json:"event_source"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// CallUpdate is a partial write. Nil fields leave the stored value untouched.
// BusinessID is only used when the record is created; it is never reassigned.
type CallUpdate struct {
	BusinessID            string
	Status                *CallStatus
	CallerName            *string
	CallbackNumber        *string
	Address               *string
	Reason                *string
	CallSummary           *string
	RecordingURL          *string
	TranscriptText        *string
	DurationSeconds       *int
	Cost                  *float64
	FromNumber            *string
	ToNumber              *string
	Confidence            *float64
	NotificationSent      *bool
	NotificationStatus    *NotificationStatus
	NotificationClaimedAt *time.Time
	EventSource           *EventSource
}

// Apply merges u into rec in place, honoring forward-only status and fixed business.
func (u CallUpdate) Apply(rec *CallRecord) {
	if u.Status != nil && rec.Status.Advances(*u.Status) {
		rec.Status = *u.Status
	}
	setString(&rec.CallerName, u.CallerName)
	setString(&rec.CallbackNumber, u.CallbackNumber)
	setString(&rec.Address, u.Address)
	setString(&rec.Reason, u.Reason)
	setString(&rec.CallSummary, u.CallSummary)
	setString(&rec.RecordingURL, u.RecordingURL)
	setString(&rec.TranscriptText, u.TranscriptText)
	setString(&rec.FromNumber, u.FromNumber)
	setString(&rec.ToNumber, u.ToNumber)
	if u.DurationSeconds != nil {
		v := *u.DurationSeconds
		rec.DurationSeconds = &v
	}
	if u.Cost != nil {
		v := *u.Cost
		rec.Cost = &v
	}
	if u.Confidence != nil {
		v := *u.Confidence
		rec.Confidence = &v
	}
	if u.NotificationSent != nil {
		rec.NotificationSent = *u.NotificationSent
	}
	if u.NotificationStatus != nil {
		rec.NotificationStatus = *u.NotificationStatus
	}
	if u.NotificationClaimedAt != nil {
		v := *u.NotificationClaimedAt
		rec.NotificationClaimedAt = &v
	}
	if u.EventSource != nil {
		rec.EventSource = *u.EventSource
	}
}

func setString(dst **string, src *string) {
	if src == nil {
		return
	}
	v := *src
	*dst = &v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
