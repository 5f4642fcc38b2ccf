// internal/models/notification.go
package models

import "time"

type NotificationChannel string

const (
	ChannelSMS   NotificationChannel = "sms"
	ChannelEmail NotificationChannel = "email"
	ChannelSlack NotificationChannel = "slack"
)

// ChannelResult is the outcome of one delivery attempt.
type ChannelResult struct {
	Channel   NotificationChannel `json:"channel"`
	Status    NotificationStatus  `json:"status"` // sent, failed or disabled
	MessageID string              `json:"messageId,omitempty"`
	Error     string              `json:"error,omitempty"`
	SentAt    *time.Time          `json:"sentAt,omitempty"`
}

// NotificationOutcome aggregates every channel for one call.
type NotificationOutcome struct {
	ID       string             `json:"id"`
	Success  bool               `json:"success"`
	Status   NotificationStatus `json:"status"`
	Channels []ChannelResult    `json:"channels"`
}

type NotificationTemplate struct {
	Channel NotificationChannel `json:"channel"`
	Subject string              `json:"subject,omitempty"`
	Body    string              `json:"body"`
}
