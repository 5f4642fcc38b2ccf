// internal/models/analytics.go
package models

import "time"

// CallAnalyticsDaily holds per-business counters for one UTC day.
type CallAnalyticsDaily struct {
	BusinessID              string    `json:"business_id"`
	Date                    time.Time `json:"date"`
	TotalCalls              int       `json:"total_calls"`
	SuccessfulNotifications int       `json:"successful_notifications"`
	FailedNotifications     int       `json:"failed_notifications"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// AnalyticsDelta is added atomically to a daily row.
type AnalyticsDelta struct {
	TotalCalls              int `json:"total_calls"`
	SuccessfulNotifications int `json:"successful_notifications"`
	FailedNotifications     int `json:"failed_notifications"`
}

func (d AnalyticsDelta) IsZero() bool {
	return d.TotalCalls == 0 && d.SuccessfulNotifications == 0 && d.FailedNotifications == 0
}
