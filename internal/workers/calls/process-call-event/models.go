// internal/workers/calls/process-call-event/models.go
package processcallevent

// Output is set as job variables and returned as the webhook response body.
type Output struct {
	Success            bool     `json:"success"`
	CallID             string   `json:"callId"`
	BusinessID         string   `json:"businessId,omitempty"`
	EventKind          string   `json:"eventKind"`
	Action             string   `json:"action,omitempty"`
	Status             string   `json:"status,omitempty"`
	NotificationStatus string   `json:"notificationStatus,omitempty"`
	Confidence         *float64 `json:"confidence,omitempty"`
}

type ErrorResponse struct {
	Success   bool     `json:"success"`
	CallID    string   `json:"callId,omitempty"`
	ErrorCode string   `json:"errorCode"`
	Message   string   `json:"message"`
	Details   []string `json:"details,omitempty"`
	Retryable bool     `json:"retryable"`
}
