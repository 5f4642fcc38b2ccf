// internal/models/business.go
package models

// Business is read-only to the call pipeline. PhoneNumber is stored in canonical form.
type Business struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	PhoneNumber       string `json:"phone_number"`
	OwnerPhone        string `json:"owner_phone,omitempty"`
	NotificationEmail string `json:"notification_email,omitempty"`
	SlackWebhookURL   string `json:"slack_webhook_url,omitempty"`
	IsActive          bool   `json:"is_active"`
}
