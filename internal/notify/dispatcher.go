// internal/notify/dispatcher.go
package notify

import (
	"context"
	"fmt"
	"time"

	"call-intake-workers/internal/common/logger"
	"call-intake-workers/internal/common/metrics"
	"call-intake-workers/internal/models"

	"github.com/google/uuid"
)

type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message string) (string, error)
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
}

type WebhookPoster interface {
	PostJSON(ctx context.Context, url string, payload interface{}) error
}

// Notifier is what the reconciler needs from notification delivery.
type Notifier interface {
	SendAllNotifications(ctx context.Context, call *models.CallRecord, biz *models.Business) *models.NotificationOutcome
}

type Config struct {
	SMSEnabled   bool
	EmailEnabled bool
	SlackEnabled bool
	Timeout      time.Duration
}

// Dispatcher fans a call out to the business owner over SMS, email and Slack.
// A nil sender disables its channel.
type Dispatcher struct {
	cfg       Config
	sms       SMSSender
	email     EmailSender
	slack     WebhookPoster
	templates map[models.NotificationChannel]models.NotificationTemplate
	logger    logger.Logger
	now       func() time.Time
}

func NewDispatcher(cfg Config, sms SMSSender, email EmailSender, slack WebhookPoster, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:       cfg,
		sms:       sms,
		email:     email,
		slack:     slack,
		templates: defaultTemplates(),
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SendAllNotifications tries every channel once. Status is sent when at least one
// channel sent and none failed, failed when any channel failed, disabled otherwise.
// It never returns an error; failures are reported per channel.
func (d *Dispatcher) SendAllNotifications(ctx context.Context, call *models.CallRecord, biz *models.Business) *models.NotificationOutcome {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	data := templateData(call, biz)
	log := d.logger.WithFields(logger.CallFields(call.CallID, biz.ID, ""))

	results := []models.ChannelResult{
		d.deliver(ctx, models.ChannelSMS, d.cfg.SMSEnabled && d.sms != nil && biz.OwnerPhone != "",
			func(ctx context.Context) (string, error) {
				return d.sms.SendSMS(ctx, biz.OwnerPhone, renderTemplate(d.templates[models.ChannelSMS].Body, data))
			}),
		d.deliver(ctx, models.ChannelEmail, d.cfg.EmailEnabled && d.email != nil && biz.NotificationEmail != "",
			func(ctx context.Context) (string, error) {
				tmpl := d.templates[models.ChannelEmail]
				return d.email.SendEmail(ctx, biz.NotificationEmail, renderTemplate(tmpl.Subject, data), renderTemplate(tmpl.Body, data))
			}),
		d.deliver(ctx, models.ChannelSlack, d.cfg.SlackEnabled && d.slack != nil && biz.SlackWebhookURL != "",
			func(ctx context.Context) (string, error) {
				text := renderTemplate(d.templates[models.ChannelSlack].Body, data)
				return "", d.slack.PostJSON(ctx, biz.SlackWebhookURL, map[string]string{"text": text})
			}),
	}

	outcome := &models.NotificationOutcome{
		ID:       uuid.NewString(),
		Status:   summarize(results),
		Channels: results,
	}
	outcome.Success = outcome.Status == models.NotificationSent

	for _, r := range results {
		metrics.NotificationsSent.WithLabelValues(string(r.Channel), string(r.Status)).Inc()
		if r.Status == models.NotificationFailed {
			log.Error("Notification channel failed", map[string]interface{}{
				"channel": string(r.Channel),
				"error":   r.Error,
			})
		}
	}
	log.Info("Notifications dispatched", map[string]interface{}{
		"notificationId": outcome.ID,
		"status":         string(outcome.Status),
	})
	return outcome
}

func (d *Dispatcher) deliver(ctx context.Context, ch models.NotificationChannel, enabled bool, send func(context.Context) (string, error)) models.ChannelResult {
	if !enabled {
		return models.ChannelResult{Channel: ch, Status: models.NotificationDisabled}
	}
	id, err := send(ctx)
	if err != nil {
		return models.ChannelResult{
			Channel: ch,
			Status:  models.NotificationFailed,
			Error:   fmt.Sprintf("%s: %v", ch, err),
		}
	}
	sentAt := d.now()
	return models.ChannelResult{Channel: ch, Status: models.NotificationSent, MessageID: id, SentAt: &sentAt}
}

func summarize(results []models.ChannelResult) models.NotificationStatus {
	sent := false
	for _, r := range results {
		switch r.Status {
		case models.NotificationFailed:
			return models.NotificationFailed
		case models.NotificationSent:
			sent = true
		}
	}
	if sent {
		return models.NotificationSent
	}
	return models.NotificationDisabled
}
