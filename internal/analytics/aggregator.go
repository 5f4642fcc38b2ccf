// internal/analytics/aggregator.go
package analytics

import (
	"context"
	"fmt"
	"time"

	"call-intake-workers/internal/common/logger"
	"call-intake-workers/internal/models"
	"call-intake-workers/internal/store"
)

// Aggregator turns reconciliation outcomes into daily per-business counters.
type Aggregator struct {
	store  store.AnalyticsStore
	logger logger.Logger
	now    func() time.Time
}

func NewAggregator(s store.AnalyticsStore, log logger.Logger) *Aggregator {
	return &Aggregator{
		store:  s,
		logger: log.WithFields(map[string]interface{}{"component": "analytics"}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Delta computes the counters one processed event contributes. A call counts toward
// total_calls only on the event that created its record.
func Delta(created bool, outcome *models.NotificationOutcome) models.AnalyticsDelta {
	var d models.AnalyticsDelta
	if created {
		d.TotalCalls = 1
	}
	if outcome != nil {
		switch outcome.Status {
		case models.NotificationSent:
			d.SuccessfulNotifications = 1
		case models.NotificationFailed:
			d.FailedNotifications = 1
		}
	}
	return d
}

// Record applies the delta for today's row. Zero deltas are skipped.
func (a *Aggregator) Record(ctx context.Context, businessID string, created bool, outcome *models.NotificationOutcome) error {
	delta := Delta(created, outcome)
	if delta.IsZero() {
		return nil
	}
	if err := a.store.IncrementDailyAnalytics(ctx, businessID, a.now(), delta); err != nil {
		a.logger.Error("Failed to update daily analytics", map[string]interface{}{
			"businessId": businessID,
			"error":      err.Error(),
		})
		return fmt.Errorf("increment analytics for %s: %w", businessID, err)
	}
	a.logger.Debug("Daily analytics updated", map[string]interface{}{
		"businessId":              businessID,
		"totalCalls":              delta.TotalCalls,
		"successfulNotifications": delta.SuccessfulNotifications,
		"failedNotifications":     delta.FailedNotifications,
	})
	return nil
}

// Today returns the current day's counters for a business.
func (a *Aggregator) Today(ctx context.Context, businessID string) (*models.CallAnalyticsDaily, error) {
	return a.store.GetDailyAnalytics(ctx, businessID, a.now())
}
