package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"call-intake-workers/internal/common/logger"
	"call-intake-workers/internal/models"
	"call-intake-workers/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockAnalyticsStore struct {
	IncrementFunc func(ctx context.Context, businessID string, date time.Time, delta models.AnalyticsDelta) error
	GetFunc       func(ctx context.Context, businessID string, date time.Time) (*models.CallAnalyticsDaily, error)
}

func (m *MockAnalyticsStore) IncrementDailyAnalytics(ctx context.Context, businessID string, date time.Time, delta models.AnalyticsDelta) error {
	return m.IncrementFunc(ctx, businessID, date, delta)
}

func (m *MockAnalyticsStore) GetDailyAnalytics(ctx context.Context, businessID string, date time.Time) (*models.CallAnalyticsDaily, error) {
	return m.GetFunc(ctx, businessID, date)
}

func TestDelta(t *testing.T) {
	tests := []struct {
		name     string
		created  bool
		outcome  *models.NotificationOutcome
		expected models.AnalyticsDelta
	}{
		{name: "new call without notification", created: true, expected: models.AnalyticsDelta{TotalCalls: 1}},
		{name: "redelivery counts nothing", created: false, expected: models.AnalyticsDelta{}},
		{
			name:     "new call with sent notification",
			created:  true,
			outcome:  &models.NotificationOutcome{Status: models.NotificationSent},
			expected: models.AnalyticsDelta{TotalCalls: 1, SuccessfulNotifications: 1},
		},
		{
			name:     "failed notification on existing call",
			outcome:  &models.NotificationOutcome{Status: models.NotificationFailed},
			expected: models.AnalyticsDelta{FailedNotifications: 1},
		},
		{
			name:     "disabled notification counts nothing",
			outcome:  &models.NotificationOutcome{Status: models.NotificationDisabled},
			expected: models.AnalyticsDelta{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Delta(tt.created, tt.outcome))
		})
	}
}

func TestAggregator_Record(t *testing.T) {
	mem := store.NewMemoryStore()
	agg := NewAggregator(mem, logger.NewTestLogger(t))
	fixed := time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC)
	agg.now = func() time.Time { return fixed }
	ctx := context.Background()

	require.NoError(t, agg.Record(ctx, "biz-1", true, nil))
	require.NoError(t, agg.Record(ctx, "biz-1", false, &models.NotificationOutcome{Status: models.NotificationSent}))
	require.NoError(t, agg.Record(ctx, "biz-1", true, &models.NotificationOutcome{Status: models.NotificationFailed}))
	require.NoError(t, agg.Record(ctx, "biz-1", false, nil))

	row, err := agg.Today(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, 2, row.TotalCalls)
	assert.Equal(t, 1, row.SuccessfulNotifications)
	assert.Equal(t, 1, row.FailedNotifications)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), row.Date)
}

func TestAggregator_RecordSkipsZeroDelta(t *testing.T) {
	called := false
	agg := NewAggregator(&MockAnalyticsStore{
		IncrementFunc: func(ctx context.Context, businessID string, date time.Time, delta models.AnalyticsDelta) error {
			called = true
			return nil
		},
	}, logger.NewNoOpLogger())

	require.NoError(t, agg.Record(context.Background(), "biz-1", false, nil))
	assert.False(t, called)
}

func TestAggregator_RecordStoreError(t *testing.T) {
	agg := NewAggregator(&MockAnalyticsStore{
		IncrementFunc: func(ctx context.Context, businessID string, date time.Time, delta models.AnalyticsDelta) error {
			return errors.New("connection reset")
		},
	}, logger.NewNoOpLogger())

	err := agg.Record(context.Background(), "biz-1", true, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "biz-1")
	assert.Contains(t, err.Error(), "connection reset")
}
