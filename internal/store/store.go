// internal/store/store.go
package store

import (
	"context"
	"errors"
	"time"

	"call-intake-workers/internal/models"
)

var (
	ErrBusinessNotFound = errors.New("BUSINESS_NOT_FOUND")
	ErrCallNotFound     = errors.New("CALL_NOT_FOUND")
	ErrBusinessMismatch = errors.New("BUSINESS_MISMATCH")
)

// RecordStore persists call records. Implementations guarantee at most one record per
// call_id, never reassign business_id and never move status backwards.
type RecordStore interface {
	// FindBusinessByNormalizedPhone returns only active businesses.
	FindBusinessByNormalizedPhone(ctx context.Context, phone string) (*models.Business, error)
	GetCallByCallID(ctx context.Context, callID string) (*models.CallRecord, error)
	// UpsertCall inserts or merges. The bool reports whether the record was created.
	UpsertCall(ctx context.Context, callID string, update models.CallUpdate) (*models.CallRecord, bool, error)
	UpdateCallStatus(ctx context.Context, callID string, status models.CallStatus) (*models.CallRecord, error)
}

// AnalyticsStore keeps per-business daily counters. Increments are atomic.
type AnalyticsStore interface {
	IncrementDailyAnalytics(ctx context.Context, businessID string, date time.Time, delta models.AnalyticsDelta) error
	GetDailyAnalytics(ctx context.Context, businessID string, date time.Time) (*models.CallAnalyticsDaily, error)
}

// Store is everything the call pipeline persists.
type Store interface {
	RecordStore
	AnalyticsStore
	Ping(ctx context.Context) error
	Close() error
}

// day truncates t to its UTC calendar date.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
