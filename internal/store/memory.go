// internal/store/memory.go
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"call-intake-workers/internal/models"

	"github.com/google/uuid"
)

type analyticsKey struct {
	businessID string
	date       time.Time
}

// MemoryStore is an in-process Store with the same guarantees as PostgresStore.
// Every method holds one mutex, so each call is atomic.
type MemoryStore struct {
	mu         sync.Mutex
	businesses map[string]models.Business // by canonical phone
	calls      map[string]*models.CallRecord
	analytics  map[analyticsKey]*models.CallAnalyticsDaily
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		businesses: make(map[string]models.Business),
		calls:      make(map[string]*models.CallRecord),
		analytics:  make(map[analyticsKey]*models.CallAnalyticsDaily),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// PutBusiness registers or replaces a business keyed by its canonical phone number.
func (m *MemoryStore) PutBusiness(b models.Business) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.businesses[b.PhoneNumber] = b
}

func (m *MemoryStore) Ping(context.Context) error { return nil }
func (m *MemoryStore) Close() error               { return nil }

func (m *MemoryStore) FindBusinessByNormalizedPhone(_ context.Context, phone string) (*models.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.businesses[phone]
	if !ok || !b.IsActive {
		return nil, fmt.Errorf("%w: phone %s", ErrBusinessNotFound, phone)
	}
	return &b, nil
}

func (m *MemoryStore) GetCallByCallID(_ context.Context, callID string) (*models.CallRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.calls[callID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCallNotFound, callID)
	}
	return copyCall(rec), nil
}

func (m *MemoryStore) UpsertCall(_ context.Context, callID string, u models.CallUpdate) (*models.CallRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	rec, exists := m.calls[callID]
	if exists {
		if rec.BusinessID != u.BusinessID {
			return nil, false, fmt.Errorf("%w: call %s is not owned by business %s", ErrBusinessMismatch, callID, u.BusinessID)
		}
		u.Apply(rec)
		rec.UpdatedAt = now
		return copyCall(rec), false, nil
	}

	rec = &models.CallRecord{
		ID:          uuid.NewString(),
		CallID:      callID,
		BusinessID:  u.BusinessID,
		Status:      models.CallStatusInProgress,
		EventSource: models.EventSourceExplicit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if u.Status != nil {
		rec.Status = *u.Status
	}
	u.Apply(rec)
	m.calls[callID] = rec
	return copyCall(rec), true, nil
}

func (m *MemoryStore) UpdateCallStatus(_ context.Context, callID string, status models.CallStatus) (*models.CallRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.calls[callID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCallNotFound, callID)
	}
	if rec.Status.Advances(status) {
		rec.Status = status
	}
	rec.UpdatedAt = m.now()
	return copyCall(rec), nil
}

func (m *MemoryStore) IncrementDailyAnalytics(_ context.Context, businessID string, date time.Time, d models.AnalyticsDelta) error {
	if d.IsZero() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := analyticsKey{businessID: businessID, date: day(date)}
	row, ok := m.analytics[key]
	if !ok {
		row = &models.CallAnalyticsDaily{BusinessID: businessID, Date: key.date}
		m.analytics[key] = row
	}
	row.TotalCalls += d.TotalCalls
	row.SuccessfulNotifications += d.SuccessfulNotifications
	row.FailedNotifications += d.FailedNotifications
	row.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStore) GetDailyAnalytics(_ context.Context, businessID string, date time.Time) (*models.CallAnalyticsDaily, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := analyticsKey{businessID: businessID, date: day(date)}
	if row, ok := m.analytics[key]; ok {
		cp := *row
		return &cp, nil
	}
	return &models.CallAnalyticsDaily{BusinessID: businessID, Date: key.date}, nil
}

// CallCount returns how many call records exist.
func (m *MemoryStore) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func copyCall(rec *models.CallRecord) *models.CallRecord {
	cp := *rec
	// pointer fields are never mutated in place, only replaced
	return &cp
}
