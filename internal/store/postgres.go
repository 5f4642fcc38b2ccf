// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"call-intake-workers/internal/models"

	"github.com/google/uuid"
)

// PostgresStore implements Store on database/sql with the lib/pq driver.
type PostgresStore struct {
	db    *sql.DB
	newID func() string
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, newID: uuid.NewString}
}

// Migrate applies Schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const callColumns = `id, call_id, business_id, status, caller_name, callback_number, address, reason,
	call_summary, recording_url, transcript_text, duration_seconds, cost, from_number, to_number,
	confidence, notification_sent, notification_status, notification_claimed_at, event_source, created_at, updated_at`

// statusRank mirrors models.CallStatus.Rank in SQL.
func statusRank(expr string) string {
	return fmt.Sprintf(`(CASE %s WHEN 'completed' THEN 3 WHEN 'failed' THEN 2 WHEN 'in-progress' THEN 1 ELSE 0 END)`, expr)
}

var (
	findBusinessQuery = `SELECT id, name, phone_number, COALESCE(owner_phone, ''), COALESCE(notification_email, ''),
	COALESCE(slack_webhook_url, ''), is_active
FROM businesses WHERE phone_number = $1 AND is_active = TRUE
ORDER BY created_at LIMIT 1`

	getCallQuery = `SELECT ` + callColumns + ` FROM calls WHERE call_id = $1`

	// business_id is absent from the SET list and guarded by WHERE, so a conflicting
	// business yields no row.
	upsertCallQuery = `INSERT INTO calls (id, call_id, business_id, status, caller_name, callback_number, address,
	reason, call_summary, recording_url, transcript_text, duration_seconds, cost, from_number, to_number,
	confidence, notification_sent, notification_status, notification_claimed_at, event_source, created_at, updated_at)
VALUES ($1, $2, $3, COALESCE($4::text, 'in-progress'), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
	COALESCE($17::boolean, FALSE), COALESCE($18::text, ''), $20::timestamptz, COALESCE($19::text, 'explicit'), now(), now())
ON CONFLICT (call_id) DO UPDATE SET
	status = CASE WHEN $4::text IS NOT NULL AND ` + statusRank("$4::text") + ` > ` + statusRank("calls.status") + `
		THEN $4::text ELSE calls.status END,
	caller_name = COALESCE(EXCLUDED.caller_name, calls.caller_name),
	callback_number = COALESCE(EXCLUDED.callback_number, calls.callback_number),
	address = COALESCE(EXCLUDED.address, calls.address),
	reason = COALESCE(EXCLUDED.reason, calls.reason),
	call_summary = COALESCE(EXCLUDED.call_summary, calls.call_summary),
	recording_url = COALESCE(EXCLUDED.recording_url, calls.recording_url),
	transcript_text = COALESCE(EXCLUDED.transcript_text, calls.transcript_text),
	duration_seconds = COALESCE(EXCLUDED.duration_seconds, calls.duration_seconds),
	cost = COALESCE(EXCLUDED.cost, calls.cost),
	from_number = COALESCE(EXCLUDED.from_number, calls.from_number),
	to_number = COALESCE(EXCLUDED.to_number, calls.to_number),
	confidence = COALESCE(EXCLUDED.confidence, calls.confidence),
	notification_sent = COALESCE($17::boolean, calls.notification_sent),
	notification_status = COALESCE($18::text, calls.notification_status),
	notification_claimed_at = COALESCE($20::timestamptz, calls.notification_claimed_at),
	event_source = COALESCE($19::text, calls.event_source),
	updated_at = now()
WHERE calls.business_id = EXCLUDED.business_id
RETURNING ` + callColumns + `, (xmax = 0) AS inserted`

	updateStatusQuery = `UPDATE calls SET
	status = CASE WHEN ` + statusRank("$2::text") + ` > ` + statusRank("status") + ` THEN $2::text ELSE status END,
	updated_at = now()
WHERE call_id = $1
RETURNING ` + callColumns

	incrementAnalyticsQuery = `INSERT INTO call_analytics_daily (business_id, date, total_calls,
	successful_notifications, failed_notifications, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (business_id, date) DO UPDATE SET
	total_calls = call_analytics_daily.total_calls + EXCLUDED.total_calls,
	successful_notifications = call_analytics_daily.successful_notifications + EXCLUDED.successful_notifications,
	failed_notifications = call_analytics_daily.failed_notifications + EXCLUDED.failed_notifications,
	updated_at = now()`

	getAnalyticsQuery = `SELECT business_id, date, total_calls, successful_notifications, failed_notifications, updated_at
FROM call_analytics_daily WHERE business_id = $1 AND date = $2`
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func callDest(rec *models.CallRecord) []interface{} {
	return []interface{}{
		&rec.ID, &rec.CallID, &rec.BusinessID, &rec.Status, &rec.CallerName, &rec.CallbackNumber,
		&rec.Address, &rec.Reason, &rec.CallSummary, &rec.RecordingURL, &rec.TranscriptText,
		&rec.DurationSeconds, &rec.Cost, &rec.FromNumber, &rec.ToNumber, &rec.Confidence,
		&rec.NotificationSent, &rec.NotificationStatus, &rec.NotificationClaimedAt, &rec.EventSource,
		&rec.CreatedAt, &rec.UpdatedAt,
	}
}

func scanCall(row rowScanner) (*models.CallRecord, error) {
	var rec models.CallRecord
	if err := row.Scan(callDest(&rec)...); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PostgresStore) FindBusinessByNormalizedPhone(ctx context.Context, phone string) (*models.Business, error) {
	var b models.Business
	err := s.db.QueryRowContext(ctx, findBusinessQuery, phone).Scan(
		&b.ID, &b.Name, &b.PhoneNumber, &b.OwnerPhone, &b.NotificationEmail, &b.SlackWebhookURL, &b.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: phone %s", ErrBusinessNotFound, phone)
	}
	if err != nil {
		return nil, fmt.Errorf("find business by phone: %w", err)
	}
	return &b, nil
}

func (s *PostgresStore) GetCallByCallID(ctx context.Context, callID string) (*models.CallRecord, error) {
	rec, err := scanCall(s.db.QueryRowContext(ctx, getCallQuery, callID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCallNotFound, callID)
	}
	if err != nil {
		return nil, fmt.Errorf("get call %s: %w", callID, err)
	}
	return rec, nil
}

func (s *PostgresStore) UpsertCall(ctx context.Context, callID string, u models.CallUpdate) (*models.CallRecord, bool, error) {
	var status, notifStatus, source *string
	if u.Status != nil {
		status = models.Ptr(string(*u.Status))
	}
	if u.NotificationStatus != nil {
		notifStatus = models.Ptr(string(*u.NotificationStatus))
	}
	if u.EventSource != nil {
		source = models.Ptr(string(*u.EventSource))
	}

	var rec models.CallRecord
	var inserted bool
	err := s.db.QueryRowContext(ctx, upsertCallQuery,
		s.newID(), callID, u.BusinessID, status,
		u.CallerName, u.CallbackNumber, u.Address, u.Reason, u.CallSummary,
		u.RecordingURL, u.TranscriptText, u.DurationSeconds, u.Cost, u.FromNumber, u.ToNumber,
		u.Confidence, u.NotificationSent, notifStatus, source, u.NotificationClaimedAt,
	).Scan(append(callDest(&rec), &inserted)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("%w: call %s is not owned by business %s", ErrBusinessMismatch, callID, u.BusinessID)
	}
	if err != nil {
		return nil, false, fmt.Errorf("upsert call %s: %w", callID, err)
	}
	return &rec, inserted, nil
}

func (s *PostgresStore) UpdateCallStatus(ctx context.Context, callID string, status models.CallStatus) (*models.CallRecord, error) {
	rec, err := scanCall(s.db.QueryRowContext(ctx, updateStatusQuery, callID, string(status)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCallNotFound, callID)
	}
	if err != nil {
		return nil, fmt.Errorf("update call status %s: %w", callID, err)
	}
	return rec, nil
}

func (s *PostgresStore) IncrementDailyAnalytics(ctx context.Context, businessID string, date time.Time, d models.AnalyticsDelta) error {
	if d.IsZero() {
		return nil
	}
	_, err := s.db.ExecContext(ctx, incrementAnalyticsQuery,
		businessID, day(date), d.TotalCalls, d.SuccessfulNotifications, d.FailedNotifications)
	if err != nil {
		return fmt.Errorf("increment daily analytics: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDailyAnalytics(ctx context.Context, businessID string, date time.Time) (*models.CallAnalyticsDaily, error) {
	var a models.CallAnalyticsDaily
	err := s.db.QueryRowContext(ctx, getAnalyticsQuery, businessID, day(date)).Scan(
		&a.BusinessID, &a.Date, &a.TotalCalls, &a.SuccessfulNotifications, &a.FailedNotifications, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.CallAnalyticsDaily{BusinessID: businessID, Date: day(date)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily analytics: %w", err)
	}
	return &a, nil
}
