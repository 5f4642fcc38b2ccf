package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"call-intake-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var callColumnNames = []string{
	"id", "call_id", "business_id", "status", "caller_name", "callback_number", "address", "reason",
	"call_summary", "recording_url", "transcript_text", "duration_seconds", "cost", "from_number", "to_number",
	"confidence", "notification_sent", "notification_status", "notification_claimed_at", "event_source", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s := NewPostgresStore(db)
	s.newID = func() string { return "rec-1" }
	return s, mock
}

func callRow(status string, withInserted bool, inserted bool) *sqlmock.Rows {
	cols := callColumnNames
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	values := []driver.Value{
		"rec-1", "call-1", "biz-1", status, "Sarah Jones", nil, nil, "A clogged drain",
		"A clogged drain", nil, "transcript", int64(90), 0.15, "+15559990000", "+15550001111",
		0.5, false, "pending", now, "explicit", now, now,
	}
	if withInserted {
		cols = append(append([]string{}, callColumnNames...), "inserted")
		values = append(values, inserted)
	}
	return sqlmock.NewRows(cols).AddRow(values...)
}

func TestPostgresStore_FindBusinessByNormalizedPhone(t *testing.T) {
	tests := []struct {
		name           string
		mockQuery      func(mock sqlmock.Sqlmock)
		validateOutput func(t *testing.T, b *models.Business, err error)
	}{
		{
			name: "active business",
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name", "phone_number", "owner_phone", "notification_email", "slack_webhook_url", "is_active"}).
					AddRow("biz-1", "Acme", "+15550001111", "+15551112222", "owner@acme.test", "", true)
				mock.ExpectQuery(`SELECT id, name, phone_number.* FROM businesses WHERE phone_number = \$1 AND is_active = TRUE`).
					WithArgs("+15550001111").
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, b *models.Business, err error) {
				require.NoError(t, err)
				assert.Equal(t, "biz-1", b.ID)
				assert.Equal(t, "owner@acme.test", b.NotificationEmail)
				assert.True(t, b.IsActive)
			},
		},
		{
			name: "no active business",
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM businesses`).WithArgs("+15550001111").WillReturnError(sql.ErrNoRows)
			},
			validateOutput: func(t *testing.T, b *models.Business, err error) {
				assert.Nil(t, b)
				assert.ErrorIs(t, err, ErrBusinessNotFound)
			},
		},
		{
			name: "driver failure",
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM businesses`).WithArgs("+15550001111").WillReturnError(errors.New("connection reset"))
			},
			validateOutput: func(t *testing.T, b *models.Business, err error) {
				require.Error(t, err)
				assert.NotErrorIs(t, err, ErrBusinessNotFound)
				assert.Contains(t, err.Error(), "connection reset")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			tt.mockQuery(mock)
			b, err := s.FindBusinessByNormalizedPhone(context.Background(), "+15550001111")
			tt.validateOutput(t, b, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_GetCallByCallID(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT id, call_id, business_id, status`).
		WithArgs("call-1").
		WillReturnRows(callRow("completed", false, false))

	rec, err := s.GetCallByCallID(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, models.CallStatusCompleted, rec.Status)
	assert.Equal(t, "Sarah Jones", *rec.CallerName)
	assert.Nil(t, rec.CallbackNumber)
	assert.Equal(t, 90, *rec.DurationSeconds)
	assert.Equal(t, models.NotificationPending, rec.NotificationStatus)
	require.NotNil(t, rec.NotificationClaimedAt)
	assert.Equal(t, 2026, rec.NotificationClaimedAt.Year())

	mock.ExpectQuery(`FROM calls WHERE call_id = \$1`).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	_, err = s.GetCallByCallID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCallNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertCall(t *testing.T) {
	tests := []struct {
		name           string
		mockQuery      func(mock sqlmock.Sqlmock)
		validateOutput func(t *testing.T, rec *models.CallRecord, created bool, err error)
	}{
		{
			name: "insert",
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO calls .* ON CONFLICT \(call_id\) DO UPDATE SET .* WHERE calls.business_id = EXCLUDED.business_id`).
					WithArgs("rec-1", "call-1", "biz-1", "in-progress",
						nil, nil, nil, nil, nil, nil, nil, nil, nil,
						"+15559990000", "+15550001111", nil, nil, nil, "explicit", nil).
					WillReturnRows(callRow("in-progress", true, true))
			},
			validateOutput: func(t *testing.T, rec *models.CallRecord, created bool, err error) {
				require.NoError(t, err)
				assert.True(t, created)
				assert.Equal(t, "call-1", rec.CallID)
			},
		},
		{
			name: "merge into existing",
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO calls`).WillReturnRows(callRow("completed", true, false))
			},
			validateOutput: func(t *testing.T, rec *models.CallRecord, created bool, err error) {
				require.NoError(t, err)
				assert.False(t, created)
				assert.Equal(t, models.CallStatusCompleted, rec.Status)
			},
		},
		{
			name: "owned by another business",
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO calls`).WillReturnError(sql.ErrNoRows)
			},
			validateOutput: func(t *testing.T, rec *models.CallRecord, created bool, err error) {
				assert.ErrorIs(t, err, ErrBusinessMismatch)
				assert.Nil(t, rec)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			tt.mockQuery(mock)
			rec, created, err := s.UpsertCall(context.Background(), "call-1", models.CallUpdate{
				BusinessID:  "biz-1",
				Status:      models.Ptr(models.CallStatusInProgress),
				FromNumber:  models.Ptr("+15559990000"),
				ToNumber:    models.Ptr("+15550001111"),
				EventSource: models.Ptr(models.EventSourceExplicit),
			})
			tt.validateOutput(t, rec, created, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_UpdateCallStatus(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`UPDATE calls SET\s+status = CASE`).
		WithArgs("call-1", "completed").
		WillReturnRows(callRow("completed", false, false))

	rec, err := s.UpdateCallStatus(context.Background(), "call-1", models.CallStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.CallStatusCompleted, rec.Status)

	mock.ExpectQuery(`UPDATE calls`).WithArgs("nope", "completed").WillReturnError(sql.ErrNoRows)
	_, err = s.UpdateCallStatus(context.Background(), "nope", models.CallStatusCompleted)
	assert.ErrorIs(t, err, ErrCallNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_IncrementDailyAnalytics(t *testing.T) {
	s, mock := newMockStore(t)
	when := time.Date(2026, 5, 6, 22, 30, 0, 0, time.FixedZone("x", -3*3600))

	mock.ExpectExec(`INSERT INTO call_analytics_daily .* ON CONFLICT \(business_id, date\) DO UPDATE SET\s+total_calls = call_analytics_daily.total_calls \+ EXCLUDED.total_calls`).
		WithArgs("biz-1", time.Date(2026, 5, 7, 0, 0, 0, 0, time.UTC), 1, 0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.IncrementDailyAnalytics(context.Background(), "biz-1", when, models.AnalyticsDelta{TotalCalls: 1, FailedNotifications: 1})
	require.NoError(t, err)

	// zero deltas never reach the database
	require.NoError(t, s.IncrementDailyAnalytics(context.Background(), "biz-1", when, models.AnalyticsDelta{}))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS calls`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
