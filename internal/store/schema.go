// internal/store/schema.go
package store

// Schema creates the tables used by PostgresStore. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS businesses (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	phone_number       TEXT NOT NULL,
	owner_phone        TEXT,
	notification_email TEXT,
	slack_webhook_url  TEXT,
	is_active          BOOLEAN NOT NULL DEFAULT TRUE,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_businesses_phone_number ON businesses (phone_number);

CREATE TABLE IF NOT EXISTS calls (
	id                      TEXT PRIMARY KEY,
	call_id                 TEXT NOT NULL UNIQUE,
	business_id             TEXT NOT NULL REFERENCES businesses (id),
	status                  TEXT NOT NULL CHECK (status IN ('in-progress', 'completed', 'failed')),
	caller_name             TEXT,
	callback_number         TEXT,
	address                 TEXT,
	reason                  TEXT,
	call_summary            TEXT,
	recording_url           TEXT,
	transcript_text         TEXT,
	duration_seconds        INTEGER,
	cost                    DOUBLE PRECISION,
	from_number             TEXT,
	to_number               TEXT,
	confidence              DOUBLE PRECISION,
	notification_sent       BOOLEAN NOT NULL DEFAULT FALSE,
	notification_status     TEXT NOT NULL DEFAULT '',
	notification_claimed_at TIMESTAMPTZ,
	event_source            TEXT NOT NULL DEFAULT 'explicit',
	created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);

ALTER TABLE calls ADD COLUMN IF NOT EXISTS notification_claimed_at TIMESTAMPTZ;

CREATE INDEX IF NOT EXISTS idx_calls_business_id ON calls (business_id, created_at DESC);

CREATE TABLE IF NOT EXISTS call_analytics_daily (
	business_id              TEXT NOT NULL REFERENCES businesses (id),
	date                     DATE NOT NULL,
	total_calls              INTEGER NOT NULL DEFAULT 0,
	successful_notifications INTEGER NOT NULL DEFAULT 0,
	failed_notifications     INTEGER NOT NULL DEFAULT 0,
	updated_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (business_id, date)
);
`
