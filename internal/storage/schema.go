package storage

import (
	"context"
	"fmt"

	"github.com/agendly/agendly/libs/db"
)

// Bootstrap creates every table the engine needs. All statements are
// idempotent so the process can run it on every start.
func Bootstrap(ctx context.Context, pool *db.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schedule_ticks (
			tick SMALLINT PRIMARY KEY,
			CHECK (tick >= 0 AND tick < 1440)
		)`,
		`CREATE TABLE IF NOT EXISTS services (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			duration_minutes INT NOT NULL CHECK (duration_minutes > 0),
			price NUMERIC(10,2) NOT NULL DEFAULT 0,
			reservation_period TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS service_work_days (
			service_id UUID NOT NULL REFERENCES services (id) ON DELETE CASCADE,
			weekday TEXT NOT NULL,
			PRIMARY KEY (service_id, weekday)
		)`,
		`CREATE TABLE IF NOT EXISTS service_work_schedule (
			service_id UUID NOT NULL REFERENCES services (id) ON DELETE CASCADE,
			tick SMALLINT NOT NULL REFERENCES schedule_ticks (tick),
			PRIMARY KEY (service_id, tick)
		)`,
		`CREATE TABLE IF NOT EXISTS clients (
			id UUID PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			phone TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id UUID PRIMARY KEY,
			client_id UUID NOT NULL REFERENCES clients (id) ON DELETE CASCADE,
			service_id UUID NOT NULL REFERENCES services (id),
			booking_date DATE NOT NULL,
			booking_time SMALLINT NOT NULL REFERENCES schedule_ticks (tick),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (service_id, booking_date, booking_time)
		)`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
			id BIGSERIAL PRIMARY KEY,
			event_id UUID NOT NULL,
			aggregate_type TEXT NOT NULL,
			aggregate_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			payload JSONB NOT NULL,
			traceparent TEXT NOT NULL DEFAULT '',
			tracestate TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			published_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS bookings_client_idx ON bookings (client_id)`,
		`CREATE INDEX IF NOT EXISTS outbox_unpublished_idx ON outbox_events (id) WHERE published_at IS NULL`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
