package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/agendly/agendly/internal/model"
	"github.com/agendly/agendly/internal/outbox"
	"github.com/agendly/agendly/libs/db"
)

type BookingRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewBookingRepository(pool *db.Pool, ob *outbox.Repository) *BookingRepository {
	return &BookingRepository{pool: pool, outbox: ob}
}

// CreateBooking inserts the booking and stages its booking.created.v1
// event in one transaction. The UNIQUE (service_id, booking_date,
// booking_time) index decides races: the losing insert fails with a
// unique violation that IsConflict recognizes.
func (r *BookingRepository) CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Booking{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b.ID = uuid.NewString()
	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (id, client_id, service_id, booking_date, booking_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, b.ID, b.ClientID, b.ServiceID, b.Date, int16(b.Time)).Scan(&b.CreatedAt)
	if err != nil {
		return model.Booking{}, err
	}

	payload, err := json.Marshal(map[string]any{
		"booking_id": b.ID,
		"client_id":  b.ClientID,
		"service_id": b.ServiceID,
		"date":       b.Date.Format("2006-01-02"),
		"time":       b.Time.String(),
		"created_at": b.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return model.Booking{}, err
	}
	if err := r.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "booking",
		AggregateID:   b.ID,
		EventType:     outbox.EventBookingCreated,
		Payload:       payload,
	}); err != nil {
		return model.Booking{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// ListBookedTimes returns the taken times for a service on a date.
func (r *BookingRepository) ListBookedTimes(ctx context.Context, serviceID string, date time.Time) ([]model.TimeOfDay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT booking_time
		FROM bookings
		WHERE service_id = $1 AND booking_date = $2
		ORDER BY booking_time
	`, serviceID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var booked []model.TimeOfDay
	for rows.Next() {
		var t int16
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		booked = append(booked, model.TimeOfDay(t))
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return booked, nil
}

// ListByClient returns the client's bookings newest first.
func (r *BookingRepository) ListByClient(ctx context.Context, clientID string) ([]model.Booking, error) {
	return r.list(ctx, `
		SELECT id, client_id, service_id, booking_date, booking_time, created_at
		FROM bookings
		WHERE client_id = $1
		ORDER BY created_at DESC, id DESC
	`, clientID)
}

// ListAll returns every booking, soonest slot first.
func (r *BookingRepository) ListAll(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx, `
		SELECT id, client_id, service_id, booking_date, booking_time, created_at
		FROM bookings
		ORDER BY booking_date, booking_time
	`)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		var t int16
		if err := rows.Scan(&b.ID, &b.ClientID, &b.ServiceID, &b.Date, &t, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Time = model.TimeOfDay(t)
		bookings = append(bookings, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return bookings, nil
}
