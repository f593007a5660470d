package storage

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/agendly/agendly/internal/model"
	"github.com/agendly/agendly/internal/outbox"
	"github.com/agendly/agendly/libs/db"
)

type ServiceRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewServiceRepository(pool *db.Pool, ob *outbox.Repository) *ServiceRepository {
	return &ServiceRepository{pool: pool, outbox: ob}
}

// CreateService inserts the service together with its work days and its
// offered times in one transaction, so a service is never visible with a
// half-written schedule.
func (r *ServiceRepository) CreateService(ctx context.Context, svc model.Service, workDays []string, offered []model.TimeOfDay) (model.Service, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Service{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	svc.ID = uuid.NewString()
	err = tx.QueryRow(ctx, `
		INSERT INTO services (id, name, duration_minutes, price, reservation_period)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, svc.ID, svc.Name, svc.DurationMinutes, svc.Price, svc.ReservationPeriod).Scan(&svc.CreatedAt)
	if err != nil {
		return model.Service{}, err
	}

	if err := insertSchedule(ctx, tx, svc.ID, workDays, offered); err != nil {
		return model.Service{}, err
	}
	if err := r.stageChanged(ctx, tx, svc, "created"); err != nil {
		return model.Service{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

// UpdateService rewrites the service row and replaces its work days and
// offered times, all in one transaction.
func (r *ServiceRepository) UpdateService(ctx context.Context, svc model.Service, workDays []string, offered []model.TimeOfDay) (model.Service, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Service{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		UPDATE services
		SET name = $2,
			duration_minutes = $3,
			price = $4,
			reservation_period = $5
		WHERE id = $1
		RETURNING created_at
	`, svc.ID, svc.Name, svc.DurationMinutes, svc.Price, svc.ReservationPeriod).Scan(&svc.CreatedAt)
	if err != nil {
		return model.Service{}, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM service_work_days WHERE service_id = $1`, svc.ID); err != nil {
		return model.Service{}, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM service_work_schedule WHERE service_id = $1`, svc.ID); err != nil {
		return model.Service{}, err
	}
	if err := insertSchedule(ctx, tx, svc.ID, workDays, offered); err != nil {
		return model.Service{}, err
	}
	if err := r.stageChanged(ctx, tx, svc, "updated"); err != nil {
		return model.Service{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

func (r *ServiceRepository) stageChanged(ctx context.Context, tx pgx.Tx, svc model.Service, change string) error {
	payload, err := json.Marshal(map[string]any{
		"service_id":       svc.ID,
		"name":             svc.Name,
		"duration_minutes": svc.DurationMinutes,
		"change":           change,
	})
	if err != nil {
		return err
	}
	return r.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "service",
		AggregateID:   svc.ID,
		EventType:     outbox.EventServiceChanged,
		Payload:       payload,
	})
}

func insertSchedule(ctx context.Context, tx pgx.Tx, serviceID string, workDays []string, offered []model.TimeOfDay) error {
	for _, day := range workDays {
		if _, err := tx.Exec(ctx, `
			INSERT INTO service_work_days (service_id, weekday)
			VALUES ($1, $2)
		`, serviceID, day); err != nil {
			return err
		}
	}
	for _, t := range offered {
		if _, err := tx.Exec(ctx, `
			INSERT INTO service_work_schedule (service_id, tick)
			VALUES ($1, $2)
		`, serviceID, int16(t)); err != nil {
			return err
		}
	}
	return nil
}

func (r *ServiceRepository) GetService(ctx context.Context, id string) (model.Service, error) {
	var svc model.Service
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, duration_minutes, price, reservation_period, created_at
		FROM services
		WHERE id = $1
	`, id).Scan(&svc.ID, &svc.Name, &svc.DurationMinutes, &svc.Price, &svc.ReservationPeriod, &svc.CreatedAt)
	if err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

func (r *ServiceRepository) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, duration_minutes, price, reservation_period, created_at
		FROM services
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		var svc model.Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.DurationMinutes, &svc.Price, &svc.ReservationPeriod, &svc.CreatedAt); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return services, nil
}

// ListWorkDays returns the service's working weekdays in calendar order,
// Sunday first.
func (r *ServiceRepository) ListWorkDays(ctx context.Context, serviceID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday
		FROM service_work_days
		WHERE service_id = $1
		ORDER BY array_position(
			ARRAY['Sunday','Monday','Tuesday','Wednesday','Thursday','Friday','Saturday'],
			weekday)
	`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return days, nil
}

// ListOfferedTimes returns every offered time for the service, ascending.
func (r *ServiceRepository) ListOfferedTimes(ctx context.Context, serviceID string) ([]model.TimeOfDay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tick
		FROM service_work_schedule
		WHERE service_id = $1
		ORDER BY tick
	`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offered []model.TimeOfDay
	for rows.Next() {
		var t int16
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		offered = append(offered, model.TimeOfDay(t))
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return offered, nil
}
