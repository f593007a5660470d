package storage

import (
	"context"

	"github.com/agendly/agendly/internal/model"
	"github.com/agendly/agendly/libs/db"
)

// ScheduleRepository owns the schedule_ticks grid. The grid is seeded once
// at startup and read into memory; every offered or booked time references
// one of its rows.
type ScheduleRepository struct {
	pool *db.Pool
}

func NewScheduleRepository(pool *db.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// SeedGrid inserts the given ticks, skipping any already present. Running
// it again with the same grid is a no-op.
func (r *ScheduleRepository) SeedGrid(ctx context.Context, ticks []model.TimeOfDay) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, t := range ticks {
		if _, err := tx.Exec(ctx, `
			INSERT INTO schedule_ticks (tick)
			VALUES ($1)
			ON CONFLICT (tick) DO NOTHING
		`, int16(t)); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListTicks returns every grid tick in ascending order.
func (r *ScheduleRepository) ListTicks(ctx context.Context) ([]model.TimeOfDay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tick FROM schedule_ticks ORDER BY tick
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ticks []model.TimeOfDay
	for rows.Next() {
		var t int16
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		ticks = append(ticks, model.TimeOfDay(t))
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return ticks, nil
}
