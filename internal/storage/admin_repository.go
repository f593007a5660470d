package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/agendly/agendly/internal/model"
	"github.com/agendly/agendly/libs/db"
)

type AdminRepository struct {
	pool *db.Pool
}

func NewAdminRepository(pool *db.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) CreateAdmin(ctx context.Context, a model.Admin) (model.Admin, error) {
	a.ID = uuid.NewString()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO admins (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, a.ID, a.Name, a.Email, a.PasswordHash).Scan(&a.CreatedAt)
	if err != nil {
		return model.Admin{}, err
	}
	return a, nil
}

func (r *AdminRepository) GetAdminByEmail(ctx context.Context, email string) (model.Admin, error) {
	var a model.Admin
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM admins
		WHERE email = $1
	`, email).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return model.Admin{}, err
	}
	return a, nil
}

func (r *AdminRepository) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM admins
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []model.Admin
	for rows.Next() {
		var a model.Admin
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return admins, nil
}
