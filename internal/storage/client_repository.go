package storage

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/agendly/agendly/internal/model"
	"github.com/agendly/agendly/internal/outbox"
	"github.com/agendly/agendly/libs/db"
)

type ClientRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewClientRepository(pool *db.Pool, ob *outbox.Repository) *ClientRepository {
	return &ClientRepository{pool: pool, outbox: ob}
}

// CreateClient registers a client. The email column is unique; a second
// registration with the same address fails with a conflict.
func (r *ClientRepository) CreateClient(ctx context.Context, c model.Client) (model.Client, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Client{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	c.ID = uuid.NewString()
	err = tx.QueryRow(ctx, `
		INSERT INTO clients (id, first_name, last_name, email, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.PasswordHash).Scan(&c.CreatedAt)
	if err != nil {
		return model.Client{}, err
	}

	payload, err := json.Marshal(map[string]any{
		"client_id": c.ID,
		"email":     c.Email,
	})
	if err != nil {
		return model.Client{}, err
	}
	if err := r.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "client",
		AggregateID:   c.ID,
		EventType:     outbox.EventClientCreated,
		Payload:       payload,
	}); err != nil {
		return model.Client{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Client{}, err
	}
	return c, nil
}

func (r *ClientRepository) GetClient(ctx context.Context, id string) (model.Client, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *ClientRepository) GetClientByEmail(ctx context.Context, email string) (model.Client, error) {
	return r.get(ctx, `WHERE email = $1`, email)
}

func (r *ClientRepository) get(ctx context.Context, where string, arg any) (model.Client, error) {
	var c model.Client
	err := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, phone, password_hash, created_at
		FROM clients
	`+where, arg).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		return model.Client{}, err
	}
	return c, nil
}

func (r *ClientRepository) ClientExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)
	`, id).Scan(&exists)
	return exists, err
}

// UpdateClient rewrites the client's profile fields. The password hash is
// only replaced when a non-empty one is given.
func (r *ClientRepository) UpdateClient(ctx context.Context, c model.Client) (model.Client, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE clients
		SET first_name = $2,
			last_name = $3,
			email = $4,
			phone = $5,
			password_hash = CASE WHEN $6 = '' THEN password_hash ELSE $6 END
		WHERE id = $1
		RETURNING password_hash, created_at
	`, c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.PasswordHash).Scan(&c.PasswordHash, &c.CreatedAt)
	if err != nil {
		return model.Client{}, err
	}
	return c, nil
}

func (r *ClientRepository) ListClients(ctx context.Context) ([]model.Client, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, first_name, last_name, email, phone, password_hash, created_at
		FROM clients
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.PasswordHash, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return clients, nil
}
