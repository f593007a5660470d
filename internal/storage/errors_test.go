package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(pgx.ErrNoRows) {
		t.Error("ErrNoRows should be not-found")
	}
	if !IsNotFound(fmt.Errorf("get service: %w", pgx.ErrNoRows)) {
		t.Error("wrapped ErrNoRows should be not-found")
	}
	if IsNotFound(errors.New("boom")) {
		t.Error("arbitrary error should not be not-found")
	}
}

func TestIsConflict(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	fk := &pgconn.PgError{Code: "23503"}
	other := &pgconn.PgError{Code: "42P01"}

	if !IsConflict(unique) {
		t.Error("unique violation should be a conflict")
	}
	if !IsConflict(fmt.Errorf("create booking: %w", fk)) {
		t.Error("wrapped fk violation should be a conflict")
	}
	if IsConflict(other) {
		t.Error("unrelated pg error should not be a conflict")
	}
	if IsConflict(pgx.ErrNoRows) {
		t.Error("not-found should not be a conflict")
	}
}
