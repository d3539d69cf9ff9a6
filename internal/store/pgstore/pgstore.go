// Package pgstore persists users and thoughts in PostgreSQL. The schema
// lives in internal/db/migrations.
package pgstore

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Idahel/js-project-api/internal/store"
)

const uniqueViolation = pq.ErrorCode("23505")

func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return store.ErrConflict
	}
	return err
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return store.ErrInvalidID
	}
	return nil
}
