package service

import (
	"database/sql"
	"errors"
	"fmt"
)

// Failure taxonomy returned by every core operation. The HTTP layer maps
// these to status codes; the core never retries or recovers from them.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
)

// notFoundIfNoRows converts the storage layer's empty-result error into the
// typed NotFound failure, leaving real storage errors untouched.
func notFoundIfNoRows(err error, entity string, id int) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	}
	return err
}
