// Package repository implements all database queries for the events API.
// It uses pgx directly (no ORM).
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyParticipant is returned when a user is added to an event twice.
	ErrAlreadyParticipant = errors.New("user is already a participant of this event")

	// ErrUserNotFound is returned when a participant refers to an unknown user.
	ErrUserNotFound = errors.New("user not found")
)

// Postgres error codes inspected by the repositories.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
