// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver-specific error text themselves.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when registering a user with an email
// address that is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrSeatTaken is returned when inserting a reservation loses the
// race for a seat: the storage layer rejected the row because the
// unique key over (screening_id, row_number, seat_number) already
// holds an entry for that seat. It is an expected outcome of
// concurrent booking, not a fault.
var ErrSeatTaken = errors.New("seat already taken")

// ErrNotFound is returned when a catalog entity (movie, cinema,
// repertoire entry, screening, room) does not exist. Handlers
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete a movie that still has scheduled screenings. Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// isDuplicateEntry reports whether err is a MySQL duplicate-key rejection
// (error 1062). The driver exposes the code only inside the message, so the
// check is textual.
func isDuplicateEntry(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "duplicate entry")
}

// isForeignKeyViolation reports whether err is a MySQL foreign key
// rejection (errors 1451/1452).
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1451") || strings.Contains(msg, "1452")
}
