// Package booking implements the showtime booking and ticket
// validation engine: seat inventory, the reservation transaction and
// the door-scan state machine.  Persistence sits behind the narrow
// Inventory and Store interfaces so the whole engine is testable
// against an in-memory implementation.
package booking

import "errors"

// ErrShowtimeNotFound is returned when the referenced showtime does
// not exist.  Callers must supply a valid id; this is not retried.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ErrReservationNotFound is returned when the referenced reservation
// does not exist.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrForbidden is returned when a reservation exists but belongs to a
// different user than the caller.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidSeat is returned when a requested seat number does not
// belong to the showtime's theater.
var ErrInvalidSeat = errors.New("invalid seat")

// ErrSeatUnavailable is returned when a requested seat is already
// held by a non-cancelled reservation for the showtime.  The request
// fails as a whole; the caller may retry with different seats.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrShowtimeStarted is returned when the operation requires a
// showtime that has not yet begun: booking seats for, or cancelling a
// reservation of, an already-started showtime.
var ErrShowtimeStarted = errors.New("showtime already started")
