// Package repository implements MySQL persistence for theaters,
// seats, showtimes and reservations. Sentinel values defined here
// allow higher layers such as handlers to distinguish between
// different failure scenarios: a missing row versus conflicting
// dependent state versus a plain storage fault.
package repository

import "errors"

// ErrTheaterNotFound is returned when a theater lookup yields no rows.
var ErrTheaterNotFound = errors.New("theater not found")

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// ErrConflict is returned when an update or delete cannot be
// performed because of conflicting state, such as correcting the
// price of a showtime that already has reservations. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
