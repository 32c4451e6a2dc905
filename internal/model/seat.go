package model

import "time"

// Seat describes a physical seat in a theater.  The Number field is
// the human label printed on the seat ("A1", "B12").  IsAccessible
// marks seats reserved for reduced-mobility patrons; IsAvailable is a
// structural flag (broken or removed seats), not per-showtime state.
//
// Fields:
//  ID           – primary key identifier.
//  TheaterID    – theater to which this seat belongs.
//  Number       – human label of the seat within the theater.
//  IsAccessible – reduced-mobility seat flag.
//  IsAvailable  – structural availability (independent of bookings).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Seat struct {
	ID           uint64    // seats.id
	TheaterID    uint64    // seats.theater_id
	Number       string    // seats.seat_number
	IsAccessible bool      // seats.is_accessible
	IsAvailable  bool      // seats.is_available
	CreatedAt    time.Time // seats.created_at
	UpdatedAt    time.Time // seats.updated_at
}
