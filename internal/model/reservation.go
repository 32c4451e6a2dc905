package model

import "time"

// Reservation statuses.  A CANCELLED reservation no longer occupies
// its seats; its seat links are removed in the same transaction that
// flips the status.
const (
	ReservationPending   = "PENDING"
	ReservationConfirmed = "CONFIRMED"
	ReservationCancelled = "CANCELLED"
)

// Reservation records a user's booking of one or more seats for a
// showtime.  TotalPriceCents is a snapshot taken at booking time and
// is never recomputed.  TicketToken is the opaque scannable encoding
// of (reservation, showtime, user); Validated flips to true exactly
// once, at the theater door.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who made the reservation.
//  ShowtimeID      – showtime being reserved.
//  Status          – PENDING, CONFIRMED or CANCELLED.
//  TotalPriceCents – total price snapshot for all seats.
//  TicketToken     – opaque token presented at the door.
//  Validated       – whether the ticket has been checked in.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64    // reservations.id
	UserID          uint64    // reservations.user_id
	ShowtimeID      uint64    // reservations.showtime_id
	Status          string    // reservations.status
	TotalPriceCents int64     // reservations.total_price_cents
	TicketToken     string    // reservations.ticket_token
	Validated       bool      // reservations.validated
	CreatedAt       time.Time // reservations.created_at
	UpdatedAt       time.Time // reservations.updated_at
}

// ReservationSeat links a reservation to one seat of its showtime's
// theater.  The unique key on (showtime_id, seat_id) is the
// serialization point that makes double-booking impossible: the
// second writer for a contested seat gets a key conflict.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reference to the reservation.
//  ShowtimeID    – showtime in which the seat is booked.
//  SeatID        – seat that has been reserved.
//  CreatedAt     – creation timestamp.
type ReservationSeat struct {
	ID            uint64    // reservation_seats.id
	ReservationID uint64    // reservation_seats.reservation_id
	ShowtimeID    uint64    // reservation_seats.showtime_id
	SeatID        uint64    // reservation_seats.seat_id
	CreatedAt     time.Time // reservation_seats.created_at
}
