package booking

import (
	"context"

	"github.com/kinohall/cinema-ticketing-engine/internal/model"
)

// Inventory is the read side of seat occupancy.  Implementations must
// never serve cached occupancy: staleness here directly causes
// double-booking attempts (they would still be rejected by the write
// serialization point, but at the cost of failed requests).
type Inventory interface {
	// GetShowtime loads one showtime.  Returns ErrShowtimeNotFound
	// when the id is unknown.
	GetShowtime(ctx context.Context, showtimeID uint64) (*model.Showtime, error)

	// TheaterSeats returns the full seat roster of a theater,
	// including structurally unavailable seats.
	TheaterSeats(ctx context.Context, theaterID uint64) ([]model.Seat, error)

	// ReservedSeatIDs returns the ids of seats attached to
	// non-cancelled reservations for the showtime.
	ReservedSeatIDs(ctx context.Context, showtimeID uint64) (map[uint64]struct{}, error)
}

// TokenFunc derives the ticket token from the reservation id assigned
// by the store.  It is invoked inside the atomic write so the token
// is persisted in the same unit as the reservation and its seat links.
type TokenFunc func(reservationID uint64) string

// Store is the write side of the engine.  All mutations are atomic:
// either the reservation and every seat link exist, or none do.
type Store interface {
	// CreateReservation persists res and its seat links as one unit
	// and stores the token produced by tokenFn on the reservation.
	// On success res.ID, res.TicketToken and timestamps are
	// populated.  A seat conflict with a concurrent reservation is
	// reported as ErrSeatUnavailable and nothing is persisted.
	CreateReservation(ctx context.Context, res *model.Reservation, seatIDs []uint64, tokenFn TokenFunc) error

	// GetReservation loads one reservation.  Returns
	// ErrReservationNotFound when the id is unknown.
	GetReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error)

	// MarkValidated flips the reservation's validated flag with
	// compare-and-set semantics: it returns true when this call
	// performed the Unvalidated -> Validated transition and false
	// when the flag was already set (or the reservation is not in a
	// validatable status).  Exactly one of N concurrent calls for
	// the same reservation observes true.
	MarkValidated(ctx context.Context, reservationID uint64) (bool, error)

	// CancelReservation flips the reservation's status to CANCELLED
	// and releases its seats in the same atomic unit.  It returns
	// the released seat ids.
	CancelReservation(ctx context.Context, reservationID uint64) ([]uint64, error)
}
