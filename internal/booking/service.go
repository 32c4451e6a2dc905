package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kinohall/cinema-ticketing-engine/internal/model"
	"github.com/kinohall/cinema-ticketing-engine/internal/ticket"
)

// Service orchestrates seat inventory and the reservation
// transaction.  It is the only component that mutates reservation
// state (apart from the Validator's check-in flip) and is safe for
// concurrent use: the seat serialization point lives in the Store.
type Service struct {
	inv   Inventory
	store Store
	codec *ticket.Codec
	now   func() time.Time
}

// NewService constructs a Service.  All dependencies must be non-nil.
func NewService(inv Inventory, store Store, codec *ticket.Codec) *Service {
	if inv == nil || store == nil || codec == nil {
		panic("nil dependency passed to NewService")
	}
	return &Service{inv: inv, store: store, codec: codec, now: func() time.Time { return time.Now().UTC() }}
}

// AvailableSeats computes the currently free seats of a showtime: the
// theater roster minus seats attached to non-cancelled reservations,
// restricted to structurally available seats.  Seats are returned
// ordered by their label for deterministic output.
func (s *Service) AvailableSeats(ctx context.Context, showtimeID uint64) ([]model.Seat, error) {
	st, err := s.inv.GetShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	roster, err := s.inv.TheaterSeats(ctx, st.TheaterID)
	if err != nil {
		return nil, fmt.Errorf("load theater seats: %w", err)
	}
	reserved, err := s.inv.ReservedSeatIDs(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("load reserved seats: %w", err)
	}
	free := make([]model.Seat, 0, len(roster))
	for _, seat := range roster {
		if !seat.IsAvailable {
			continue
		}
		if _, taken := reserved[seat.ID]; taken {
			continue
		}
		free = append(free, seat)
	}
	sort.Slice(free, func(i, j int) bool { return seatLabelLess(free[i].Number, free[j].Number) })
	return free, nil
}

// CreateReservation books the requested seats of a showtime for a
// user.  Pre-conditions (seat numbers belong to the theater, all
// requested seats free, showtime not started) are checked before any
// mutation; the persist itself is all-or-nothing, and a concurrent
// winner for any contested seat surfaces as ErrSeatUnavailable.
// The per-seat price was locked in when the showtime was scheduled;
// this call only multiplies it by the seat count.
func (s *Service) CreateReservation(ctx context.Context, userID, showtimeID uint64, seatNumbers []string) (*model.Reservation, []model.Seat, error) {
	st, err := s.inv.GetShowtime(ctx, showtimeID)
	if err != nil {
		return nil, nil, err
	}
	if !st.StartsAt.After(s.now()) {
		return nil, nil, ErrShowtimeStarted
	}

	requested := dedupeLabels(seatNumbers)
	if len(requested) == 0 {
		return nil, nil, fmt.Errorf("%w: no seats requested", ErrInvalidSeat)
	}

	roster, err := s.inv.TheaterSeats(ctx, st.TheaterID)
	if err != nil {
		return nil, nil, fmt.Errorf("load theater seats: %w", err)
	}
	byNumber := make(map[string]model.Seat, len(roster))
	for _, seat := range roster {
		byNumber[seat.Number] = seat
	}
	seats := make([]model.Seat, 0, len(requested))
	for _, num := range requested {
		seat, ok := byNumber[num]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s does not belong to theater %d", ErrInvalidSeat, num, st.TheaterID)
		}
		seats = append(seats, seat)
	}

	// Recompute availability right before the write.  The unique key
	// in the store still catches the race between this check and the
	// insert; the check exists to fail fast with the seat labels.
	reserved, err := s.inv.ReservedSeatIDs(ctx, showtimeID)
	if err != nil {
		return nil, nil, fmt.Errorf("load reserved seats: %w", err)
	}
	seatIDs := make([]uint64, 0, len(seats))
	var conflicts []string
	for _, seat := range seats {
		if _, taken := reserved[seat.ID]; taken || !seat.IsAvailable {
			conflicts = append(conflicts, seat.Number)
			continue
		}
		seatIDs = append(seatIDs, seat.ID)
	}
	if len(conflicts) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrSeatUnavailable, strings.Join(conflicts, ", "))
	}

	res := &model.Reservation{
		UserID:          userID,
		ShowtimeID:      showtimeID,
		Status:          model.ReservationConfirmed,
		TotalPriceCents: st.FinalPriceCents * int64(len(seatIDs)),
	}
	tokenFn := func(reservationID uint64) string {
		return s.codec.Encode(reservationID, showtimeID, userID)
	}
	if err := s.store.CreateReservation(ctx, res, seatIDs, tokenFn); err != nil {
		return nil, nil, err
	}
	return res, seats, nil
}

// CancelReservation cancels a reservation on behalf of its owner,
// releasing the seats back to inventory atomically with the status
// flip.  Cancelling is refused once the showtime has started.
func (s *Service) CancelReservation(ctx context.Context, userID, reservationID uint64) error {
	res, err := s.store.GetReservation(ctx, reservationID)
	if err != nil {
		return err
	}
	if res.UserID != userID {
		return ErrForbidden
	}
	if res.Status == model.ReservationCancelled {
		return nil // already cancelled, nothing to release
	}
	st, err := s.inv.GetShowtime(ctx, res.ShowtimeID)
	if err != nil {
		return err
	}
	if !st.StartsAt.After(s.now()) {
		return ErrShowtimeStarted
	}
	_, err = s.store.CancelReservation(ctx, reservationID)
	return err
}

// dedupeLabels trims, uppercases and deduplicates seat labels while
// preserving request order.
func dedupeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.ToUpper(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// seatLabelLess orders "A2" before "A10" by comparing the row prefix
// lexically and the numeric suffix numerically.
func seatLabelLess(a, b string) bool {
	ra, na := splitLabel(a)
	rb, nb := splitLabel(b)
	if ra != rb {
		return ra < rb
	}
	return na < nb
}

func splitLabel(label string) (string, int) {
	i := 0
	for i < len(label) && (label[i] < '0' || label[i] > '9') {
		i++
	}
	n := 0
	for _, ch := range label[i:] {
		if ch < '0' || ch > '9' {
			return label, 0
		}
		n = n*10 + int(ch-'0')
	}
	return label[:i], n
}
