package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinohall/cinema-ticketing-engine/internal/model"
	"github.com/kinohall/cinema-ticketing-engine/internal/ticket"
)

// fixture builds "Salle A" with seats A1..A10 and one standard 2D
// showtime (base price 400 cents, no adjustment, no promotion)
// starting two hours from the fixed test clock.
func fixture(t *testing.T) (*memStore, *Service, *ticket.Codec, time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	st := newMemStore()
	seats := make([]model.Seat, 0, 10)
	for i := 1; i <= 10; i++ {
		seats = append(seats, model.Seat{
			ID:          uint64(i),
			TheaterID:   1,
			Number:      fmt.Sprintf("A%d", i),
			IsAvailable: true,
		})
	}
	st.addTheaterSeats(1, seats)
	st.addShowtime(model.Showtime{
		ID:              1,
		MovieID:         7,
		TheaterID:       1,
		CinemaID:        1,
		StartsAt:        now.Add(2 * time.Hour),
		EndsAt:          now.Add(4 * time.Hour),
		Quality:         model.QualityStandard2D,
		FinalPriceCents: 400,
		SeatsRemaining:  10,
	})
	codec := ticket.NewCodec("door-secret")
	svc := NewService(st, st, codec)
	svc.now = func() time.Time { return now }
	return st, svc, codec, now
}

func TestAvailableSeatsFullTheater(t *testing.T) {
	_, svc, _, _ := fixture(t)
	free, err := svc.AvailableSeats(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, free, 10)
	assert.Equal(t, "A1", free[0].Number)
	assert.Equal(t, "A10", free[9].Number)
}

func TestAvailableSeatsUnknownShowtime(t *testing.T) {
	_, svc, _, _ := fixture(t)
	_, err := svc.AvailableSeats(context.Background(), 99)
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}

func TestAvailableSeatsExcludesStructurallyUnavailable(t *testing.T) {
	st, svc, _, _ := fixture(t)
	seats := st.theaterSeats[1]
	seats[4].IsAvailable = false // A5 broken
	st.addTheaterSeats(1, seats)

	free, err := svc.AvailableSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, free, 9)
	for _, seat := range free {
		assert.NotEqual(t, "A5", seat.Number)
	}
}

// Scenario from the door-to-door booking flow: u1 books A1+A2 for
// 8.00, u2's overlapping request fails whole, availability reflects
// only the winner's seats.
func TestCreateReservationScenario(t *testing.T) {
	_, svc, codec, _ := fixture(t)
	ctx := context.Background()

	res, seats, err := svc.CreateReservation(ctx, 1, 1, []string{"A1", "A2"})
	require.NoError(t, err)
	assert.Equal(t, int64(800), res.TotalPriceCents)
	assert.Equal(t, model.ReservationConfirmed, res.Status)
	assert.Len(t, seats, 2)

	id, err := codec.Decode(res.TicketToken)
	require.NoError(t, err)
	assert.Equal(t, ticket.Identity{ReservationID: res.ID, ShowtimeID: 1, UserID: 1}, id)

	// Overlapping request fails as a whole: A3 is free but A2 is not.
	_, _, err = svc.CreateReservation(ctx, 2, 1, []string{"A2", "A3"})
	assert.ErrorIs(t, err, ErrSeatUnavailable)

	free, err := svc.AvailableSeats(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, free, 8)
	for _, seat := range free {
		assert.NotContains(t, []string{"A1", "A2"}, seat.Number)
	}
}

func TestCreateReservationInvalidSeat(t *testing.T) {
	_, svc, _, _ := fixture(t)
	ctx := context.Background()

	_, _, err := svc.CreateReservation(ctx, 1, 1, []string{"B1"})
	assert.ErrorIs(t, err, ErrInvalidSeat)

	_, _, err = svc.CreateReservation(ctx, 1, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidSeat)

	_, _, err = svc.CreateReservation(ctx, 1, 1, []string{"  ", ""})
	assert.ErrorIs(t, err, ErrInvalidSeat)
}

func TestCreateReservationNormalizesLabels(t *testing.T) {
	_, svc, _, _ := fixture(t)
	res, seats, err := svc.CreateReservation(context.Background(), 1, 1, []string{" a1 ", "A1", "a2"})
	require.NoError(t, err)
	assert.Len(t, seats, 2) // duplicates collapse
	assert.Equal(t, int64(800), res.TotalPriceCents)
}

func TestCreateReservationUnknownShowtime(t *testing.T) {
	_, svc, _, _ := fixture(t)
	_, _, err := svc.CreateReservation(context.Background(), 1, 42, []string{"A1"})
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}

func TestCreateReservationShowtimeStarted(t *testing.T) {
	_, svc, _, now := fixture(t)
	svc.now = func() time.Time { return now.Add(3 * time.Hour) }
	_, _, err := svc.CreateReservation(context.Background(), 1, 1, []string{"A1"})
	assert.ErrorIs(t, err, ErrShowtimeStarted)
}

func TestCreateReservationStorageFailureLeavesNoOccupancy(t *testing.T) {
	st, svc, _, _ := fixture(t)
	ctx := context.Background()
	st.failCreate = errors.New("connection reset")

	_, _, err := svc.CreateReservation(ctx, 1, 1, []string{"A1", "A2"})
	require.Error(t, err)

	st.failCreate = nil
	free, err := svc.AvailableSeats(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, free, 10) // nothing half-persisted
}

// N workers race for overlapping seat sets; every contested seat must
// be won exactly once and availability must stay consistent.
func TestCreateReservationConcurrentOverlap(t *testing.T) {
	st, svc, _, _ := fixture(t)
	ctx := context.Background()

	const workers = 16
	requests := [][]string{
		{"A1", "A2"}, {"A2", "A3"}, {"A3", "A4"}, {"A1", "A4"},
	}
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.CreateReservation(ctx, uint64(i+1), 1, requests[i%len(requests)])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrSeatUnavailable)
		}
	}
	// Each seat is linked to at most one reservation.
	seen := make(map[uint64]uint64)
	for seatID, resID := range st.seatLinks[1] {
		if prev, dup := seen[seatID]; dup {
			t.Fatalf("seat %d linked to reservations %d and %d", seatID, prev, resID)
		}
		seen[seatID] = resID
	}
	// Reserved seats and available seats partition the roster.
	free, err := svc.AvailableSeats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, len(free)+len(st.seatLinks[1]))
}

func TestCancelReservationReleasesSeats(t *testing.T) {
	_, svc, _, _ := fixture(t)
	ctx := context.Background()

	res, _, err := svc.CreateReservation(ctx, 1, 1, []string{"A1", "A2"})
	require.NoError(t, err)

	require.NoError(t, svc.CancelReservation(ctx, 1, res.ID))

	free, err := svc.AvailableSeats(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, free, 10)

	// Released seats are immediately bookable by someone else.
	res2, _, err := svc.CreateReservation(ctx, 2, 1, []string{"A1"})
	require.NoError(t, err)
	assert.NotZero(t, res2.ID)

	// Cancelling twice is a no-op.
	require.NoError(t, svc.CancelReservation(ctx, 1, res.ID))
}

func TestCancelReservationOwnershipAndTiming(t *testing.T) {
	_, svc, _, now := fixture(t)
	ctx := context.Background()

	res, _, err := svc.CreateReservation(ctx, 1, 1, []string{"A1"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.CancelReservation(ctx, 2, res.ID), ErrForbidden)
	assert.ErrorIs(t, svc.CancelReservation(ctx, 1, 999), ErrReservationNotFound)

	svc.now = func() time.Time { return now.Add(3 * time.Hour) }
	assert.ErrorIs(t, svc.CancelReservation(ctx, 1, res.ID), ErrShowtimeStarted)
}
