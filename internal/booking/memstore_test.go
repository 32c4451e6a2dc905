package booking

import (
	"context"
	"fmt"
	"sync"

	"github.com/kinohall/cinema-ticketing-engine/internal/model"
)

// memStore is an in-memory implementation of Inventory and Store used
// by the engine tests.  It reproduces the storage contract exactly:
// the per-showtime seat map plays the role of the unique key (the
// second writer for a contested seat fails with ErrSeatUnavailable
// and nothing is persisted), and MarkValidated is a compare-and-set.
type memStore struct {
	mu           sync.Mutex
	showtimes    map[uint64]model.Showtime
	theaterSeats map[uint64][]model.Seat
	reservations map[uint64]model.Reservation
	seatLinks    map[uint64]map[uint64]uint64 // showtimeID -> seatID -> reservationID
	resSeats     map[uint64][]uint64          // reservationID -> seatIDs
	nextID       uint64

	failCreate error // injected storage failure for rollback tests
}

func newMemStore() *memStore {
	return &memStore{
		showtimes:    make(map[uint64]model.Showtime),
		theaterSeats: make(map[uint64][]model.Seat),
		reservations: make(map[uint64]model.Reservation),
		seatLinks:    make(map[uint64]map[uint64]uint64),
		resSeats:     make(map[uint64][]uint64),
	}
}

func (m *memStore) addShowtime(st model.Showtime) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.showtimes[st.ID] = st
	if m.seatLinks[st.ID] == nil {
		m.seatLinks[st.ID] = make(map[uint64]uint64)
	}
}

func (m *memStore) addTheaterSeats(theaterID uint64, seats []model.Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.theaterSeats[theaterID] = seats
}

func (m *memStore) GetShowtime(_ context.Context, showtimeID uint64) (*model.Showtime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.showtimes[showtimeID]
	if !ok {
		return nil, ErrShowtimeNotFound
	}
	return &st, nil
}

func (m *memStore) TheaterSeats(_ context.Context, theaterID uint64) ([]model.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seats := make([]model.Seat, len(m.theaterSeats[theaterID]))
	copy(seats, m.theaterSeats[theaterID])
	return seats, nil
}

func (m *memStore) ReservedSeatIDs(_ context.Context, showtimeID uint64) (map[uint64]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reserved := make(map[uint64]struct{}, len(m.seatLinks[showtimeID]))
	for seatID := range m.seatLinks[showtimeID] {
		reserved[seatID] = struct{}{}
	}
	return reserved, nil
}

func (m *memStore) CreateReservation(_ context.Context, res *model.Reservation, seatIDs []uint64, tokenFn TokenFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	links := m.seatLinks[res.ShowtimeID]
	if links == nil {
		links = make(map[uint64]uint64)
		m.seatLinks[res.ShowtimeID] = links
	}
	for _, seatID := range seatIDs {
		if _, taken := links[seatID]; taken {
			return fmt.Errorf("%w: seat %d", ErrSeatUnavailable, seatID)
		}
	}
	m.nextID++
	res.ID = m.nextID
	res.TicketToken = tokenFn(res.ID)
	for _, seatID := range seatIDs {
		links[seatID] = res.ID
	}
	m.resSeats[res.ID] = append([]uint64(nil), seatIDs...)
	if st, ok := m.showtimes[res.ShowtimeID]; ok {
		st.SeatsRemaining -= uint32(len(seatIDs))
		m.showtimes[res.ShowtimeID] = st
	}
	m.reservations[res.ID] = *res
	return nil
}

func (m *memStore) GetReservation(_ context.Context, reservationID uint64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.reservations[reservationID]
	if !ok {
		return nil, ErrReservationNotFound
	}
	return &res, nil
}

func (m *memStore) MarkValidated(_ context.Context, reservationID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.reservations[reservationID]
	if !ok {
		return false, ErrReservationNotFound
	}
	if res.Validated || res.Status != model.ReservationConfirmed {
		return false, nil
	}
	res.Validated = true
	m.reservations[reservationID] = res
	return true, nil
}

func (m *memStore) CancelReservation(_ context.Context, reservationID uint64) ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.reservations[reservationID]
	if !ok {
		return nil, ErrReservationNotFound
	}
	seatIDs := m.resSeats[reservationID]
	for _, seatID := range seatIDs {
		delete(m.seatLinks[res.ShowtimeID], seatID)
	}
	delete(m.resSeats, reservationID)
	res.Status = model.ReservationCancelled
	m.reservations[reservationID] = res
	if st, ok := m.showtimes[res.ShowtimeID]; ok {
		st.SeatsRemaining += uint32(len(seatIDs))
		m.showtimes[res.ShowtimeID] = st
	}
	return seatIDs, nil
}
