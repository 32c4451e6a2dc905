package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/kinohall/cinema-ticketing-engine/internal/booking"
	"github.com/kinohall/cinema-ticketing-engine/internal/model"
)

// mysqlDupEntry is the MySQL error number for a unique key violation.
const mysqlDupEntry = 1062

// BookingStore is the MySQL implementation of the booking engine's
// Inventory and Store interfaces.  The unique key on
// reservation_seats (showtime_id, seat_id) is the serialization point
// for seat occupancy: the second writer of a contested seat gets a
// duplicate-entry error, which is surfaced as ErrSeatUnavailable.
// Cancellation deletes the seat-link rows in the same transaction
// that flips the status, so occupancy always derives from the link
// table alone.
type BookingStore struct {
	db *sql.DB
}

// NewBookingStore constructs a BookingStore bound to the given database.
func NewBookingStore(db *sql.DB) *BookingStore {
	return &BookingStore{db: db}
}

// GetShowtime loads one showtime.  Returns booking.ErrShowtimeNotFound
// when the id is unknown.
func (s *BookingStore) GetShowtime(ctx context.Context, showtimeID uint64) (*model.Showtime, error) {
	q := `SELECT ` + showtimeCols + ` FROM showtimes WHERE id = ?`
	var st model.Showtime
	if err := scanShowtime(s.db.QueryRowContext(ctx, q, showtimeID), &st); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrShowtimeNotFound
		}
		return nil, err
	}
	return &st, nil
}

// TheaterSeats returns the full seat roster of a theater.
func (s *BookingStore) TheaterSeats(ctx context.Context, theaterID uint64) ([]model.Seat, error) {
	const q = `SELECT id, theater_id, seat_number, is_accessible, is_available, created_at, updated_at
	           FROM seats WHERE theater_id = ?`
	rows, err := s.db.QueryContext(ctx, q, theaterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		var seat model.Seat
		if err := rows.Scan(
			&seat.ID, &seat.TheaterID, &seat.Number, &seat.IsAccessible, &seat.IsAvailable, &seat.CreatedAt, &seat.UpdatedAt,
		); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// ReservedSeatIDs returns seats occupied by non-cancelled
// reservations for a showtime.  Occupancy is read straight from the
// link table, never from a cache.
func (s *BookingStore) ReservedSeatIDs(ctx context.Context, showtimeID uint64) (map[uint64]struct{}, error) {
	const q = `SELECT seat_id FROM reservation_seats WHERE showtime_id = ?`
	rows, err := s.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reserved := make(map[uint64]struct{})
	for rows.Next() {
		var seatID uint64
		if err := rows.Scan(&seatID); err != nil {
			return nil, err
		}
		reserved[seatID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reserved, nil
}

// CreateReservation persists the reservation, its seat links and its
// ticket token as one transaction.  A duplicate-entry error on the
// seat links means a concurrent reservation won a contested seat; the
// transaction is rolled back and booking.ErrSeatUnavailable returned,
// leaving no trace of the attempt.
func (s *BookingStore) CreateReservation(ctx context.Context, res *model.Reservation, seatIDs []uint64, tokenFn booking.TokenFunc) error {
	if len(seatIDs) == 0 {
		return fmt.Errorf("%w: empty seat set", booking.ErrInvalidSeat)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const ins = `INSERT INTO reservations (user_id, showtime_id, status, total_price_cents, ticket_token, validated)
	             VALUES (?, ?, ?, ?, '', 0)`
	result, err := tx.ExecContext(ctx, ins, res.UserID, res.ShowtimeID, res.Status, res.TotalPriceCents)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)

	query := `INSERT INTO reservation_seats (reservation_id, showtime_id, seat_id) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*3)
	for i, seatID := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, res.ID, res.ShowtimeID, seatID)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDupEntry {
			return fmt.Errorf("%w: seat taken by concurrent reservation", booking.ErrSeatUnavailable)
		}
		return fmt.Errorf("insert reservation seats: %w", err)
	}

	res.TicketToken = tokenFn(res.ID)
	const setToken = `UPDATE reservations SET ticket_token = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, setToken, res.TicketToken, res.ID); err != nil {
		return fmt.Errorf("store ticket token: %w", err)
	}

	const decRemaining = `UPDATE showtimes SET seats_remaining = seats_remaining - ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, decRemaining, len(seatIDs), res.ShowtimeID); err != nil {
		return fmt.Errorf("update seats remaining: %w", err)
	}

	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT id, user_id, showtime_id, status, total_price_cents, ticket_token, validated, created_at, updated_at
	             FROM reservations WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, res.ID).Scan(
		&res.ID, &res.UserID, &res.ShowtimeID, &res.Status, &res.TotalPriceCents,
		&res.TicketToken, &res.Validated, &res.CreatedAt, &res.UpdatedAt,
	); err != nil {
		return fmt.Errorf("reload reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reservation: %w", err)
	}
	committed = true
	return nil
}

// GetReservation loads one reservation.  Returns
// booking.ErrReservationNotFound when the id is unknown.
func (s *BookingStore) GetReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	const q = `SELECT id, user_id, showtime_id, status, total_price_cents, ticket_token, validated, created_at, updated_at
	           FROM reservations WHERE id = ?`
	var res model.Reservation
	err := s.db.QueryRowContext(ctx, q, reservationID).Scan(
		&res.ID, &res.UserID, &res.ShowtimeID, &res.Status, &res.TotalPriceCents,
		&res.TicketToken, &res.Validated, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// MarkValidated performs the Unvalidated -> Validated transition as a
// compare-and-set: the UPDATE only matches when the flag is still
// unset and the reservation is CONFIRMED.  Zero rows affected means
// another scan won the race (or the flag was already set).
func (s *BookingStore) MarkValidated(ctx context.Context, reservationID uint64) (bool, error) {
	const q = `UPDATE reservations
	           SET validated = 1, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND validated = 0 AND status = 'CONFIRMED'`
	res, err := s.db.ExecContext(ctx, q, reservationID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CancelReservation flips the status to CANCELLED and deletes the
// seat links in one transaction, releasing the seats at the same
// instant the status change becomes visible.
func (s *BookingStore) CancelReservation(ctx context.Context, reservationID uint64) ([]uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var showtimeID uint64
	const sel = `SELECT showtime_id FROM reservations WHERE id = ? FOR UPDATE`
	if err := tx.QueryRowContext(ctx, sel, reservationID).Scan(&showtimeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrReservationNotFound
		}
		return nil, err
	}

	const seatQ = `SELECT seat_id FROM reservation_seats WHERE reservation_id = ?`
	rows, err := tx.QueryContext(ctx, seatQ, reservationID)
	if err != nil {
		return nil, err
	}
	var seatIDs []uint64
	for rows.Next() {
		var seatID uint64
		if err := rows.Scan(&seatID); err != nil {
			rows.Close()
			return nil, err
		}
		seatIDs = append(seatIDs, seatID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	const del = `DELETE FROM reservation_seats WHERE reservation_id = ?`
	if _, err := tx.ExecContext(ctx, del, reservationID); err != nil {
		return nil, fmt.Errorf("release seats: %w", err)
	}
	const upd = `UPDATE reservations SET status = 'CANCELLED', updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, reservationID); err != nil {
		return nil, fmt.Errorf("cancel reservation: %w", err)
	}
	if len(seatIDs) > 0 {
		const incRemaining = `UPDATE showtimes SET seats_remaining = seats_remaining + ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, incRemaining, len(seatIDs), showtimeID); err != nil {
			return nil, fmt.Errorf("update seats remaining: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cancellation: %w", err)
	}
	committed = true
	return seatIDs, nil
}
