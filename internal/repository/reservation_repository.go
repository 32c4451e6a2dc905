package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// ReservationRepo provides the read models used to show reservations
// to customers.  Writes go through BookingStore; this repository only
// assembles display details (showtime, theater, seat labels).
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservationDetail is a reservation enriched with showtime, theater
// and seat information for display to the booking customer.
type ReservationDetail struct {
	ID              uint64   `json:"id"`
	ShowtimeID      uint64   `json:"showtime_id"`
	MovieID         uint64   `json:"movie_id"`
	Status          string   `json:"status"`
	Validated       bool     `json:"validated"`
	TotalPriceCents int64    `json:"total_price_cents"`
	TicketToken     string   `json:"ticket_token"`
	StartsAt        string   `json:"starts_at"`
	EndsAt          string   `json:"ends_at"`
	TheaterID       uint64   `json:"theater_id"`
	TheaterName     string   `json:"theater_name"`
	SeatNumbers     []string `json:"seats"`
}

const reservationDetailQuery = `SELECT r.id, r.showtime_id, st.movie_id, r.status, r.validated,
	       r.total_price_cents, r.ticket_token,
	       st.starts_at, st.ends_at, t.id, t.name
	FROM reservations r
	JOIN showtimes st ON st.id = r.showtime_id
	JOIN theaters t ON t.id = st.theater_id`

func scanReservationDetail(row interface{ Scan(...interface{}) error }, d *ReservationDetail) error {
	var startsAt, endsAt time.Time
	if err := row.Scan(
		&d.ID, &d.ShowtimeID, &d.MovieID, &d.Status, &d.Validated,
		&d.TotalPriceCents, &d.TicketToken,
		&startsAt, &endsAt, &d.TheaterID, &d.TheaterName,
	); err != nil {
		return err
	}
	d.StartsAt = startsAt.UTC().Format(time.RFC3339)
	d.EndsAt = endsAt.UTC().Format(time.RFC3339)
	d.SeatNumbers = []string{}
	return nil
}

// GetByIDForUser returns a single reservation for the given user,
// including the seat labels booked under it.  Ownership is enforced
// in the query; a reservation belonging to another user behaves like
// a missing one (sql.ErrNoRows).
func (r *ReservationRepo) GetByIDForUser(ctx context.Context, reservationID, userID uint64) (*ReservationDetail, error) {
	q := reservationDetailQuery + ` WHERE r.id = ? AND r.user_id = ?`
	var det ReservationDetail
	if err := scanReservationDetail(r.db.QueryRowContext(ctx, q, reservationID, userID), &det); err != nil {
		return nil, err
	}
	const seatQ = `SELECT se.seat_number
	               FROM reservation_seats rs
	               JOIN seats se ON se.id = rs.seat_id
	               WHERE rs.reservation_id = ?
	               ORDER BY se.seat_number`
	rows, err := r.db.QueryContext(ctx, seatQ, det.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var num string
		if err := rows.Scan(&num); err != nil {
			return nil, err
		}
		det.SeatNumbers = append(det.SeatNumbers, num)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &det, nil
}

// ListByUser returns all reservations of a user, newest first, with
// seat labels populated in a single follow-up query.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	q := reservationDetailQuery + ` WHERE r.user_id = ? ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d ReservationDetail
		if err := scanReservationDetail(rows, &d); err != nil {
			return nil, err
		}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	// Fetch seat labels for all reservations in one query.
	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	seatQuery := `SELECT rs.reservation_id, se.seat_number
	              FROM reservation_seats rs
	              JOIN seats se ON se.id = rs.seat_id
	              WHERE rs.reservation_id IN (` + strings.Join(placeholders, ",") + `)
	              ORDER BY rs.reservation_id, se.seat_number`
	srows, err := r.db.QueryContext(ctx, seatQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var resID uint64
		var num string
		if err := srows.Scan(&resID, &num); err != nil {
			return nil, err
		}
		if idx, ok := index[resID]; ok {
			details[idx].SeatNumbers = append(details[idx].SeatNumbers, num)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
