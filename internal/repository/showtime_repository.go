// Package repository: persistence for showtimes.  A showtime's final
// price is computed by the pricing engine at scheduling time and
// stored; corrections go through UpdatePricing which re-stores a
// freshly computed price.  Times are stored as DATETIME in UTC and
// scanned into time.Time (parseTime=true on the DSN).
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel comparisons

	"github.com/kinohall/cinema-ticketing-engine/internal/model"
)

// ErrShowtimeNotFound indicates that a showtime was not located in the DB.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ShowtimeRepo manages persistence for showtimes.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo {
	return &ShowtimeRepo{db: db}
}

// DB exposes the underlying sql.DB for callers that need
// transactions spanning multiple repositories.
func (r *ShowtimeRepo) DB() *sql.DB {
	return r.db
}

const showtimeCols = `id, movie_id, theater_id, cinema_id, starts_at, ends_at, quality,
	adjustment_cents, is_promotion, final_price_cents, seats_remaining, created_at, updated_at`

func scanShowtime(row interface{ Scan(...interface{}) error }, s *model.Showtime) error {
	return row.Scan(
		&s.ID, &s.MovieID, &s.TheaterID, &s.CinemaID, &s.StartsAt, &s.EndsAt, &s.Quality,
		&s.AdjustmentCents, &s.IsPromotion, &s.FinalPriceCents, &s.SeatsRemaining, &s.CreatedAt, &s.UpdatedAt,
	)
}

// Create inserts a new showtime.  The caller must have computed
// FinalPriceCents through the pricing engine and set SeatsRemaining
// to the theater capacity.  On success the generated ID and
// DB-default fields are populated on the struct.
func (r *ShowtimeRepo) Create(ctx context.Context, s *model.Showtime) error {
	const q = `INSERT INTO showtimes
	           (movie_id, theater_id, cinema_id, starts_at, ends_at, quality, adjustment_cents, is_promotion, final_price_cents, seats_remaining)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.MovieID, s.TheaterID, s.CinemaID, s.StartsAt.UTC(), s.EndsAt.UTC(), s.Quality,
		s.AdjustmentCents, s.IsPromotion, s.FinalPriceCents, s.SeatsRemaining,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	sel := `SELECT ` + showtimeCols + ` FROM showtimes WHERE id = ?`
	return scanShowtime(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// GetByID retrieves a showtime by its ID.  It returns
// ErrShowtimeNotFound if there is no matching row.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
	q := `SELECT ` + showtimeCols + ` FROM showtimes WHERE id = ?`
	var s model.Showtime
	if err := scanShowtime(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListUpcomingByTheater returns showtimes of a theater that have not
// yet started, ordered by start time ascending.
func (r *ShowtimeRepo) ListUpcomingByTheater(ctx context.Context, theaterID uint64) ([]model.Showtime, error) {
	q := `SELECT ` + showtimeCols + ` FROM showtimes
	      WHERE theater_id = ? AND starts_at > UTC_TIMESTAMP()
	      ORDER BY starts_at ASC`
	rows, err := r.db.QueryContext(ctx, q, theaterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Showtime
	for rows.Next() {
		var s model.Showtime
		if err := scanShowtime(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// HasReservations reports whether any non-cancelled reservation
// exists for the showtime.  Administrative corrections are refused
// once booking has begun, because the stored price is a snapshot
// customers already paid against.
func (r *ShowtimeRepo) HasReservations(ctx context.Context, id uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM reservations WHERE showtime_id = ? AND status <> 'CANCELLED'`
	var n int
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdatePricing applies an administrative correction to a showtime's
// pricing inputs and its recomputed final price.  Returns
// ErrShowtimeNotFound when no row was updated.
func (r *ShowtimeRepo) UpdatePricing(ctx context.Context, id uint64, quality model.ProjectionQuality, adjustmentCents, finalPriceCents int64, isPromotion bool) error {
	const q = `UPDATE showtimes
	           SET quality = ?, adjustment_cents = ?, is_promotion = ?, final_price_cents = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, quality, adjustmentCents, isPromotion, finalPriceCents, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrShowtimeNotFound
	}
	return nil
}
