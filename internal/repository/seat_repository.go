package repository // repository defines data access for seats

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel comparisons

	"github.com/kinohall/cinema-ticketing-engine/internal/model"
)

// SeatRepo provides methods to work with seats in the database.
// Flag updates here are structural administration (accessibility,
// broken seats) and deliberately never touch reservation seat links:
// a seat taken out of service stays attached to reservations that
// already hold it.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// CreateBulkTx inserts multiple seats in a single statement within
// the caller's transaction.  Used when provisioning a theater, where
// the theater row and its roster must appear together.
func (r *SeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (theater_id, seat_number, is_accessible, is_available) VALUES `
	args := make([]interface{}, 0, len(seats)*4)
	for i, seat := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, seat.TheaterID, seat.Number, seat.IsAccessible, seat.IsAvailable)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByTheater retrieves all seats of a theater ordered by label.
func (r *SeatRepo) GetByTheater(ctx context.Context, theaterID uint64) ([]model.Seat, error) {
	const q = `SELECT id, theater_id, seat_number, is_accessible, is_available, created_at, updated_at
	           FROM seats
	           WHERE theater_id = ?
	           ORDER BY seat_number`
	rows, err := r.db.QueryContext(ctx, q, theaterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(
			&s.ID, &s.TheaterID, &s.Number, &s.IsAccessible, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a seat by its id.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT id, theater_id, seat_number, is_accessible, is_available, created_at, updated_at
	           FROM seats WHERE id = ?`
	var s model.Seat
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.TheaterID, &s.Number, &s.IsAccessible, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// UpdateFlags sets the accessibility and structural availability
// flags of a seat.  Returns ErrSeatNotFound when no row was updated.
func (r *SeatRepo) UpdateFlags(ctx context.Context, id uint64, isAccessible, isAvailable bool) error {
	const q = `UPDATE seats SET is_accessible = ?, is_available = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, isAccessible, isAvailable, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSeatNotFound
	}
	return nil
}
