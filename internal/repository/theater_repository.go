package repository // repository defines data access for theaters

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel comparisons

	"github.com/kinohall/cinema-ticketing-engine/internal/model"
)

// TheaterRepo provides persistence for theaters.  Seats are owned by
// their theater: they are generated when the theater is provisioned
// and removed by FK cascade when it is deleted.
type TheaterRepo struct {
	db *sql.DB
}

// NewTheaterRepo constructs a TheaterRepo with the given DB handle.
func NewTheaterRepo(db *sql.DB) *TheaterRepo {
	return &TheaterRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories, such as provisioning a
// theater together with its seat roster.
func (r *TheaterRepo) DB() *sql.DB {
	return r.db
}

// CreateTx inserts a new theater within the caller's transaction and
// populates the generated ID plus DB-default fields on the struct.
func (r *TheaterRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Theater) error {
	const q = `INSERT INTO theaters (cinema_id, name, capacity, quality, is_operational) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, t.CinemaID, t.Name, t.Capacity, t.Quality, t.IsOperational)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT id, cinema_id, name, capacity, quality, is_operational, created_at, updated_at
	             FROM theaters WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, t.ID).Scan(
		&t.ID, &t.CinemaID, &t.Name, &t.Capacity, &t.Quality, &t.IsOperational, &t.CreatedAt, &t.UpdatedAt,
	)
}

// GetByID retrieves a theater by its ID.  It returns
// ErrTheaterNotFound if there is no matching row.
func (r *TheaterRepo) GetByID(ctx context.Context, id uint64) (*model.Theater, error) {
	const q = `SELECT id, cinema_id, name, capacity, quality, is_operational, created_at, updated_at
	           FROM theaters WHERE id = ?`
	var t model.Theater
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.CinemaID, &t.Name, &t.Capacity, &t.Quality, &t.IsOperational, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTheaterNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByCinema returns all theaters of a cinema ordered by name.
func (r *TheaterRepo) ListByCinema(ctx context.Context, cinemaID uint64) ([]model.Theater, error) {
	const q = `SELECT id, cinema_id, name, capacity, quality, is_operational, created_at, updated_at
	           FROM theaters WHERE cinema_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, cinemaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Theater
	for rows.Next() {
		var t model.Theater
		if err := rows.Scan(
			&t.ID, &t.CinemaID, &t.Name, &t.Capacity, &t.Quality, &t.IsOperational, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetOperational flips the operational flag of a theater.  Returns
// ErrTheaterNotFound when no row was updated.
func (r *TheaterRepo) SetOperational(ctx context.Context, id uint64, operational bool) error {
	const q = `UPDATE theaters SET is_operational = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, operational, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTheaterNotFound
	}
	return nil
}

// Delete removes a theater.  Seats cascade via FK; the delete is
// refused with ErrConflict while showtimes still reference the
// theater, so reservations are never orphaned.
func (r *TheaterRepo) Delete(ctx context.Context, id uint64) error {
	const check = `SELECT COUNT(*) FROM showtimes WHERE theater_id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, check, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	const q = `DELETE FROM theaters WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrTheaterNotFound
	}
	return nil
}
