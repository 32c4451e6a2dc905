package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinohall/cinema-ticketing-engine/internal/booking"
	"github.com/kinohall/cinema-ticketing-engine/internal/model"
)

func tokenStub(reservationID uint64) string {
	return "token-for-7"
}

func TestCreateReservationAtomicWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewBookingStore(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(uint64(1), uint64(3), model.ReservationConfirmed, int64(800)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO reservation_seats").
		WithArgs(uint64(7), uint64(3), uint64(11), uint64(7), uint64(3), uint64(12)).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectExec("UPDATE reservations SET ticket_token").
		WithArgs("token-for-7", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE showtimes SET seats_remaining").
		WithArgs(2, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, user_id, showtime_id").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "showtime_id", "status", "total_price_cents",
			"ticket_token", "validated", "created_at", "updated_at",
		}).AddRow(7, 1, 3, model.ReservationConfirmed, 800, "token-for-7", false, now, now))
	mock.ExpectCommit()

	res := &model.Reservation{UserID: 1, ShowtimeID: 3, Status: model.ReservationConfirmed, TotalPriceCents: 800}
	require.NoError(t, store.CreateReservation(context.Background(), res, []uint64{11, 12}, tokenStub))
	assert.Equal(t, uint64(7), res.ID)
	assert.Equal(t, "token-for-7", res.TicketToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A duplicate entry on the seat links means a concurrent reservation
// won the seat; the whole transaction must roll back.
func TestCreateReservationSeatConflictRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewBookingStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reservations").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec("INSERT INTO reservation_seats").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '3-11'"})
	mock.ExpectRollback()

	res := &model.Reservation{UserID: 2, ShowtimeID: 3, Status: model.ReservationConfirmed, TotalPriceCents: 400}
	err = store.CreateReservation(context.Background(), res, []uint64{11}, tokenStub)
	assert.ErrorIs(t, err, booking.ErrSeatUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationStorageFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewBookingStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reservations").
		WillReturnError(mysql.ErrInvalidConn)
	mock.ExpectRollback()

	res := &model.Reservation{UserID: 2, ShowtimeID: 3, Status: model.ReservationConfirmed, TotalPriceCents: 400}
	err = store.CreateReservation(context.Background(), res, []uint64{11}, tokenStub)
	require.Error(t, err)
	assert.NotErrorIs(t, err, booking.ErrSeatUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkValidatedCompareAndSet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewBookingStore(db)

	// First scan: the guarded UPDATE matches one row.
	mock.ExpectExec("UPDATE reservations").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	flipped, err := store.MarkValidated(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, flipped)

	// Replay: validated is already 1, no row matches.
	mock.ExpectExec("UPDATE reservations").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	flipped, err = store.MarkValidated(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, flipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReservationNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewBookingStore(db)

	mock.ExpectQuery("SELECT id, user_id, showtime_id").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = store.GetReservation(context.Background(), 99)
	assert.ErrorIs(t, err, booking.ErrReservationNotFound)
}

func TestCancelReservationReleasesSeatLinks(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewBookingStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT showtime_id FROM reservations").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"showtime_id"}).AddRow(3))
	mock.ExpectQuery("SELECT seat_id FROM reservation_seats").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(11).AddRow(12))
	mock.ExpectExec("DELETE FROM reservation_seats").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE showtimes SET seats_remaining").
		WithArgs(2, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	seatIDs, err := store.CancelReservation(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []uint64{11, 12}, seatIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
