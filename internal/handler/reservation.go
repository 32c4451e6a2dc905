package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kinohall/cinema-ticketing-engine/internal/booking"
	"github.com/kinohall/cinema-ticketing-engine/internal/queue"
	"github.com/kinohall/cinema-ticketing-engine/internal/repository"
	queue_publisher "github.com/kinohall/cinema-ticketing-engine/internal/service"
	"github.com/kinohall/cinema-ticketing-engine/internal/ticket"
)

// ReservationHandler exposes seat availability and the reservation
// lifecycle to authenticated customers.  Booking semantics live in
// the booking service; the handler only translates HTTP to service
// calls and sentinel errors to status codes.
type ReservationHandler struct {
	Booking      *booking.Service
	Reservations *repository.ReservationRepo
}

// NewReservationHandler constructs a ReservationHandler.  All
// dependencies must be non-nil.
func NewReservationHandler(svc *booking.Service, reservations *repository.ReservationRepo) *ReservationHandler {
	if svc == nil || reservations == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Booking: svc, Reservations: reservations}
}

// ListAvailableSeats handles GET /v1/showtimes/:id/seats.  It returns
// the seats of the showtime's theater that are not attached to any
// non-cancelled reservation, ordered by seat label.
func (h *ReservationHandler) ListAvailableSeats(c echo.Context) error {
	showtimeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	seats, err := h.Booking.AvailableSeats(c.Request().Context(), showtimeID)
	if err != nil {
		if errors.Is(err, booking.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	labels := make([]string, 0, len(seats))
	for _, s := range seats {
		labels = append(labels, s.Number)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showtime_id": showtimeID,
		"count":       len(labels),
		"seats":       labels,
	})
}

// CreateReservation handles POST /v1/showtimes/:id/reservations.  The
// body must contain a "seat_numbers" array of seat labels.  All seats
// are booked atomically: if any one of them is unavailable the whole
// request fails with 409 and nothing is persisted.
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showtimeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	var body struct {
		SeatNumbers []string `json:"seat_numbers"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.SeatNumbers) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_numbers is required"})
	}

	res, seats, err := h.Booking.CreateReservation(c.Request().Context(), userID, showtimeID, body.SeatNumbers)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrShowtimeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		case errors.Is(err, booking.ErrInvalidSeat):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, booking.ErrSeatUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		case errors.Is(err, booking.ErrShowtimeStarted):
			return c.JSON(http.StatusConflict, echo.Map{"error": "showtime has already started"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}

	labels := make([]string, 0, len(seats))
	for _, s := range seats {
		labels = append(labels, s.Number)
	}

	// Publishing is best-effort: a broker outage must not fail the
	// booking that was already committed.
	event := queue.ReservationConfirmedEvent{
		ReservationID:   res.ID,
		UserID:          res.UserID,
		ShowtimeID:      res.ShowtimeID,
		SeatLabels:      labels,
		TotalPriceCents: res.TotalPriceCents,
		ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishReservationConfirmed(ctx, event)
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id":    res.ID,
		"showtime_id":       res.ShowtimeID,
		"status":            res.Status,
		"seats":             labels,
		"total_price_cents": res.TotalPriceCents,
		"ticket_token":      res.TicketToken,
	})
}

// ListMyReservations handles GET /v1/my-reservations.
func (h *ReservationHandler) ListMyReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": details})
}

// GetReservation handles GET /v1/reservations/:id.  A reservation
// belonging to another user is indistinguishable from a missing one.
func (h *ReservationHandler) GetReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	det, err := h.Reservations.GetByIDForUser(c.Request().Context(), reservationID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, det)
}

// CancelReservation handles DELETE /v1/reservations/:id.  The seats
// are released in the same transaction that flips the status, so they
// become bookable immediately.  Cancelling an already-cancelled
// reservation succeeds without effect.
func (h *ReservationHandler) CancelReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Booking.CancelReservation(c.Request().Context(), userID, reservationID); err != nil {
		switch {
		case errors.Is(err, booking.ErrReservationNotFound), errors.Is(err, booking.ErrForbidden):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, booking.ErrShowtimeStarted):
			return c.JSON(http.StatusConflict, echo.Map{"error": "showtime has already started"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel reservation"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation_id": reservationID, "status": "CANCELLED"})
}

// TicketQR handles GET /v1/reservations/:id/qr and streams the ticket
// token as a PNG QR code for display at the entrance scanner.
func (h *ReservationHandler) TicketQR(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	det, err := h.Reservations.GetByIDForUser(c.Request().Context(), reservationID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if det.Status != "CONFIRMED" || det.TicketToken == "" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation has no active ticket"})
	}
	png, err := ticket.QRPNG(det.TicketToken, ticket.QRSizeStandard)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render qr code"})
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
