package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kinohall/cinema-ticketing-engine/internal/booking"
	"github.com/kinohall/cinema-ticketing-engine/internal/queue"
	queue_publisher "github.com/kinohall/cinema-ticketing-engine/internal/service"
)

// ScanHandler exposes ticket validation to entrance scanner devices.
// Scanners authenticate with a device key, not a user JWT; the
// middleware enforcing that runs before these handlers.
type ScanHandler struct {
	Validator *booking.Validator
}

// NewScanHandler constructs a ScanHandler.  The validator must be non-nil.
func NewScanHandler(v *booking.Validator) *ScanHandler {
	if v == nil {
		panic("nil validator passed to NewScanHandler")
	}
	return &ScanHandler{Validator: v}
}

// Scan handles POST /v1/scan.  The body carries the raw ticket token
// read from the QR code.  Every decision is a 200 response: "Accepted"
// opens the gate, "Rejected" carries a machine-readable reason.  Only
// infrastructure failures produce a 5xx, so a flaky database never
// silently admits anyone.
func (h *ScanHandler) Scan(c echo.Context) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	result, err := h.Validator.Validate(c.Request().Context(), body.Token)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validation failed"})
	}
	if !result.Accepted {
		return c.JSON(http.StatusOK, echo.Map{
			"result": "Rejected",
			"reason": result.Reason,
		})
	}

	event := queue.TicketValidatedEvent{
		ReservationID: result.Reservation.ID,
		ShowtimeID:    result.Reservation.ShowtimeID,
		UserID:        result.Reservation.UserID,
		ValidatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishTicketValidated(ctx, event)
	}()

	return c.JSON(http.StatusOK, echo.Map{
		"result":         "Accepted",
		"reservation_id": result.Reservation.ID,
		"showtime_id":    result.Reservation.ShowtimeID,
	})
}
