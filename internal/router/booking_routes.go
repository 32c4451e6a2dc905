package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kinohall/cinema-ticketing-engine/internal/handler"
	"github.com/kinohall/cinema-ticketing-engine/internal/middleware"
)

// RegisterBooking registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT with the CUSTOMER role.  Customers can
// view seat availability for showtimes, create reservations, browse
// and cancel their own reservations and download their ticket QR.
// The extra middlewares (typically the Redis token bucket) are applied
// after authentication so limits can key on the user identity.
func RegisterBooking(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mws := append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	}, extra...)
	g := e.Group("/v1", mws...)

	g.GET("/showtimes/:id/seats", h.ListAvailableSeats)
	g.POST("/showtimes/:id/reservations", h.CreateReservation)
	g.GET("/my-reservations", h.ListMyReservations)
	g.GET("/reservations/:id", h.GetReservation)
	g.DELETE("/reservations/:id", h.CancelReservation)
	g.GET("/reservations/:id/qr", h.TicketQR)
}
