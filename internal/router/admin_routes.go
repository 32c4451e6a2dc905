package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kinohall/cinema-ticketing-engine/internal/handler"
	"github.com/kinohall/cinema-ticketing-engine/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Theaters ----
	g.POST("/theaters", h.CreateTheater)
	g.GET("/cinemas/:id/theaters", h.ListTheaters)
	g.DELETE("/theaters/:id", h.DeleteTheater)

	// ---- Seats ----
	g.PATCH("/seats/:id", h.UpdateSeatFlags)

	// ---- Showtimes ----
	g.POST("/showtimes", h.CreateShowtime)
	g.GET("/theaters/:id/showtimes", h.ListShowtimes)
	g.PATCH("/showtimes/:id/pricing", h.UpdateShowtimePricing)
}
