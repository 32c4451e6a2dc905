package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kinohall/cinema-ticketing-engine/internal/handler"
	"github.com/kinohall/cinema-ticketing-engine/internal/middleware"
)

// RegisterScan registers the entrance scanner endpoint.  Scanners
// authenticate with a shared device key instead of a JWT; the key is
// verified against the bcrypt hash from configuration.
func RegisterScan(e *echo.Echo, h *handler.ScanHandler, scannerKeyHash string, extra ...echo.MiddlewareFunc) {
	mws := append([]echo.MiddlewareFunc{
		middleware.RequireDeviceKey(scannerKeyHash),
	}, extra...)
	g := e.Group("/v1", mws...)

	g.POST("/scan", h.Scan)
}
