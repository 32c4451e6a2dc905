package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports liveness to load balancers and monitoring.  It
// deliberately touches no dependency: a degraded broker or cache must
// not take the booking API out of rotation.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
