package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// RequireDeviceKey returns a middleware that authenticates entrance
// scanner devices.  Scanners are shared hardware without user
// accounts, so instead of a JWT they present a static key in the
// X-Device-Key header, which is checked against the bcrypt hash from
// the configuration.  The plaintext key is never stored server-side.
func RequireDeviceKey(keyHash string) echo.MiddlewareFunc {
	hash := []byte(keyHash)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := strings.TrimSpace(c.Request().Header.Get("X-Device-Key"))
			if key == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing device key"})
			}
			if err := bcrypt.CompareHashAndPassword(hash, []byte(key)); err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid device key"})
			}
			return next(c)
		}
	}
}
