package auth

import (
	"strings"

	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// KioskAuth accepts only kiosk capability tokens (Bearer, typ=kiosk).
// It proves the token was issued for a session; whether that session is
// still open and unexpired is decided by the kiosk service on every call.
func KioskAuth(secret string) fiber.Handler {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		panic("KioskAuth: Secret is required")
	}

	return func(c *fiber.Ctx) error {
		raw := helper.BearerToken(c)
		if raw == "" {
			raw = strings.TrimSpace(c.Get("X-Kiosk-Token"))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Kiosk token required")
		}

		claims, err := helperAuth.ParseKioskToken(secret, raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Kiosk session expired or invalid")
		}

		sessionID, _ := uuid.Parse(claims.SessionID)
		churchID, _ := uuid.Parse(claims.ChurchID)
		c.Locals(helperAuth.LocKioskSessionID, sessionID)
		c.Locals(helperAuth.LocChurchID, churchID)

		return c.Next()
	}
}
