package auth

import (
	"context"
	"strings"
	"time"

	"gerejaku_backend/internals/configs"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthJWTOpts struct {
	Secret              string
	BlacklistChecker    func(rawToken string) (bool, error) // true = revoked
	AllowCookieFallback bool                                // access_token cookie when no Bearer
}

// AuthJWT verifies the admin access token (typ=access) and hydrates
// user_id / church_id / role into Locals. Kiosk tokens never pass here:
// they are signed with a different secret and carry typ=kiosk.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret is required")
	}

	return func(c *fiber.Ctx) error {
		raw := helper.BearerToken(c)
		if raw == "" && o.AllowCookieFallback {
			raw = strings.TrimSpace(c.Cookies(helper.AccessCookie))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		claims, err := helperAuth.ParseAccessToken(secret, raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		// a failed lookup must not let a logged-out token through
		if o.BlacklistChecker != nil {
			black, err := o.BlacklistChecker(raw)
			if err != nil {
				configs.Log.WithError(err).Warn("[WARN] token blacklist lookup failed")
				return fiber.NewError(fiber.StatusServiceUnavailable, "Could not verify session, try again")
			}
			if black {
				return fiber.NewError(fiber.StatusUnauthorized, "Token revoked")
			}
		}

		userID, _ := uuid.Parse(claims.Subject)
		churchID, _ := uuid.Parse(claims.ChurchID)

		c.Locals(helperAuth.LocUserID, userID)
		c.Locals(helperAuth.LocChurchID, churchID)
		c.Locals(helperAuth.LocRole, claims.Role)
		c.Locals("jwt_claims", claims)
		helper.RememberAccessToken(c, raw)

		return c.Next()
	}
}

// AdminAuth is AuthJWT wired to the configured secret and the token blacklist.
func AdminAuth(db *gorm.DB) fiber.Handler {
	return AuthJWT(AuthJWTOpts{
		Secret:              configs.JWTSecret,
		AllowCookieFallback: true,
		BlacklistChecker: func(raw string) (bool, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return helperAuth.IsBlacklisted(ctx, db, raw, configs.JWTSecret)
		},
	})
}
