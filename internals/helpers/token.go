package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	locAccessToken = "access_token_raw"
)

// BearerToken reads "Authorization: Bearer <token>" (scheme is case-insensitive).
func BearerToken(c *fiber.Ctx) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(c.Get(fiber.HeaderAuthorization)), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RememberAccessToken keeps the verified token for handlers that need it later (logout).
func RememberAccessToken(c *fiber.Ctx, raw string) {
	c.Locals(locAccessToken, raw)
}

// AccessToken prefers the token the auth middleware verified, then the
// Authorization header, then the access cookie.
func AccessToken(c *fiber.Ctx) string {
	if v, _ := c.Locals(locAccessToken).(string); v != "" {
		return v
	}
	if v := BearerToken(c); v != "" {
		return v
	}
	return strings.TrimSpace(c.Cookies(AccessCookie))
}

// RefreshToken reads the refresh cookie, falling back to {"refresh_token": "..."}
// in the body for clients that cannot keep cookies.
func RefreshToken(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Cookies(RefreshCookie)); v != "" {
		return v
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if len(c.Body()) > 0 {
		_ = c.BodyParser(&body)
	}
	return strings.TrimSpace(body.RefreshToken)
}
