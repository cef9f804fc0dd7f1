package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const testSecret = "admin-secret"

func newJWTApp(revoked map[string]bool) *fiber.App {
	app := fiber.New()
	app.Get("/x", AuthJWT(AuthJWTOpts{
		Secret:              testSecret,
		AllowCookieFallback: true,
		BlacklistChecker: func(raw string) (bool, error) {
			return revoked[raw], nil
		},
	}), func(c *fiber.Ctx) error {
		if _, err := helperAuth.GetChurchID(c); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAuthJWT(t *testing.T) {
	now := time.Now()
	churchID := uuid.New()
	good, _, _ := helperAuth.SignAccessToken(testSecret, uuid.New(), churchID, "staff", now, time.Hour)
	revokedTok, _, _ := helperAuth.SignAccessToken(testSecret, uuid.New(), churchID, "staff", now, time.Hour)
	kiosk, _ := helperAuth.SignKioskToken("kiosk-secret", uuid.New(), churchID, now, now.Add(time.Hour))

	app := newJWTApp(map[string]bool{revokedTok: true})

	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"bearer", "Bearer " + good, "", fiber.StatusOK},
		{"cookie fallback", "", good, fiber.StatusOK},
		{"missing", "", "", fiber.StatusUnauthorized},
		{"blacklisted", "Bearer " + revokedTok, "", fiber.StatusUnauthorized},
		{"kiosk token", "Bearer " + kiosk, "", fiber.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", "", fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			if tt.cookie != "" {
				req.Header.Set(fiber.HeaderCookie, "access_token="+tt.cookie)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestAuthJWTBlacklistOutageFailsClosed(t *testing.T) {
	good, _, _ := helperAuth.SignAccessToken(testSecret, uuid.New(), uuid.New(), "staff", time.Now(), time.Hour)

	app := fiber.New()
	app.Get("/x", AuthJWT(AuthJWTOpts{
		Secret: testSecret,
		BlacklistChecker: func(string) (bool, error) {
			return false, errors.New("connection refused")
		},
	}), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(fiber.MethodGet, "/x", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+good)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when the blacklist cannot be read", resp.StatusCode)
	}
}

func TestKioskAuthRejectsAdminTokens(t *testing.T) {
	now := time.Now()
	churchID, sessionID := uuid.New(), uuid.New()
	admin, _, _ := helperAuth.SignAccessToken(testSecret, uuid.New(), churchID, "owner", now, time.Hour)
	kiosk, _ := helperAuth.SignKioskToken("kiosk-secret", sessionID, churchID, now, now.Add(time.Hour))

	app := fiber.New()
	app.Get("/k", KioskAuth("kiosk-secret"), func(c *fiber.Ctx) error {
		if helperAuth.GetKioskSessionID(c) != sessionID {
			return fiber.NewError(fiber.StatusTeapot, "wrong session")
		}
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"kiosk bearer", fiber.HeaderAuthorization, "Bearer " + kiosk, fiber.StatusOK},
		{"kiosk header", "X-Kiosk-Token", kiosk, fiber.StatusOK},
		{"admin token", fiber.HeaderAuthorization, "Bearer " + admin, fiber.StatusUnauthorized},
		{"none", "", "", fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/k", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
