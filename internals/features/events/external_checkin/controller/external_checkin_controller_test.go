package controller

import (
	"net/http/httptest"
	"strings"
	"testing"

	"gerejaku_backend/internals/constants"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	middleware "gerejaku_backend/internals/middlewares/features"

	"github.com/gofiber/fiber/v2"
)

func TestToggleGateOnDowngradedChurch(t *testing.T) {
	tests := []struct {
		name string
		tier string
		body string
		want int
	}{
		{"free tier cannot enable", constants.TierFree, `{"enabled":true}`, fiber.StatusForbidden},
		{"free tier can still disable", constants.TierFree, `{"enabled":false}`, fiber.StatusOK},
		{"free tier malformed body reaches handler", constants.TierFree, `{`, fiber.StatusOK},
		{"standard tier enables", constants.TierStandard, `{"enabled":true}`, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Post("/toggle",
				func(c *fiber.Ctx) error {
					c.Locals(helperAuth.LocTier, tt.tier)
					return c.Next()
				},
				middleware.RequireFeatureWhen(constants.FeatureExternalCheckIn, Enabling),
				func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
			)
			req := httptest.NewRequest(fiber.MethodPost, "/toggle", strings.NewReader(tt.body))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
