package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"gerejaku_backend/internals/constants"
	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeLoader struct {
	row *ScopeRow
	err error
}

func (f fakeLoader) LoadScope(ctx context.Context, userID, churchID uuid.UUID) (*ScopeRow, error) {
	return f.row, f.err
}

// withToken stands in for AuthJWT: it puts the credential ids into Locals.
func withToken(userID, churchID uuid.UUID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID != uuid.Nil {
			c.Locals(helperAuth.LocUserID, userID)
		}
		if churchID != uuid.Nil {
			c.Locals(helperAuth.LocChurchID, churchID)
		}
		return c.Next()
	}
}

func status(t *testing.T, app *fiber.App, path string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp.StatusCode
}

func TestUseChurchScope(t *testing.T) {
	userID, churchID := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		userID  uuid.UUID
		loader  fakeLoader
		want    int
		wantCap bool
	}{
		{"active admin", userID, fakeLoader{row: &ScopeRow{Role: constants.RoleAdmin, IsActive: true, Tier: constants.TierStandard, Timezone: "UTC"}}, fiber.StatusOK, true},
		{"deactivated", userID, fakeLoader{row: &ScopeRow{Role: constants.RoleAdmin, IsActive: false}}, fiber.StatusForbidden, false},
		{"user or church gone", userID, fakeLoader{err: gorm.ErrRecordNotFound}, fiber.StatusUnauthorized, false},
		{"database error", userID, fakeLoader{err: errors.New("boom")}, fiber.StatusInternalServerError, false},
		{"no credential", uuid.Nil, fakeLoader{}, fiber.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/x", withToken(tt.userID, churchID), UseChurchScope(tt.loader), func(c *fiber.Ctx) error {
				if helperAuth.GetTier(c) != constants.TierStandard {
					t.Errorf("tier = %q", helperAuth.GetTier(c))
				}
				if !helperAuth.GetCapabilities(c).Has(helperAuth.CapManageKiosk) {
					t.Errorf("admin capabilities not loaded")
				}
				return c.SendStatus(fiber.StatusOK)
			})
			if got := status(t, app, "/x"); got != tt.want {
				t.Fatalf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRoleComesFromDatabaseNotToken(t *testing.T) {
	app := fiber.New()
	app.Get("/x",
		withToken(uuid.New(), uuid.New()),
		func(c *fiber.Ctx) error {
			// a stale token still claiming admin
			c.Locals(helperAuth.LocRole, constants.RoleAdmin)
			return c.Next()
		},
		UseChurchScope(fakeLoader{row: &ScopeRow{Role: constants.RoleViewer, IsActive: true, Tier: constants.TierFree}}),
		RequireCapability(helperAuth.CapManageEvents),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)
	if got := status(t, app, "/x"); got != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403 for a demoted user", got)
	}
}

func TestRequireCapabilityAndFeature(t *testing.T) {
	tests := []struct {
		name string
		role string
		tier string
		cap  helperAuth.Capability
		feat constants.Feature
		want int
	}{
		{"staff records on standard", constants.RoleStaff, constants.TierStandard, helperAuth.CapRecordAttendance, constants.FeatureExternalCheckIn, fiber.StatusOK},
		{"viewer cannot record", constants.RoleViewer, constants.TierPremium, helperAuth.CapRecordAttendance, constants.FeatureExternalCheckIn, fiber.StatusForbidden},
		{"admin on free tier has no kiosk", constants.RoleAdmin, constants.TierFree, helperAuth.CapManageKiosk, constants.FeatureKioskMode, fiber.StatusForbidden},
		{"admin on standard has no biometrics", constants.RoleAdmin, constants.TierStandard, helperAuth.CapManageMembers, constants.FeatureBiometricCheckIn, fiber.StatusForbidden},
		{"owner on premium", constants.RoleOwner, constants.TierPremium, helperAuth.CapManageBilling, constants.FeatureFollowUpMessaging, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := fakeLoader{row: &ScopeRow{Role: tt.role, IsActive: true, Tier: tt.tier}}
			app := fiber.New()
			app.Get("/x",
				withToken(uuid.New(), uuid.New()),
				UseChurchScope(loader),
				RequireCapability(tt.cap),
				RequireFeature(tt.feat),
				func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
			)
			if got := status(t, app, "/x"); got != tt.want {
				t.Fatalf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRequireFeatureWhen(t *testing.T) {
	tests := []struct {
		name    string
		tier    string
		applies bool
		want    int
	}{
		{"free tier, gated request", constants.TierFree, true, fiber.StatusForbidden},
		{"free tier, exempt request", constants.TierFree, false, fiber.StatusOK},
		{"standard tier, gated request", constants.TierStandard, true, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/x",
				func(c *fiber.Ctx) error {
					c.Locals(helperAuth.LocTier, tt.tier)
					return c.Next()
				},
				RequireFeatureWhen(constants.FeatureExternalCheckIn, func(*fiber.Ctx) bool { return tt.applies }),
				func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
			)
			if got := status(t, app, "/x"); got != tt.want {
				t.Fatalf("status = %d, want %d", got, tt.want)
			}
		})
	}
}
