package middleware

import (
	"context"
	"errors"

	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/constants"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	"gerejaku_backend/internals/helpers/dbtime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScopeRow is the live user+church state behind a token.
type ScopeRow struct {
	Role     string
	IsActive bool
	Tier     string
	Timezone string
}

type ScopeLoader interface {
	LoadScope(ctx context.Context, userID, churchID uuid.UUID) (*ScopeRow, error)
}

type gormScopeLoader struct{ db *gorm.DB }

func NewGormScopeLoader(db *gorm.DB) ScopeLoader { return &gormScopeLoader{db: db} }

func (l *gormScopeLoader) LoadScope(ctx context.Context, userID, churchID uuid.UUID) (*ScopeRow, error) {
	var row struct {
		UserRole               string
		UserIsActive           bool
		ChurchSubscriptionTier string
		ChurchTimezone         string
	}
	res := l.db.WithContext(ctx).Raw(`
		SELECT u.user_role, u.user_is_active, c.church_subscription_tier, c.church_timezone
		FROM users u
		JOIN churches c ON c.church_id = u.user_church_id
		WHERE u.user_id = ?
		  AND u.user_church_id = ?
		  AND u.user_deleted_at IS NULL
		  AND c.church_deleted_at IS NULL
		LIMIT 1
	`, userID, churchID).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &ScopeRow{
		Role:     row.UserRole,
		IsActive: row.UserIsActive,
		Tier:     row.ChurchSubscriptionTier,
		Timezone: row.ChurchTimezone,
	}, nil
}

// UseChurchScope resolves the tenant for an authenticated admin request.
// Role and tier come from the database, not the token, so demotions and
// downgrades apply on the next request.
func UseChurchScope(loader ScopeLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := helperAuth.GetUserID(c)
		if err != nil {
			return err
		}
		churchID, err := helperAuth.GetChurchID(c)
		if err != nil {
			return err
		}

		row, err := loader.LoadScope(c.UserContext(), userID, churchID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Account or church no longer exists")
		}
		if err != nil {
			configs.Log.WithError(err).WithField("user_id", userID).Error("[ERROR] load church scope")
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to resolve church context")
		}
		if !row.IsActive {
			return fiber.NewError(fiber.StatusForbidden, "Account is deactivated")
		}

		helperAuth.SetChurchContext(c, helperAuth.ChurchContext{
			UserID:   userID,
			ChurchID: churchID,
			Role:     row.Role,
			Tier:     row.Tier,
			Location: dbtime.LoadLocation(row.Timezone),
			Caps:     helperAuth.CapabilitiesForRole(row.Role),
		})
		return c.Next()
	}
}

// RequireCapability is the single authorization guard for admin routes.
func RequireCapability(caps ...helperAuth.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !helperAuth.GetCapabilities(c).HasAll(caps...) {
			return fiber.NewError(fiber.StatusForbidden, "Your role does not allow this action")
		}
		return c.Next()
	}
}

// RequireFeature gates a route on the church's subscription tier.
func RequireFeature(feature constants.Feature) fiber.Handler {
	return RequireFeatureWhen(feature, nil)
}

// RequireFeatureWhen gates only the requests for which applies returns true,
// so a downgraded church can still switch a feature off. nil applies always.
func RequireFeatureWhen(feature constants.Feature, applies func(*fiber.Ctx) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if applies != nil && !applies(c) {
			return c.Next()
		}
		if !constants.HasFeature(helperAuth.GetTier(c), feature) {
			return fiber.NewError(fiber.StatusForbidden, "This feature is not included in your subscription plan")
		}
		return c.Next()
	}
}
