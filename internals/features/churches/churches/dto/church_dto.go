package dto

import (
	"regexp"
	"strings"
	"time"

	"gerejaku_backend/internals/features/churches/churches/model"
	"gerejaku_backend/internals/helpers/dbtime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var brandColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var (
	ErrBrandColor = fiber.NewError(fiber.StatusBadRequest, "brand_color must look like #RRGGBB")
	ErrTimezone   = fiber.NewError(fiber.StatusBadRequest, "Unknown IANA timezone")
	ErrEmptyName  = fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
)

type BrandingRequest struct {
	Name           *string `json:"name"            validate:"omitempty,max=150"`
	BrandColor     *string `json:"brand_color"`
	WelcomeMessage *string `json:"welcome_message" validate:"omitempty,max=500"`
	Timezone       *string `json:"timezone"        validate:"omitempty,max=64"`
}

// TouchesBranding reports whether the request changes paid branding fields.
func (r *BrandingRequest) TouchesBranding() bool {
	return r.BrandColor != nil || r.WelcomeMessage != nil
}

// ToUpdates validates and normalises the request into a column map.
func (r *BrandingRequest) ToUpdates() (map[string]any, error) {
	u := map[string]any{}
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		if n == "" {
			return nil, ErrEmptyName
		}
		u["church_name"] = n
	}
	if r.BrandColor != nil {
		c := strings.TrimSpace(*r.BrandColor)
		if !brandColorRe.MatchString(c) {
			return nil, ErrBrandColor
		}
		u["church_brand_color"] = strings.ToUpper(c)
	}
	if r.WelcomeMessage != nil {
		w := strings.TrimSpace(*r.WelcomeMessage)
		if w == "" {
			u["church_welcome_message"] = nil
		} else {
			u["church_welcome_message"] = w
		}
	}
	if r.Timezone != nil {
		tz := strings.TrimSpace(*r.Timezone)
		if !dbtime.IsValidTimezone(tz) {
			return nil, ErrTimezone
		}
		u["church_timezone"] = tz
	}
	return u, nil
}

type ChurchProfileResponse struct {
	ChurchID               uuid.UUID `json:"church_id"`
	ChurchName             string    `json:"church_name"`
	ChurchSlug             string    `json:"church_slug"`
	ChurchBrandColor       string    `json:"church_brand_color"`
	ChurchLogoURL          *string   `json:"church_logo_url,omitempty"`
	ChurchIconURL          *string   `json:"church_icon_url,omitempty"`
	ChurchWelcomeMessage   *string   `json:"church_welcome_message,omitempty"`
	ChurchTimezone         string    `json:"church_timezone"`
	ChurchKioskModeEnabled bool      `json:"church_kiosk_mode_enabled"`
	ChurchKioskTimeout     int       `json:"church_kiosk_session_timeout"`
	ChurchSubscriptionTier string    `json:"church_subscription_tier"`
	ChurchCreatedAt        time.Time `json:"church_created_at"`
}

func ToChurchProfileResponse(m *model.ChurchModel) ChurchProfileResponse {
	return ChurchProfileResponse{
		ChurchID:               m.ChurchID,
		ChurchName:             m.ChurchName,
		ChurchSlug:             m.ChurchSlug,
		ChurchBrandColor:       m.ChurchBrandColor,
		ChurchLogoURL:          m.ChurchLogoURL,
		ChurchIconURL:          m.ChurchIconURL,
		ChurchWelcomeMessage:   m.ChurchWelcomeMessage,
		ChurchTimezone:         m.ChurchTimezone,
		ChurchKioskModeEnabled: m.ChurchKioskModeEnabled,
		ChurchKioskTimeout:     int(m.KioskTimeout().Minutes()),
		ChurchSubscriptionTier: m.ChurchSubscriptionTier,
		ChurchCreatedAt:        m.ChurchCreatedAt,
	}
}
