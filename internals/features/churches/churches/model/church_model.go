package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultKioskSessionTimeout = 60

// KioskTimeoutPresets are the selectable kiosk session lengths, in minutes.
var KioskTimeoutPresets = []int{15, 30, 60, 120, 240, 480}

func IsValidKioskTimeout(minutes int) bool {
	for _, p := range KioskTimeoutPresets {
		if p == minutes {
			return true
		}
	}
	return false
}

type ChurchModel struct {
	ChurchID                  uuid.UUID      `gorm:"column:church_id;type:uuid;default:gen_random_uuid();primaryKey" json:"church_id"`
	ChurchName                string         `gorm:"column:church_name;type:varchar(150);not null"                   json:"church_name"`
	ChurchSlug                string         `gorm:"column:church_slug;type:varchar(120);not null"                   json:"church_slug"`
	ChurchBrandColor          string         `gorm:"column:church_brand_color;type:varchar(7);not null;default:'#1E3A8A'" json:"church_brand_color"`
	ChurchLogoURL             *string        `gorm:"column:church_logo_url;type:text"                                json:"church_logo_url,omitempty"`
	ChurchIconURL             *string        `gorm:"column:church_icon_url;type:text"                                json:"church_icon_url,omitempty"`
	ChurchWelcomeMessage      *string        `gorm:"column:church_welcome_message;type:text"                         json:"church_welcome_message,omitempty"`
	ChurchTimezone            string         `gorm:"column:church_timezone;type:varchar(64);not null;default:'UTC'"  json:"church_timezone"`
	ChurchKioskModeEnabled    bool           `gorm:"column:church_kiosk_mode_enabled;not null;default:false"         json:"church_kiosk_mode_enabled"`
	ChurchKioskSessionTimeout int            `gorm:"column:church_kiosk_session_timeout;not null;default:60"         json:"church_kiosk_session_timeout"`
	ChurchSubscriptionTier    string         `gorm:"column:church_subscription_tier;type:varchar(20);not null;default:'free'" json:"church_subscription_tier"`
	ChurchCreatedAt           time.Time      `gorm:"column:church_created_at;type:timestamptz;autoCreateTime"        json:"church_created_at"`
	ChurchUpdatedAt           time.Time      `gorm:"column:church_updated_at;type:timestamptz;autoUpdateTime"        json:"church_updated_at"`
	ChurchDeletedAt           gorm.DeletedAt `gorm:"column:church_deleted_at;type:timestamptz;index"                 json:"-"`
}

func (ChurchModel) TableName() string {
	return "churches"
}

// KioskTimeout returns the configured timeout, defaulting when unset or off-preset.
func (c *ChurchModel) KioskTimeout() time.Duration {
	m := c.ChurchKioskSessionTimeout
	if !IsValidKioskTimeout(m) {
		m = DefaultKioskSessionTimeout
	}
	return time.Duration(m) * time.Minute
}
