package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel is an admin/staff account. Every user belongs to exactly one church.
type UserModel struct {
	UserID          uuid.UUID      `gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey" json:"user_id"`
	UserChurchID    uuid.UUID      `gorm:"column:user_church_id;type:uuid;not null;index"                json:"user_church_id"`
	UserFullName    string         `gorm:"column:user_full_name;type:varchar(120);not null"              json:"user_full_name"`
	UserEmail       string         `gorm:"column:user_email;type:varchar(190);not null"                  json:"user_email"`
	UserPassword    *string        `gorm:"column:user_password;type:text"                                json:"-"`
	UserGoogleID    *string        `gorm:"column:user_google_id;type:varchar(64)"                        json:"-"`
	UserRole        string         `gorm:"column:user_role;type:varchar(20);not null;default:'staff'"    json:"user_role"`
	UserIsActive    bool           `gorm:"column:user_is_active;not null;default:true"                   json:"user_is_active"`
	UserLastLoginAt *time.Time     `gorm:"column:user_last_login_at;type:timestamptz"                    json:"user_last_login_at,omitempty"`
	UserCreatedAt   time.Time      `gorm:"column:user_created_at;type:timestamptz;autoCreateTime"        json:"user_created_at"`
	UserUpdatedAt   time.Time      `gorm:"column:user_updated_at;type:timestamptz;autoUpdateTime"        json:"user_updated_at"`
	UserDeletedAt   gorm.DeletedAt `gorm:"column:user_deleted_at;type:timestamptz;index"                 json:"-"`
}

func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) HasPassword() bool {
	return u.UserPassword != nil && *u.UserPassword != ""
}

// NormalizeEmail lower-cases and trims; emails are unique case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
