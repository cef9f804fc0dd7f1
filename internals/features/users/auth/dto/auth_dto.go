package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterChurchRequest struct {
	ChurchName     string `json:"church_name"     validate:"required,min=3,max=150"`
	ChurchTimezone string `json:"church_timezone" validate:"omitempty,max=64"`
	FullName       string `json:"full_name"       validate:"required,min=2,max=120"`
	Email          string `json:"email"           validate:"required,email,max=190"`
	Password       string `json:"password"        validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginGoogleRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type UpdateNameRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
}

type SessionUser struct {
	UserID       uuid.UUID `json:"user_id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	ChurchID     uuid.UUID `json:"church_id"`
	ChurchName   string    `json:"church_name"`
	ChurchSlug   string    `json:"church_slug"`
	Tier         string    `json:"subscription_tier"`
	Timezone     string    `json:"timezone"`
	Capabilities []string  `json:"capabilities"`
}

type LoginResponse struct {
	User            SessionUser `json:"user"`
	AccessToken     string      `json:"access_token"`
	AccessExpiresAt time.Time   `json:"access_expires_at"`
}
