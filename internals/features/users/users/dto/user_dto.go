package dto

import (
	"strings"
	"time"

	"gerejaku_backend/internals/features/users/users/model"

	"github.com/google/uuid"
)

// CreateUserRequest invites a staff account. Without a password the user can
// only sign in with Google using the same email.
type CreateUserRequest struct {
	FullName string  `json:"full_name" validate:"required,min=2,max=120"`
	Email    string  `json:"email"     validate:"required,email,max=190"`
	Role     string  `json:"role"      validate:"required,oneof=owner admin staff viewer"`
	Password *string `json:"password"  validate:"omitempty,min=8,max=72"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Role     *string `json:"role"      validate:"omitempty,oneof=owner admin staff viewer"`
	IsActive *bool   `json:"is_active"`
}

func (r *UpdateUserRequest) Empty() bool {
	return r.FullName == nil && r.Role == nil && r.IsActive == nil
}

func (r *UpdateUserRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.FullName != nil {
		m["user_full_name"] = strings.TrimSpace(*r.FullName)
	}
	if r.Role != nil {
		m["user_role"] = *r.Role
	}
	if r.IsActive != nil {
		m["user_is_active"] = *r.IsActive
	}
	return m
}

type UserResponse struct {
	UserID          uuid.UUID  `json:"user_id"`
	UserFullName    string     `json:"user_full_name"`
	UserEmail       string     `json:"user_email"`
	UserRole        string     `json:"user_role"`
	UserIsActive    bool       `json:"user_is_active"`
	UserHasPassword bool       `json:"user_has_password"`
	UserHasGoogle   bool       `json:"user_has_google"`
	UserLastLoginAt *time.Time `json:"user_last_login_at,omitempty"`
	UserCreatedAt   time.Time  `json:"user_created_at"`
}

func FromModel(u *model.UserModel) UserResponse {
	return UserResponse{
		UserID:          u.UserID,
		UserFullName:    u.UserFullName,
		UserEmail:       u.UserEmail,
		UserRole:        u.UserRole,
		UserIsActive:    u.UserIsActive,
		UserHasPassword: u.HasPassword(),
		UserHasGoogle:   u.UserGoogleID != nil,
		UserLastLoginAt: u.UserLastLoginAt,
		UserCreatedAt:   u.UserCreatedAt,
	}
}

func FromModels(list []model.UserModel) []UserResponse {
	out := make([]UserResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}
