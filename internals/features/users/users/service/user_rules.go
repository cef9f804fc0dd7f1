package service

import (
	"gerejaku_backend/internals/constants"
	"gerejaku_backend/internals/features/users/users/model"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var (
	ErrInvalidRole    = fiber.NewError(fiber.StatusBadRequest, "role must be one of owner, admin, staff, viewer")
	ErrRoleAboveOwn   = fiber.NewError(fiber.StatusForbidden, "You cannot grant a role above your own")
	ErrOutranked      = fiber.NewError(fiber.StatusForbidden, "You cannot modify a user with a higher role")
	ErrSelfRoleChange = fiber.NewError(fiber.StatusForbidden, "You cannot change your own role")
	ErrSelfDeactivate = fiber.NewError(fiber.StatusForbidden, "You cannot deactivate your own account")
	ErrLastOwner      = fiber.NewError(fiber.StatusConflict, "The last active owner cannot be demoted or deactivated")
	ErrSeatLimit      = fiber.NewError(fiber.StatusForbidden, "Your subscription plan has no free admin seats left")
)

// Actor is the signed-in user performing the change.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// Change is a requested role/active edit; nil fields are untouched.
type Change struct {
	Role     *string
	IsActive *bool
}

// CheckGrant allows granting any role up to and including the actor's own.
func CheckGrant(actorRole, role string) error {
	if !constants.IsValidRole(role) {
		return ErrInvalidRole
	}
	if constants.RoleRank(role) > constants.RoleRank(actorRole) {
		return ErrRoleAboveOwn
	}
	return nil
}

// CheckChange validates a role/active edit of target. activeOwners is the
// number of active owners in the church, target included.
func CheckChange(actor Actor, target *model.UserModel, ch Change, activeOwners int64) error {
	roleChanges := ch.Role != nil && *ch.Role != target.UserRole
	deactivates := ch.IsActive != nil && !*ch.IsActive && target.UserIsActive

	if target.UserID == actor.UserID {
		if roleChanges {
			return ErrSelfRoleChange
		}
		if deactivates {
			return ErrSelfDeactivate
		}
	}
	if constants.RoleRank(target.UserRole) > constants.RoleRank(actor.Role) {
		return ErrOutranked
	}
	if roleChanges {
		if err := CheckGrant(actor.Role, *ch.Role); err != nil {
			return err
		}
	}

	if target.UserRole == constants.RoleOwner && target.UserIsActive && (roleChanges || deactivates) && activeOwners <= 1 {
		return ErrLastOwner
	}
	return nil
}

// Reactivates reports whether the change turns an inactive user back on.
func (ch Change) Reactivates(target *model.UserModel) bool {
	return ch.IsActive != nil && *ch.IsActive && !target.UserIsActive
}

// CheckSeat enforces the tier's admin user limit; 0 means unlimited.
func CheckSeat(tier string, activeUsers int64) error {
	limit := constants.MaxAdminUsers(tier)
	if limit > 0 && activeUsers >= int64(limit) {
		return ErrSeatLimit
	}
	return nil
}
