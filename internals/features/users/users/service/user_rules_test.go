package service

import (
	"errors"
	"testing"

	"gerejaku_backend/internals/constants"
	"gerejaku_backend/internals/features/users/users/model"

	"github.com/google/uuid"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func TestCheckGrant(t *testing.T) {
	tests := []struct {
		actor, role string
		want        error
	}{
		{constants.RoleOwner, constants.RoleOwner, nil},
		{constants.RoleOwner, constants.RoleViewer, nil},
		{constants.RoleAdmin, constants.RoleAdmin, nil},
		{constants.RoleAdmin, constants.RoleStaff, nil},
		{constants.RoleAdmin, constants.RoleOwner, ErrRoleAboveOwn},
		{constants.RoleStaff, constants.RoleAdmin, ErrRoleAboveOwn},
		{constants.RoleOwner, "superuser", ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.actor+"->"+tt.role, func(t *testing.T) {
			if err := CheckGrant(tt.actor, tt.role); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCheckChange(t *testing.T) {
	ownerID, adminID, staffID := uuid.New(), uuid.New(), uuid.New()
	owner := &model.UserModel{UserID: ownerID, UserRole: constants.RoleOwner, UserIsActive: true}
	admin := &model.UserModel{UserID: adminID, UserRole: constants.RoleAdmin, UserIsActive: true}
	staff := &model.UserModel{UserID: staffID, UserRole: constants.RoleStaff, UserIsActive: true}

	asOwner := Actor{UserID: ownerID, Role: constants.RoleOwner}
	asAdmin := Actor{UserID: adminID, Role: constants.RoleAdmin}

	tests := []struct {
		name   string
		actor  Actor
		target *model.UserModel
		ch     Change
		owners int64
		want   error
	}{
		{"owner promotes staff to admin", asOwner, staff, Change{Role: strp(constants.RoleAdmin)}, 1, nil},
		{"owner deactivates admin", asOwner, admin, Change{IsActive: boolp(false)}, 1, nil},
		{"admin cannot grant owner", asAdmin, staff, Change{Role: strp(constants.RoleOwner)}, 1, ErrRoleAboveOwn},
		{"admin cannot touch owner", asAdmin, owner, Change{IsActive: boolp(false)}, 2, ErrOutranked},
		{"self role change", asAdmin, admin, Change{Role: strp(constants.RoleStaff)}, 1, ErrSelfRoleChange},
		{"self same role is a no-op", asAdmin, admin, Change{Role: strp(constants.RoleAdmin)}, 1, nil},
		{"self deactivate", asOwner, owner, Change{IsActive: boolp(false)}, 2, ErrSelfDeactivate},
		{"last owner demoted by co-owner view", Actor{UserID: uuid.New(), Role: constants.RoleOwner}, owner, Change{Role: strp(constants.RoleAdmin)}, 1, ErrLastOwner},
		{"owner demoted while another owner exists", Actor{UserID: uuid.New(), Role: constants.RoleOwner}, owner, Change{Role: strp(constants.RoleAdmin)}, 2, nil},
		{"last owner deactivated", Actor{UserID: uuid.New(), Role: constants.RoleOwner}, owner, Change{IsActive: boolp(false)}, 1, ErrLastOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckChange(tt.actor, tt.target, tt.ch, tt.owners); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReactivates(t *testing.T) {
	off := &model.UserModel{UserIsActive: false}
	on := &model.UserModel{UserIsActive: true}

	if !(Change{IsActive: boolp(true)}).Reactivates(off) {
		t.Errorf("inactive -> active should count as reactivation")
	}
	if (Change{IsActive: boolp(true)}).Reactivates(on) {
		t.Errorf("active -> active is not a reactivation")
	}
	if (Change{}).Reactivates(off) {
		t.Errorf("no change is not a reactivation")
	}
}

func TestCheckSeat(t *testing.T) {
	tests := []struct {
		tier   string
		active int64
		want   error
	}{
		{constants.TierFree, 1, nil},
		{constants.TierFree, 2, ErrSeatLimit},
		{constants.TierStandard, 9, nil},
		{constants.TierStandard, 10, ErrSeatLimit},
		{constants.TierPremium, 500, nil},
	}
	for _, tt := range tests {
		if err := CheckSeat(tt.tier, tt.active); !errors.Is(err, tt.want) {
			t.Errorf("CheckSeat(%s, %d) = %v, want %v", tt.tier, tt.active, err, tt.want)
		}
	}
}
