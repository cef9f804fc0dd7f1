package helper

import (
	"testing"

	"gerejaku_backend/internals/constants"
)

func TestCapabilitiesAreNested(t *testing.T) {
	order := []string{constants.RoleViewer, constants.RoleStaff, constants.RoleAdmin, constants.RoleOwner}
	for i := 1; i < len(order); i++ {
		lower := CapabilitiesForRole(order[i-1])
		higher := CapabilitiesForRole(order[i])
		for c := range lower {
			if !higher.Has(c) {
				t.Errorf("%s lacks %s held by %s", order[i], c, order[i-1])
			}
		}
		if len(higher) <= len(lower) {
			t.Errorf("%s should hold more capabilities than %s", order[i], order[i-1])
		}
	}
}

func TestCapabilitiesForRole(t *testing.T) {
	tests := []struct {
		role string
		cap  Capability
		want bool
	}{
		{constants.RoleViewer, CapViewData, true},
		{constants.RoleViewer, CapRecordAttendance, false},
		{constants.RoleStaff, CapRecordAttendance, true},
		{constants.RoleStaff, CapManageEvents, false},
		{constants.RoleAdmin, CapManageKiosk, true},
		{constants.RoleAdmin, CapManageBilling, false},
		{constants.RoleOwner, CapManageBilling, true},
		{"intruder", CapViewData, false},
	}
	for _, tt := range tests {
		if got := CapabilitiesForRole(tt.role).Has(tt.cap); got != tt.want {
			t.Errorf("%s has %s = %v, want %v", tt.role, tt.cap, got, tt.want)
		}
	}
}

func TestCapabilitiesHasAllAndList(t *testing.T) {
	caps := CapabilitiesForRole(constants.RoleStaff)
	if !caps.HasAll(CapViewData, CapManageMembers) {
		t.Errorf("staff should hold view and manage members")
	}
	if caps.HasAll(CapViewData, CapManageUsers) {
		t.Errorf("HasAll must fail when any capability is missing")
	}
	list := CapabilitiesForRole(constants.RoleViewer).List()
	if len(list) != 1 || list[0] != string(CapViewData) {
		t.Errorf("viewer list = %v", list)
	}
}
