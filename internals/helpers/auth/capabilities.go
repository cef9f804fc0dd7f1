package helper

import (
	"sort"

	"gerejaku_backend/internals/constants"
)

type Capability string

const (
	CapViewData            Capability = "view_data"
	CapRecordAttendance    Capability = "record_attendance"
	CapManageMembers       Capability = "manage_members"
	CapManageVisitors      Capability = "manage_visitors"
	CapSendFollowUp        Capability = "send_follow_up"
	CapManageEvents        Capability = "manage_events"
	CapManageKiosk         Capability = "manage_kiosk"
	CapManageExternalCheck Capability = "manage_external_checkin"
	CapExportReports       Capability = "export_reports"
	CapManageBranding      Capability = "manage_branding"
	CapManageProviders     Capability = "manage_providers"
	CapManageUsers         Capability = "manage_users"
	CapManageBilling       Capability = "manage_billing"
)

// Capabilities is the resolved permission set of one caller.
type Capabilities map[Capability]struct{}

func (cs Capabilities) Has(c Capability) bool {
	_, ok := cs[c]
	return ok
}

func (cs Capabilities) HasAll(caps ...Capability) bool {
	for _, c := range caps {
		if !cs.Has(c) {
			return false
		}
	}
	return true
}

// List returns the set sorted, for responses.
func (cs Capabilities) List() []string {
	out := make([]string, 0, len(cs))
	for c := range cs {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

var (
	viewerCaps = []Capability{CapViewData}
	staffCaps  = append(append([]Capability{}, viewerCaps...),
		CapRecordAttendance, CapManageMembers, CapManageVisitors, CapSendFollowUp)
	adminCaps = append(append([]Capability{}, staffCaps...),
		CapManageEvents, CapManageKiosk, CapManageExternalCheck, CapExportReports,
		CapManageBranding, CapManageProviders, CapManageUsers)
	ownerCaps = append(append([]Capability{}, adminCaps...), CapManageBilling)

	roleCapabilities = map[string][]Capability{
		constants.RoleViewer: viewerCaps,
		constants.RoleStaff:  staffCaps,
		constants.RoleAdmin:  adminCaps,
		constants.RoleOwner:  ownerCaps,
	}
)

// CapabilitiesForRole resolves a role to its capability set. Unknown roles get nothing.
func CapabilitiesForRole(role string) Capabilities {
	caps := Capabilities{}
	for _, c := range roleCapabilities[role] {
		caps[c] = struct{}{}
	}
	return caps
}
