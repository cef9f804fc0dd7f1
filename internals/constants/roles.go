package constants

import "fmt"

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleViewer = "viewer"
)

const (
	ErrOnlyAdminsCanAccess = "❌ Only church admins or owners may access %s."
	ErrOnlyOwnersCanAccess = "❌ Only the church owner may access %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorOwner(feature string) string {
	return fmt.Sprintf(ErrOnlyOwnersCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleOwner,
		RoleAdmin,
		RoleStaff,
		RoleViewer,
	}

	AdminAndAbove = []string{
		RoleOwner,
		RoleAdmin,
	}
)

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleRank orders roles for "cannot grant above yourself" checks. Unknown roles rank 0.
func RoleRank(role string) int {
	switch role {
	case RoleOwner:
		return 4
	case RoleAdmin:
		return 3
	case RoleStaff:
		return 2
	case RoleViewer:
		return 1
	}
	return 0
}
