// file: internals/helpers/auth/church_context.go
package helper

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals keys written by the auth middlewares.
const (
	LocUserID         = "user_id"
	LocChurchID       = "church_id"
	LocRole           = "role"
	LocTier           = "church_tier"
	LocTimezone       = "church_timezone"
	LocChurchLoc      = "church_loc"
	LocCapabilities   = "capabilities"
	LocKioskSessionID = "kiosk_session_id"
)

var (
	ErrNotLoggedIn        = fiber.NewError(fiber.StatusUnauthorized, "Not logged in")
	ErrChurchContextEmpty = fiber.NewError(fiber.StatusUnauthorized, "Church context missing from credential")
	ErrForbidden          = fiber.NewError(fiber.StatusForbidden, "You do not have access to this resource")
)

// ChurchContext is what UseChurchScope resolves for an admin request.
type ChurchContext struct {
	UserID   uuid.UUID
	ChurchID uuid.UUID
	Role     string
	Tier     string
	Location *time.Location
	Caps     Capabilities
}

func SetChurchContext(c *fiber.Ctx, cc ChurchContext) {
	c.Locals(LocUserID, cc.UserID)
	c.Locals(LocChurchID, cc.ChurchID)
	c.Locals(LocRole, cc.Role)
	c.Locals(LocTier, cc.Tier)
	if cc.Location != nil {
		c.Locals(LocChurchLoc, cc.Location)
		c.Locals(LocTimezone, cc.Location.String())
	}
	c.Locals(LocCapabilities, cc.Caps)
}

func localUUID(c *fiber.Ctx, key string) uuid.UUID {
	switch v := c.Locals(key).(type) {
	case uuid.UUID:
		return v
	case string:
		id, err := uuid.Parse(v)
		if err == nil {
			return id
		}
	}
	return uuid.Nil
}

// GetUserID returns the authenticated user id or 401.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id := localUUID(c, LocUserID)
	if id == uuid.Nil {
		return uuid.Nil, ErrNotLoggedIn
	}
	return id, nil
}

// GetChurchID returns the tenant id resolved from the credential, never from client input.
func GetChurchID(c *fiber.Ctx) (uuid.UUID, error) {
	id := localUUID(c, LocChurchID)
	if id == uuid.Nil {
		return uuid.Nil, ErrChurchContextEmpty
	}
	return id, nil
}

func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocRole).(string)
	return s
}

func GetTier(c *fiber.Ctx) string {
	s, _ := c.Locals(LocTier).(string)
	return s
}

func GetCapabilities(c *fiber.Ctx) Capabilities {
	if caps, ok := c.Locals(LocCapabilities).(Capabilities); ok {
		return caps
	}
	return Capabilities{}
}

// GetChurchLocation falls back to UTC when the scope middleware did not run.
func GetChurchLocation(c *fiber.Ctx) *time.Location {
	if loc, ok := c.Locals(LocChurchLoc).(*time.Location); ok && loc != nil {
		return loc
	}
	return time.UTC
}

func GetKioskSessionID(c *fiber.Ctx) uuid.UUID {
	return localUUID(c, LocKioskSessionID)
}
