package dto

import "github.com/google/uuid"

// UpdateKioskSettingsRequest is a partial update; nil fields are left alone.
type UpdateKioskSettingsRequest struct {
	KioskModeEnabled    *bool `json:"kioskModeEnabled"`
	KioskSessionTimeout *int  `json:"kioskSessionTimeout" validate:"omitempty,oneof=15 30 60 120 240 480"`
}

// KioskCheckInRequest accepts a single memberId or a memberIds batch (family at the kiosk).
type KioskCheckInRequest struct {
	EventID   uuid.UUID   `json:"eventId"   validate:"required"`
	MemberID  *uuid.UUID  `json:"memberId"`
	MemberIDs []uuid.UUID `json:"memberIds" validate:"omitempty,max=50"`
}

func (r *KioskCheckInRequest) Members() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(r.MemberIDs)+1)
	if r.MemberID != nil {
		out = append(out, *r.MemberID)
	}
	return append(out, r.MemberIDs...)
}
