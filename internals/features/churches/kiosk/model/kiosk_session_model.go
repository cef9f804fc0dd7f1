package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	EndReasonEnded    = "ended"
	EndReasonExpired  = "expired"
	EndReasonReplaced = "replaced"
	EndReasonDisabled = "disabled"
)

// KioskSessionModel is the server-side record of a kiosk window. At most one
// row per church has ended_at NULL (partial unique index).
type KioskSessionModel struct {
	KioskSessionID        uuid.UUID      `gorm:"column:kiosk_session_id;type:uuid;default:gen_random_uuid();primaryKey" json:"kiosk_session_id"`
	KioskSessionChurchID  uuid.UUID      `gorm:"column:kiosk_session_church_id;type:uuid;not null"   json:"kiosk_session_church_id"`
	KioskSessionStartedBy *uuid.UUID     `gorm:"column:kiosk_session_started_by;type:uuid"           json:"kiosk_session_started_by,omitempty"`
	KioskSessionStartedAt time.Time      `gorm:"column:kiosk_session_started_at;type:timestamptz;not null" json:"kiosk_session_started_at"`
	KioskSessionExpiresAt time.Time      `gorm:"column:kiosk_session_expires_at;type:timestamptz;not null" json:"kiosk_session_expires_at"`
	KioskSessionEndedAt   *time.Time     `gorm:"column:kiosk_session_ended_at;type:timestamptz"      json:"kiosk_session_ended_at,omitempty"`
	KioskSessionEndReason *string        `gorm:"column:kiosk_session_end_reason;type:varchar(16)"    json:"kiosk_session_end_reason,omitempty"`
	KioskSessionEventIDs  pq.StringArray `gorm:"column:kiosk_session_event_ids;type:text[];not null" json:"kiosk_session_event_ids"`

	KioskSessionCreatedAt time.Time `gorm:"column:kiosk_session_created_at;type:timestamptz;autoCreateTime" json:"kiosk_session_created_at"`
	KioskSessionUpdatedAt time.Time `gorm:"column:kiosk_session_updated_at;type:timestamptz;autoUpdateTime" json:"kiosk_session_updated_at"`
}

func (KioskSessionModel) TableName() string {
	return "kiosk_sessions"
}

func (s *KioskSessionModel) IsOpen() bool {
	return s != nil && s.KioskSessionEndedAt == nil
}

// IsExpired: expiry is a pure function of now vs expires_at.
func (s *KioskSessionModel) IsExpired(now time.Time) bool {
	return !now.Before(s.KioskSessionExpiresAt)
}

// IsLive is open and not expired.
func (s *KioskSessionModel) IsLive(now time.Time) bool {
	return s.IsOpen() && !s.IsExpired(now)
}

// TimeRemaining in whole seconds, never negative.
func (s *KioskSessionModel) TimeRemaining(now time.Time) int64 {
	if !s.IsLive(now) {
		return 0
	}
	return int64(s.KioskSessionExpiresAt.Sub(now).Seconds())
}

func (s *KioskSessionModel) Covers(eventID uuid.UUID) bool {
	id := eventID.String()
	for _, e := range s.KioskSessionEventIDs {
		if e == id {
			return true
		}
	}
	return false
}

func (s *KioskSessionModel) EventUUIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.KioskSessionEventIDs))
	for _, e := range s.KioskSessionEventIDs {
		if id, err := uuid.Parse(e); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// ExtendedExpiry resets the window to now+timeout but never moves it backwards.
func ExtendedExpiry(current, now time.Time, timeout time.Duration) time.Time {
	next := now.Add(timeout)
	if next.Before(current) {
		return current
	}
	return next
}
