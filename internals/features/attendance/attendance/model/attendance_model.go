package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MethodManual    = "manual"
	MethodBiometric = "biometric"
	MethodFamily    = "family"
	MethodExternal  = "external"
	MethodKiosk     = "kiosk"
)

func IsValidMethod(m string) bool {
	switch m {
	case MethodManual, MethodBiometric, MethodFamily, MethodExternal, MethodKiosk:
		return true
	}
	return false
}

// AttendanceModel is one check-in. Exactly one of member/visitor is set.
// Uniqueness per (subject, event, day) is a partial unique index per subject kind.
type AttendanceModel struct {
	AttendanceID             uuid.UUID      `gorm:"column:attendance_id;type:uuid;default:gen_random_uuid();primaryKey" json:"attendance_id"`
	AttendanceChurchID       uuid.UUID      `gorm:"column:attendance_church_id;type:uuid;not null"       json:"attendance_church_id"`
	AttendanceMemberID       *uuid.UUID     `gorm:"column:attendance_member_id;type:uuid"                json:"attendance_member_id,omitempty"`
	AttendanceVisitorID      *uuid.UUID     `gorm:"column:attendance_visitor_id;type:uuid"               json:"attendance_visitor_id,omitempty"`
	AttendanceEventID        uuid.UUID      `gorm:"column:attendance_event_id;type:uuid;not null"        json:"attendance_event_id"`
	AttendanceDate           datatypes.Date `gorm:"column:attendance_date;type:date;not null"            json:"attendance_date"`
	AttendanceCheckInTime    time.Time      `gorm:"column:attendance_check_in_time;type:timestamptz;not null" json:"attendance_check_in_time"`
	AttendanceCheckInMethod  string         `gorm:"column:attendance_check_in_method;type:varchar(16);not null" json:"attendance_check_in_method"`
	AttendanceIsGuest        bool           `gorm:"column:attendance_is_guest;not null"                  json:"attendance_is_guest"`
	AttendanceRecordedBy     *uuid.UUID     `gorm:"column:attendance_recorded_by;type:uuid"              json:"attendance_recorded_by,omitempty"`
	AttendanceKioskSessionID *uuid.UUID     `gorm:"column:attendance_kiosk_session_id;type:uuid"         json:"attendance_kiosk_session_id,omitempty"`
	AttendanceCreatedAt      time.Time      `gorm:"column:attendance_created_at;type:timestamptz;autoCreateTime" json:"attendance_created_at"`
}

func (AttendanceModel) TableName() string {
	return "attendance_records"
}
