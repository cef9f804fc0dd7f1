package dto

import (
	"time"

	"gerejaku_backend/internals/features/attendance/attendance/model"

	"github.com/google/uuid"
)

// ManualCheckInRequest: exactly one of member_id / visitor_id.
type ManualCheckInRequest struct {
	EventID   uuid.UUID  `json:"event_id"   validate:"required"`
	MemberID  *uuid.UUID `json:"member_id"  validate:"required_without=VisitorID"`
	VisitorID *uuid.UUID `json:"visitor_id" validate:"required_without=MemberID"`
	Date      *string    `json:"date"       validate:"omitempty,datetime=2006-01-02"`
}

type BiometricCheckInRequest struct {
	EventID     uuid.UUID `json:"event_id"     validate:"required"`
	BiometricID string    `json:"biometric_id" validate:"required,max=64"`
}

// FamilyCheckInRequest: empty member_ids checks in the whole family.
type FamilyCheckInRequest struct {
	EventID   uuid.UUID   `json:"event_id"   validate:"required"`
	ParentID  uuid.UUID   `json:"parent_id"  validate:"required"`
	MemberIDs []uuid.UUID `json:"member_ids" validate:"omitempty,max=50"`
}

type GuestCheckInRequest struct {
	EventID   uuid.UUID `json:"event_id"   validate:"required"`
	VisitorID uuid.UUID `json:"visitor_id" validate:"required"`
}

type AttendanceResponse struct {
	ID             uuid.UUID  `json:"attendance_id"`
	EventID        uuid.UUID  `json:"attendance_event_id"`
	EventName      string     `json:"event_name,omitempty"`
	MemberID       *uuid.UUID `json:"attendance_member_id,omitempty"`
	VisitorID      *uuid.UUID `json:"attendance_visitor_id,omitempty"`
	SubjectName    string     `json:"subject_name,omitempty"`
	Date           string     `json:"attendance_date"`
	CheckInTime    time.Time  `json:"attendance_check_in_time"`
	Method         string     `json:"attendance_check_in_method"`
	IsGuest        bool       `json:"attendance_is_guest"`
	KioskSessionID *uuid.UUID `json:"attendance_kiosk_session_id,omitempty"`
}

func ToAttendanceResponse(m *model.AttendanceModel, subjectName string, loc *time.Location) AttendanceResponse {
	t := m.AttendanceCheckInTime
	if loc != nil {
		t = t.In(loc)
	}
	return AttendanceResponse{
		ID:             m.AttendanceID,
		EventID:        m.AttendanceEventID,
		MemberID:       m.AttendanceMemberID,
		VisitorID:      m.AttendanceVisitorID,
		SubjectName:    subjectName,
		Date:           time.Time(m.AttendanceDate).Format("2006-01-02"),
		CheckInTime:    t,
		Method:         m.AttendanceCheckInMethod,
		IsGuest:        m.AttendanceIsGuest,
		KioskSessionID: m.AttendanceKioskSessionID,
	}
}

// AttendanceListRow is the joined row used by the list endpoint.
type AttendanceListRow struct {
	AttendanceID             uuid.UUID  `json:"attendance_id"`
	AttendanceEventID        uuid.UUID  `json:"attendance_event_id"`
	EventName                string     `json:"event_name"`
	AttendanceMemberID       *uuid.UUID `json:"attendance_member_id,omitempty"`
	AttendanceVisitorID      *uuid.UUID `json:"attendance_visitor_id,omitempty"`
	SubjectName              string     `json:"subject_name"`
	AttendanceDate           time.Time  `json:"attendance_date"`
	AttendanceCheckInTime    time.Time  `json:"attendance_check_in_time"`
	AttendanceCheckInMethod  string     `json:"attendance_check_in_method"`
	AttendanceIsGuest        bool       `json:"attendance_is_guest"`
	AttendanceKioskSessionID *uuid.UUID `json:"attendance_kiosk_session_id,omitempty"`
}
