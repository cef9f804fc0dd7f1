package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SummaryRow is one (day, event) bucket.
type SummaryRow struct {
	Date      time.Time `json:"date"`
	EventID   uuid.UUID `json:"event_id"`
	EventName string    `json:"event_name"`
	Total     int64     `json:"total"`
	Members   int64     `json:"members"`
	Guests    int64     `json:"guests"`
	Manual    int64     `json:"manual"`
	Biometric int64     `json:"biometric"`
	Family    int64     `json:"family"`
	External  int64     `json:"external"`
	Kiosk     int64     `json:"kiosk"`
}

type HistoryRow struct {
	AttendanceID uuid.UUID `json:"attendance_id"`
	Date         time.Time `json:"date"`
	CheckInTime  time.Time `json:"check_in_time"`
	Method       string    `json:"method"`
	EventID      uuid.UUID `json:"event_id"`
	EventName    string    `json:"event_name"`
}

// MemberActivity is an active member with their most recent attendance day.
type MemberActivity struct {
	MemberID     uuid.UUID
	FirstName    string
	Surname      string
	Phone        *string
	Email        *string
	JoinedAt     time.Time
	LastAttended *time.Time
}

type PendingVisitor struct {
	VisitorID      uuid.UUID `json:"visitor_id"`
	FirstName      string    `json:"first_name"`
	Surname        string    `json:"surname"`
	Phone          *string   `json:"phone,omitempty"`
	Email          *string   `json:"email,omitempty"`
	FirstVisitDate time.Time `json:"first_visit_date"`
}

type ExportRow struct {
	Date        time.Time
	CheckInTime time.Time
	EventName   string
	SubjectName string
	SubjectKind string
	Method      string
	IsGuest     bool
	Phone       *string
	Email       *string
}

type ReportRepository interface {
	AttendanceSummary(ctx context.Context, churchID uuid.UUID, from, to time.Time, eventID *uuid.UUID) ([]SummaryRow, error)
	MemberExists(ctx context.Context, churchID, memberID uuid.UUID) (bool, error)
	MemberHistory(ctx context.Context, churchID, memberID uuid.UUID, limit int) ([]HistoryRow, error)
	MemberActivity(ctx context.Context, churchID uuid.UUID) ([]MemberActivity, error)
	PendingVisitors(ctx context.Context, churchID uuid.UUID) ([]PendingVisitor, error)
	ExportRows(ctx context.Context, churchID uuid.UUID, from, to time.Time) ([]ExportRow, error)
}

type gormReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &gormReportRepository{db: db}
}

func day(t time.Time) string { return t.Format("2006-01-02") }

func (r *gormReportRepository) AttendanceSummary(ctx context.Context, churchID uuid.UUID, from, to time.Time, eventID *uuid.UUID) ([]SummaryRow, error) {
	var rows []SummaryRow
	q := `
		SELECT a.attendance_date AS date,
		       e.event_id,
		       e.event_name,
		       COUNT(*)                                                         AS total,
		       COUNT(*) FILTER (WHERE a.attendance_member_id IS NOT NULL)       AS members,
		       COUNT(*) FILTER (WHERE a.attendance_is_guest)                    AS guests,
		       COUNT(*) FILTER (WHERE a.attendance_check_in_method = 'manual')    AS manual,
		       COUNT(*) FILTER (WHERE a.attendance_check_in_method = 'biometric') AS biometric,
		       COUNT(*) FILTER (WHERE a.attendance_check_in_method = 'family')    AS family,
		       COUNT(*) FILTER (WHERE a.attendance_check_in_method = 'external')  AS external,
		       COUNT(*) FILTER (WHERE a.attendance_check_in_method = 'kiosk')     AS kiosk
		FROM attendance_records a
		JOIN events e ON e.event_id = a.attendance_event_id
		WHERE a.attendance_church_id = ?
		  AND a.attendance_date BETWEEN ? AND ?`
	args := []any{churchID, day(from), day(to)}
	if eventID != nil {
		q += ` AND a.attendance_event_id = ?`
		args = append(args, *eventID)
	}
	q += `
		GROUP BY a.attendance_date, e.event_id, e.event_name
		ORDER BY a.attendance_date ASC, e.event_name ASC`
	err := r.db.WithContext(ctx).Raw(q, args...).Scan(&rows).Error
	return rows, err
}

func (r *gormReportRepository) MemberExists(ctx context.Context, churchID, memberID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).Raw(`
		SELECT EXISTS (
		  SELECT 1 FROM members
		  WHERE member_id = ? AND member_church_id = ? AND member_deleted_at IS NULL
		)`, memberID, churchID).Scan(&exists).Error
	return exists, err
}

func (r *gormReportRepository) MemberHistory(ctx context.Context, churchID, memberID uuid.UUID, limit int) ([]HistoryRow, error) {
	var rows []HistoryRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT a.attendance_id,
		       a.attendance_date          AS date,
		       a.attendance_check_in_time AS check_in_time,
		       a.attendance_check_in_method AS method,
		       e.event_id,
		       e.event_name
		FROM attendance_records a
		JOIN events e ON e.event_id = a.attendance_event_id
		WHERE a.attendance_church_id = ? AND a.attendance_member_id = ?
		ORDER BY a.attendance_date DESC, a.attendance_check_in_time DESC
		LIMIT ?`, churchID, memberID, limit).Scan(&rows).Error
	return rows, err
}

func (r *gormReportRepository) MemberActivity(ctx context.Context, churchID uuid.UUID) ([]MemberActivity, error) {
	var rows []MemberActivity
	err := r.db.WithContext(ctx).Raw(`
		SELECT m.member_id,
		       m.member_first_name AS first_name,
		       m.member_surname    AS surname,
		       m.member_phone      AS phone,
		       m.member_email      AS email,
		       m.member_joined_at  AS joined_at,
		       MAX(a.attendance_date) AS last_attended
		FROM members m
		LEFT JOIN attendance_records a ON a.attendance_member_id = m.member_id
		WHERE m.member_church_id = ?
		  AND m.member_status = 'active'
		  AND m.member_deleted_at IS NULL
		GROUP BY m.member_id`, churchID).Scan(&rows).Error
	return rows, err
}

func (r *gormReportRepository) PendingVisitors(ctx context.Context, churchID uuid.UUID) ([]PendingVisitor, error) {
	var rows []PendingVisitor
	err := r.db.WithContext(ctx).Raw(`
		SELECT visitor_id,
		       visitor_first_name       AS first_name,
		       visitor_surname          AS surname,
		       visitor_phone            AS phone,
		       visitor_email            AS email,
		       visitor_first_visit_date AS first_visit_date
		FROM visitors
		WHERE visitor_church_id = ?
		  AND visitor_follow_up_status = 'pending'
		  AND visitor_deleted_at IS NULL
		ORDER BY visitor_first_visit_date ASC`, churchID).Scan(&rows).Error
	return rows, err
}

func (r *gormReportRepository) ExportRows(ctx context.Context, churchID uuid.UUID, from, to time.Time) ([]ExportRow, error) {
	var rows []ExportRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT a.attendance_date          AS date,
		       a.attendance_check_in_time AS check_in_time,
		       e.event_name,
		       COALESCE(TRIM(m.member_first_name || ' ' || m.member_surname),
		                TRIM(v.visitor_first_name || ' ' || v.visitor_surname)) AS subject_name,
		       CASE WHEN a.attendance_member_id IS NOT NULL THEN 'member' ELSE 'visitor' END AS subject_kind,
		       a.attendance_check_in_method AS method,
		       a.attendance_is_guest        AS is_guest,
		       COALESCE(m.member_phone, v.visitor_phone) AS phone,
		       COALESCE(m.member_email, v.visitor_email) AS email
		FROM attendance_records a
		JOIN events e ON e.event_id = a.attendance_event_id
		LEFT JOIN members m  ON m.member_id  = a.attendance_member_id
		LEFT JOIN visitors v ON v.visitor_id = a.attendance_visitor_id
		WHERE a.attendance_church_id = ?
		  AND a.attendance_date BETWEEN ? AND ?
		ORDER BY a.attendance_date ASC, e.event_name ASC, a.attendance_check_in_time ASC`,
		churchID, day(from), day(to)).Scan(&rows).Error
	return rows, err
}
