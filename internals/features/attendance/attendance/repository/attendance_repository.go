package repository

import (
	"context"
	"time"

	attModel "gerejaku_backend/internals/features/attendance/attendance/model"
	eventModel "gerejaku_backend/internals/features/events/events/model"
	memberModel "gerejaku_backend/internals/features/members/members/model"
	visitorModel "gerejaku_backend/internals/features/members/visitors/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttendanceRepository is the storage the check-in engine needs. Lookups are
// always tenant-scoped and return gorm.ErrRecordNotFound on a miss.
type AttendanceRepository interface {
	FindEvent(ctx context.Context, churchID, eventID uuid.UUID) (*eventModel.EventModel, error)
	FindMember(ctx context.Context, churchID, memberID uuid.UUID) (*memberModel.MemberModel, error)
	FindMemberByBiometric(ctx context.Context, churchID uuid.UUID, biometricID string) (*memberModel.MemberModel, error)
	FindVisitor(ctx context.Context, churchID, visitorID uuid.UUID) (*visitorModel.VisitorModel, error)
	FindFamily(ctx context.Context, churchID, parentID uuid.UUID) ([]memberModel.MemberModel, error)
	ExistsMember(ctx context.Context, memberID, eventID uuid.UUID, day time.Time) (bool, error)
	ExistsVisitor(ctx context.Context, visitorID, eventID uuid.UUID, day time.Time) (bool, error)
	Insert(ctx context.Context, rec *attModel.AttendanceModel) error
}

type gormAttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &gormAttendanceRepository{db: db}
}

func (r *gormAttendanceRepository) FindEvent(ctx context.Context, churchID, eventID uuid.UUID) (*eventModel.EventModel, error) {
	var ev eventModel.EventModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ? AND event_church_id = ?", eventID, churchID).
		First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *gormAttendanceRepository) FindMember(ctx context.Context, churchID, memberID uuid.UUID) (*memberModel.MemberModel, error) {
	var m memberModel.MemberModel
	if err := r.db.WithContext(ctx).
		Where("member_id = ? AND member_church_id = ?", memberID, churchID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormAttendanceRepository) FindMemberByBiometric(ctx context.Context, churchID uuid.UUID, biometricID string) (*memberModel.MemberModel, error) {
	var m memberModel.MemberModel
	if err := r.db.WithContext(ctx).
		Where("member_church_id = ? AND member_biometric_id = ?", churchID, biometricID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormAttendanceRepository) FindVisitor(ctx context.Context, churchID, visitorID uuid.UUID) (*visitorModel.VisitorModel, error) {
	var v visitorModel.VisitorModel
	if err := r.db.WithContext(ctx).
		Where("visitor_id = ? AND visitor_church_id = ?", visitorID, churchID).
		First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// FindFamily returns the parent followed by their children.
func (r *gormAttendanceRepository) FindFamily(ctx context.Context, churchID, parentID uuid.UUID) ([]memberModel.MemberModel, error) {
	var rows []memberModel.MemberModel
	err := r.db.WithContext(ctx).
		Where("member_church_id = ? AND (member_id = ? OR member_parent_id = ?)", churchID, parentID, parentID).
		Order("member_parent_id NULLS FIRST, member_first_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *gormAttendanceRepository) ExistsMember(ctx context.Context, memberID, eventID uuid.UUID, day time.Time) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).Raw(`
		SELECT EXISTS (
		  SELECT 1 FROM attendance_records
		  WHERE attendance_member_id = ? AND attendance_event_id = ? AND attendance_date = ?
		)`, memberID, eventID, day.Format("2006-01-02")).Scan(&exists).Error
	return exists, err
}

func (r *gormAttendanceRepository) ExistsVisitor(ctx context.Context, visitorID, eventID uuid.UUID, day time.Time) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).Raw(`
		SELECT EXISTS (
		  SELECT 1 FROM attendance_records
		  WHERE attendance_visitor_id = ? AND attendance_event_id = ? AND attendance_date = ?
		)`, visitorID, eventID, day.Format("2006-01-02")).Scan(&exists).Error
	return exists, err
}

func (r *gormAttendanceRepository) Insert(ctx context.Context, rec *attModel.AttendanceModel) error {
	return r.db.WithContext(ctx).Create(rec).Error
}
