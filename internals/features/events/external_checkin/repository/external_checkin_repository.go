package repository

import (
	"context"
	"strings"

	eventModel "gerejaku_backend/internals/features/events/events/model"
	memberModel "gerejaku_backend/internals/features/members/members/model"
	helper "gerejaku_backend/internals/helpers"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PublicEvent is an event joined with the branding its public page shows.
type PublicEvent struct {
	EventID          uuid.UUID
	EventChurchID    uuid.UUID
	EventName        string
	EventType        string
	EventLocation    *string
	ChurchName       string
	ChurchBrandColor string
	ChurchLogoURL    *string
	ChurchTimezone   string
}

type ExternalCheckinRepository interface {
	FindEvent(ctx context.Context, eventID uuid.UUID) (*eventModel.EventModel, error)
	// Enable writes enabled, url and pin in one UPDATE.
	Enable(ctx context.Context, eventID uuid.UUID, url, pin string) error
	Disable(ctx context.Context, eventID uuid.UUID) error

	// FindPublicByURL matches only enabled links of active events.
	FindPublicByURL(ctx context.Context, url string) (*PublicEvent, error)
	// FindPublicByURLAndPIN is the single compound predicate used to authenticate a submission.
	FindPublicByURLAndPIN(ctx context.Context, url, pin string) (*PublicEvent, error)

	SearchMembers(ctx context.Context, churchID uuid.UUID, search string, limit int) ([]memberModel.MemberModel, error)
	ListChildren(ctx context.Context, churchID uuid.UUID, parentIDs []uuid.UUID) ([]memberModel.MemberModel, error)
}

type gormExternalCheckinRepository struct {
	db *gorm.DB
}

func NewExternalCheckinRepository(db *gorm.DB) ExternalCheckinRepository {
	return &gormExternalCheckinRepository{db: db}
}

func (r *gormExternalCheckinRepository) FindEvent(ctx context.Context, eventID uuid.UUID) (*eventModel.EventModel, error) {
	var ev eventModel.EventModel
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *gormExternalCheckinRepository) Enable(ctx context.Context, eventID uuid.UUID, url, pin string) error {
	return r.db.WithContext(ctx).
		Model(&eventModel.EventModel{}).
		Where("event_id = ?", eventID).
		Updates(map[string]any{
			"event_external_checkin_enabled": true,
			"event_external_checkin_url":     url,
			"event_external_checkin_pin":     pin,
		}).Error
}

func (r *gormExternalCheckinRepository) Disable(ctx context.Context, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&eventModel.EventModel{}).
		Where("event_id = ?", eventID).
		Updates(map[string]any{
			"event_external_checkin_enabled": false,
			"event_external_checkin_url":     gorm.Expr("NULL"),
			"event_external_checkin_pin":     gorm.Expr("NULL"),
		}).Error
}

const publicEventSelect = `
	SELECT e.event_id, e.event_church_id, e.event_name, e.event_type, e.event_location,
	       c.church_name, c.church_brand_color, c.church_logo_url, c.church_timezone
	FROM events e
	JOIN churches c ON c.church_id = e.event_church_id AND c.church_deleted_at IS NULL
	WHERE e.event_external_checkin_url = ?
	  AND e.event_external_checkin_enabled = TRUE
	  AND e.event_is_active = TRUE
	  AND e.event_deleted_at IS NULL`

func (r *gormExternalCheckinRepository) scanPublic(ctx context.Context, query string, args ...any) (*PublicEvent, error) {
	var row PublicEvent
	res := r.db.WithContext(ctx).Raw(query+" LIMIT 1", args...).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *gormExternalCheckinRepository) FindPublicByURL(ctx context.Context, url string) (*PublicEvent, error) {
	return r.scanPublic(ctx, publicEventSelect, url)
}

func (r *gormExternalCheckinRepository) FindPublicByURLAndPIN(ctx context.Context, url, pin string) (*PublicEvent, error) {
	return r.scanPublic(ctx, publicEventSelect+" AND e.event_external_checkin_pin = ?", url, pin)
}

func (r *gormExternalCheckinRepository) SearchMembers(ctx context.Context, churchID uuid.UUID, search string, limit int) ([]memberModel.MemberModel, error) {
	q := r.db.WithContext(ctx).
		Where("member_church_id = ? AND member_status = ?", churchID, memberModel.MemberStatusActive)
	if s := strings.TrimSpace(search); s != "" {
		like := helper.ContainsPattern(s)
		q = q.Where(`(member_first_name ILIKE ? OR member_surname ILIKE ?
			OR member_phone ILIKE ? OR member_email ILIKE ?
			OR (member_first_name || ' ' || member_surname) ILIKE ?)`, like, like, like, like, like)
	}
	var rows []memberModel.MemberModel
	err := q.Order("member_first_name ASC, member_surname ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *gormExternalCheckinRepository) ListChildren(ctx context.Context, churchID uuid.UUID, parentIDs []uuid.UUID) ([]memberModel.MemberModel, error) {
	var rows []memberModel.MemberModel
	if len(parentIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("member_church_id = ? AND member_parent_id IN ? AND member_status = ?", churchID, parentIDs, memberModel.MemberStatusActive).
		Order("member_first_name ASC").
		Find(&rows).Error
	return rows, err
}
