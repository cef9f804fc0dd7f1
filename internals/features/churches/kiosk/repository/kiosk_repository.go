package repository

import (
	"context"
	"time"

	churchModel "gerejaku_backend/internals/features/churches/churches/model"
	"gerejaku_backend/internals/features/churches/kiosk/model"
	eventModel "gerejaku_backend/internals/features/events/events/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KioskRepository is the storage behind the kiosk session manager.
// Finders return gorm.ErrRecordNotFound on a miss.
type KioskRepository interface {
	FindChurch(ctx context.Context, churchID uuid.UUID) (*churchModel.ChurchModel, error)
	ActiveEventIDs(ctx context.Context, churchID uuid.UUID) ([]uuid.UUID, error)
	ListEvents(ctx context.Context, churchID uuid.UUID, ids []uuid.UUID) ([]eventModel.EventModel, error)

	FindOpen(ctx context.Context, churchID uuid.UUID) (*model.KioskSessionModel, error)
	FindByID(ctx context.Context, sessionID uuid.UUID) (*model.KioskSessionModel, error)

	// StartReplacing ends any open session of the church with end_reason=replaced
	// and inserts s, atomically. It returns the replaced session, if any.
	StartReplacing(ctx context.Context, s *model.KioskSessionModel) (*model.KioskSessionModel, error)
	UpdateExpiry(ctx context.Context, sessionID uuid.UUID, expiresAt time.Time) error
	// Close ends the session if still open; false means it was already closed.
	Close(ctx context.Context, sessionID uuid.UUID, reason string, at time.Time) (bool, error)
	UpdateSettings(ctx context.Context, churchID uuid.UUID, enabled bool, timeoutMinutes int) error
	PruneClosedBefore(ctx context.Context, before time.Time) (int64, error)
}

type gormKioskRepository struct {
	db *gorm.DB
}

func NewKioskRepository(db *gorm.DB) KioskRepository {
	return &gormKioskRepository{db: db}
}

func (r *gormKioskRepository) FindChurch(ctx context.Context, churchID uuid.UUID) (*churchModel.ChurchModel, error) {
	var ch churchModel.ChurchModel
	if err := r.db.WithContext(ctx).
		Where("church_id = ?", churchID).
		First(&ch).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *gormKioskRepository) ActiveEventIDs(ctx context.Context, churchID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&eventModel.EventModel{}).
		Where("event_church_id = ? AND event_is_active = TRUE", churchID).
		Order("event_name ASC").
		Pluck("event_id", &ids).Error
	return ids, err
}

func (r *gormKioskRepository) ListEvents(ctx context.Context, churchID uuid.UUID, ids []uuid.UUID) ([]eventModel.EventModel, error) {
	var rows []eventModel.EventModel
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("event_church_id = ? AND event_id IN ?", churchID, ids).
		Order("event_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *gormKioskRepository) FindOpen(ctx context.Context, churchID uuid.UUID) (*model.KioskSessionModel, error) {
	var s model.KioskSessionModel
	if err := r.db.WithContext(ctx).
		Where("kiosk_session_church_id = ? AND kiosk_session_ended_at IS NULL", churchID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *gormKioskRepository) FindByID(ctx context.Context, sessionID uuid.UUID) (*model.KioskSessionModel, error) {
	var s model.KioskSessionModel
	if err := r.db.WithContext(ctx).
		Where("kiosk_session_id = ?", sessionID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *gormKioskRepository) StartReplacing(ctx context.Context, s *model.KioskSessionModel) (*model.KioskSessionModel, error) {
	var replaced *model.KioskSessionModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open []model.KioskSessionModel
		if err := tx.Raw(`
			SELECT * FROM kiosk_sessions
			WHERE kiosk_session_church_id = ? AND kiosk_session_ended_at IS NULL
			FOR UPDATE`, s.KioskSessionChurchID).
			Scan(&open).Error; err != nil {
			return err
		}
		for i := range open {
			if err := tx.Model(&model.KioskSessionModel{}).
				Where("kiosk_session_id = ?", open[i].KioskSessionID).
				Updates(map[string]any{
					"kiosk_session_ended_at":   s.KioskSessionStartedAt,
					"kiosk_session_end_reason": model.EndReasonReplaced,
				}).Error; err != nil {
				return err
			}
			replaced = &open[i]
		}
		return tx.Create(s).Error
	})
	if err != nil {
		return nil, err
	}
	return replaced, nil
}

func (r *gormKioskRepository) UpdateExpiry(ctx context.Context, sessionID uuid.UUID, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.KioskSessionModel{}).
		Where("kiosk_session_id = ? AND kiosk_session_ended_at IS NULL", sessionID).
		Update("kiosk_session_expires_at", expiresAt).Error
}

func (r *gormKioskRepository) Close(ctx context.Context, sessionID uuid.UUID, reason string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.KioskSessionModel{}).
		Where("kiosk_session_id = ? AND kiosk_session_ended_at IS NULL", sessionID).
		Updates(map[string]any{
			"kiosk_session_ended_at":   at,
			"kiosk_session_end_reason": reason,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *gormKioskRepository) UpdateSettings(ctx context.Context, churchID uuid.UUID, enabled bool, timeoutMinutes int) error {
	return r.db.WithContext(ctx).
		Model(&churchModel.ChurchModel{}).
		Where("church_id = ?", churchID).
		Updates(map[string]any{
			"church_kiosk_mode_enabled":    enabled,
			"church_kiosk_session_timeout": timeoutMinutes,
		}).Error
}

// PruneClosedBefore removes sessions closed before the cutoff. Attendance rows
// keep their kiosk_session_id only as a soft reference (ON DELETE SET NULL).
func (r *gormKioskRepository) PruneClosedBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("kiosk_session_ended_at IS NOT NULL AND kiosk_session_ended_at < ?", before).
		Delete(&model.KioskSessionModel{})
	return res.RowsAffected, res.Error
}
