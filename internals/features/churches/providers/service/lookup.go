package service

import (
	"context"
	"errors"

	"gerejaku_backend/internals/features/churches/providers/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FindActive loads the church's active provider for a channel, or ErrProviderMissing.
func FindActive(ctx context.Context, db *gorm.DB, churchID uuid.UUID, channel string) (*model.ProviderModel, error) {
	var p model.ProviderModel
	err := db.WithContext(ctx).
		Where("provider_church_id = ? AND provider_channel = ? AND provider_is_active = TRUE", churchID, channel).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProviderMissing
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
