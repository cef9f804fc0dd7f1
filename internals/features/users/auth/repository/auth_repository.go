package repository

import (
	"context"
	"time"

	churchModel "gerejaku_backend/internals/features/churches/churches/model"
	authModel "gerejaku_backend/internals/features/users/auth/model"
	userModel "gerejaku_backend/internals/features/users/users/model"
	helper "gerejaku_backend/internals/helpers"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthRepository interface {
	FindUserByEmail(ctx context.Context, email string) (*userModel.UserModel, error)
	FindUserByGoogleID(ctx context.Context, googleID string) (*userModel.UserModel, error)
	FindUserByID(ctx context.Context, userID uuid.UUID) (*userModel.UserModel, error)
	FindChurch(ctx context.Context, churchID uuid.UUID) (*churchModel.ChurchModel, error)
	EmailTaken(ctx context.Context, email string) (bool, error)

	// CreateChurchWithOwner inserts both rows in one transaction; the church slug
	// is made unique first.
	CreateChurchWithOwner(ctx context.Context, church *churchModel.ChurchModel, owner *userModel.UserModel) error
	LinkGoogleID(ctx context.Context, userID uuid.UUID, googleID string) error
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error

	CreateRefreshToken(ctx context.Context, rt *authModel.RefreshTokenModel) error
	FindRefreshToken(ctx context.Context, hash []byte) (*authModel.RefreshTokenModel, error)
	RevokeRefreshToken(ctx context.Context, id uuid.UUID, at time.Time) error
	RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID, at time.Time) error
	PurgeRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}

type gormAuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &gormAuthRepository{db: db}
}

/* ====================== USER ====================== */

func (r *gormAuthRepository) FindUserByEmail(ctx context.Context, email string) (*userModel.UserModel, error) {
	var u userModel.UserModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(user_email) = ?", userModel.NormalizeEmail(email)).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormAuthRepository) FindUserByGoogleID(ctx context.Context, googleID string) (*userModel.UserModel, error) {
	var u userModel.UserModel
	if err := r.db.WithContext(ctx).Where("user_google_id = ?", googleID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormAuthRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*userModel.UserModel, error) {
	var u userModel.UserModel
	if err := r.db.WithContext(ctx).First(&u, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormAuthRepository) FindChurch(ctx context.Context, churchID uuid.UUID) (*churchModel.ChurchModel, error) {
	var ch churchModel.ChurchModel
	if err := r.db.WithContext(ctx).First(&ch, "church_id = ?", churchID).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *gormAuthRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&userModel.UserModel{}).
		Where("LOWER(user_email) = ?", userModel.NormalizeEmail(email)).
		Count(&total).Error
	return total > 0, err
}

func (r *gormAuthRepository) CreateChurchWithOwner(ctx context.Context, church *churchModel.ChurchModel, owner *userModel.UserModel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		live := tx.Model(&churchModel.ChurchModel{})
		slug, err := helper.UniqueSlug(ctx, live, "church_slug", church.ChurchSlug, 120)
		if err != nil {
			return err
		}
		church.ChurchSlug = slug
		if err := tx.Create(church).Error; err != nil {
			return err
		}
		owner.UserChurchID = church.ChurchID
		return tx.Create(owner).Error
	})
}

func (r *gormAuthRepository) LinkGoogleID(ctx context.Context, userID uuid.UUID, googleID string) error {
	return r.db.WithContext(ctx).
		Model(&userModel.UserModel{}).
		Where("user_id = ? AND user_google_id IS NULL", userID).
		Update("user_google_id", googleID).Error
}

func (r *gormAuthRepository) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&userModel.UserModel{}).
		Where("user_id = ?", userID).
		UpdateColumn("user_last_login_at", at).Error
}

func (r *gormAuthRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&userModel.UserModel{}).
		Where("user_id = ?", userID).
		Update("user_password", hash).Error
}

/* ====================== REFRESH TOKEN ====================== */

func (r *gormAuthRepository) CreateRefreshToken(ctx context.Context, rt *authModel.RefreshTokenModel) error {
	return r.db.WithContext(ctx).Create(rt).Error
}

func (r *gormAuthRepository) FindRefreshToken(ctx context.Context, hash []byte) (*authModel.RefreshTokenModel, error) {
	var rt authModel.RefreshTokenModel
	if err := r.db.WithContext(ctx).Where("token = ?", hash).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *gormAuthRepository) RevokeRefreshToken(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&authModel.RefreshTokenModel{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
}

func (r *gormAuthRepository) RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&authModel.RefreshTokenModel{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", at).Error
}

// PurgeRefreshTokens hard-deletes tokens that expired or were revoked before the cutoff.
func (r *gormAuthRepository) PurgeRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR revoked_at < ?", before, before).
		Delete(&authModel.RefreshTokenModel{})
	return res.RowsAffected, res.Error
}
