package helper

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevokedAccessToken is a logged-out access token kept until it would have expired.
// Only the HMAC fingerprint is stored.
type RevokedAccessToken struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Token     string    `gorm:"column:token"`
	ExpiredAt time.Time `gorm:"column:expired_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (RevokedAccessToken) TableName() string { return "token_blacklist" }

func fingerprint(raw, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(raw))
	return hex.EncodeToString(m.Sum(nil))
}

// AddToBlacklist revokes an access token until expiresAt. Re-adding extends the row.
func AddToBlacklist(ctx context.Context, db *gorm.DB, raw, secret string, expiresAt time.Time) error {
	if db == nil || raw == "" || secret == "" {
		return nil
	}
	row := RevokedAccessToken{Token: fingerprint(raw, secret), ExpiredAt: expiresAt}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"expired_at"}),
	}).Create(&row).Error
}

func IsBlacklisted(ctx context.Context, db *gorm.DB, raw, secret string) (bool, error) {
	if db == nil || raw == "" || secret == "" {
		return false, nil
	}
	var n int64
	err := db.WithContext(ctx).Model(&RevokedAccessToken{}).
		Where("token = ? AND expired_at > NOW()", fingerprint(raw, secret)).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

// PurgeExpiredBlacklist drops rows whose token is no longer valid anyway.
func PurgeExpiredBlacklist(ctx context.Context, db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, nil
	}
	res := db.WithContext(ctx).Where("expired_at <= NOW()").Delete(&RevokedAccessToken{})
	return res.RowsAffected, res.Error
}
