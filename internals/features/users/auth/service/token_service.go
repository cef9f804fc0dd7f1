package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"strings"

	churchModel "gerejaku_backend/internals/features/churches/churches/model"
	userModel "gerejaku_backend/internals/features/users/users/model"
	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HashRefreshToken is the lookup key for a refresh token row.
func HashRefreshToken(token, secret string) []byte {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(token))
	return m.Sum(nil)
}

func (s *AuthService) issueSession(ctx context.Context, user *userModel.UserModel, church *churchModel.ChurchModel, meta ClientMeta) (*Session, error) {
	if strings.TrimSpace(s.AccessSecret) == "" || strings.TrimSpace(s.RefreshSecret) == "" {
		return nil, ErrSecretsMissing
	}
	now := s.now()

	access, accessExp, err := helperAuth.SignAccessToken(s.AccessSecret, user.UserID, church.ChurchID, user.UserRole, now, s.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := helperAuth.SignRefreshToken(s.RefreshSecret, user.UserID, now, s.RefreshTTL)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		User:             user,
		Church:           church,
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}
	if err := s.Repo.CreateRefreshToken(ctx, newRefreshRow(s, sess, meta)); err != nil {
		return nil, err
	}
	return sess, nil
}

/* ==========================
   REFRESH (rotation)
========================== */

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked; presenting a revoked token again revokes every session of that user.
func (s *AuthService) Refresh(ctx context.Context, raw string, meta ClientMeta) (*Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrRefreshInvalid
	}
	claims, err := helperAuth.ParseRefreshToken(s.RefreshSecret, raw)
	if err != nil {
		return nil, ErrRefreshInvalid
	}
	userID, _ := uuid.Parse(claims.Subject)

	row, err := s.Repo.FindRefreshToken(ctx, HashRefreshToken(raw, s.RefreshSecret))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	now := s.now()
	if row.UserID != userID {
		return nil, ErrRefreshInvalid
	}
	if row.RevokedAt != nil {
		if err := s.Repo.RevokeUserRefreshTokens(ctx, userID, now); err != nil {
			return nil, err
		}
		return nil, ErrRefreshInvalid
	}
	if !row.Usable(now) {
		return nil, ErrRefreshInvalid
	}
	if err := s.Repo.RevokeRefreshToken(ctx, row.ID, now); err != nil {
		return nil, err
	}

	user, err := s.Repo.FindUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if !user.UserIsActive {
		return nil, ErrAccountDisabled
	}
	church, err := s.Repo.FindChurch(ctx, user.UserChurchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChurchGone
	}
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user, church, meta)
}

// RevokeRefresh is the logout half for refresh tokens. Unknown tokens are ignored.
func (s *AuthService) RevokeRefresh(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	row, err := s.Repo.FindRefreshToken(ctx, HashRefreshToken(raw, s.RefreshSecret))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.Repo.RevokeRefreshToken(ctx, row.ID, s.now())
}
