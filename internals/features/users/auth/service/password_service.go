package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func (s *AuthService) hashPassword(plain string) (string, error) {
	cost := s.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// HashPassword is used where a password is set outside the auth flow (admin user invites).
func HashPassword(plain string) (string, error) {
	return (&AuthService{}).hashPassword(plain)
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// ChangePassword verifies the old password, stores the new hash and ends every
// other session by revoking the user's refresh tokens.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.Repo.FindUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserGone
	}
	if err != nil {
		return err
	}
	if !user.HasPassword() {
		return ErrNoPasswordOnRecord
	}
	if !CheckPassword(*user.UserPassword, oldPassword) {
		return ErrWrongPassword
	}
	if oldPassword == newPassword {
		return ErrSamePassword
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.Repo.RevokeUserRefreshTokens(ctx, userID, s.now())
}
