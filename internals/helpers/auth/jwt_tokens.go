package helper

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeKiosk   = "kiosk"
)

var ErrInvalidToken = errors.New("invalid token")

// AccessClaims is the admin session credential.
type AccessClaims struct {
	Type     string `json:"typ"`
	ChurchID string `json:"church_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// KioskClaims is the self-check-in capability credential. It is signed with a
// separate secret and carries no role, so admin middleware never accepts it.
type KioskClaims struct {
	Type      string `json:"typ"`
	ChurchID  string `json:"church_id"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

func SignAccessToken(secret string, userID, churchID uuid.UUID, role string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("jwt secret not configured")
	}
	exp := now.Add(ttl)
	claims := AccessClaims{
		Type:     TokenTypeAccess,
		ChurchID: churchID.String(),
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return s, exp, err
}

func SignRefreshToken(secret string, userID uuid.UUID, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("refresh secret not configured")
	}
	exp := now.Add(ttl)
	claims := RefreshClaims{
		Type: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return s, exp, err
}

// SignKioskToken binds a capability to one kiosk session; it expires with the session.
func SignKioskToken(secret string, sessionID, churchID uuid.UUID, issuedAt, expiresAt time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("kiosk secret not configured")
	}
	claims := KioskClaims{
		Type:      TokenTypeKiosk,
		ChurchID:  churchID.String(),
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func hmacKey(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}
}

// ParseAccessToken verifies signature, expiry and typ=access.
func ParseAccessToken(secret, raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, hmacKey(secret))
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.ChurchID); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func ParseRefreshToken(secret, raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, hmacKey(secret))
	if err != nil || !tok.Valid || claims.Type != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseKioskToken verifies signature, expiry and typ=kiosk.
func ParseKioskToken(secret, raw string) (*KioskClaims, error) {
	claims := &KioskClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, hmacKey(secret))
	if err != nil || !tok.Valid || claims.Type != TokenTypeKiosk {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.ChurchID); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
