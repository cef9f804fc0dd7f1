package helper

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	userID, churchID := uuid.New(), uuid.New()
	raw, exp, err := SignAccessToken("s3cret", userID, churchID, "admin", time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry %v is not in the future", exp)
	}

	claims, err := ParseAccessToken("s3cret", raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != userID.String() || claims.ChurchID != churchID.String() || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokensDoNotCrossOver(t *testing.T) {
	userID, churchID, sessionID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	access, _, _ := SignAccessToken("admin-secret", userID, churchID, "owner", now, time.Hour)
	refresh, _, _ := SignRefreshToken("admin-secret", userID, now, time.Hour)
	kiosk, _ := SignKioskToken("kiosk-secret", sessionID, churchID, now, now.Add(time.Hour))
	kioskSameSecret, _ := SignKioskToken("admin-secret", sessionID, churchID, now, now.Add(time.Hour))

	tests := []struct {
		name  string
		parse func() error
	}{
		{"kiosk token as access", func() error { _, err := ParseAccessToken("kiosk-secret", kiosk); return err }},
		{"kiosk typ rejected even with admin secret", func() error { _, err := ParseAccessToken("admin-secret", kioskSameSecret); return err }},
		{"refresh token as access", func() error { _, err := ParseAccessToken("admin-secret", refresh); return err }},
		{"access token as kiosk", func() error { _, err := ParseKioskToken("admin-secret", access); return err }},
		{"access token as refresh", func() error { _, err := ParseRefreshToken("admin-secret", access); return err }},
		{"wrong secret", func() error { _, err := ParseAccessToken("other", access); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.parse(); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestExpiredTokensAreRejected(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	access, _, _ := SignAccessToken("s", uuid.New(), uuid.New(), "staff", past, time.Hour)
	if _, err := ParseAccessToken("s", access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired access token accepted: %v", err)
	}
	kiosk, _ := SignKioskToken("k", uuid.New(), uuid.New(), past, past.Add(time.Hour))
	if _, err := ParseKioskToken("k", kiosk); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired kiosk token accepted: %v", err)
	}
}

func TestSigningNeedsSecret(t *testing.T) {
	if _, _, err := SignAccessToken("", uuid.New(), uuid.New(), "owner", time.Now(), time.Hour); err == nil {
		t.Errorf("access token signed without a secret")
	}
	if _, err := SignKioskToken("", uuid.New(), uuid.New(), time.Now(), time.Now().Add(time.Hour)); err == nil {
		t.Errorf("kiosk token signed without a secret")
	}
}
