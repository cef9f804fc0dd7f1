package dto

import (
	"errors"
	"testing"
)

func sp(s string) *string { return &s }

func TestBrandingToUpdates(t *testing.T) {
	tests := []struct {
		name    string
		req     BrandingRequest
		wantErr error
		check   func(t *testing.T, u map[string]any)
	}{
		{
			name: "color upper-cased",
			req:  BrandingRequest{BrandColor: sp("#1e3a8a")},
			check: func(t *testing.T, u map[string]any) {
				if u["church_brand_color"] != "#1E3A8A" {
					t.Fatalf("color = %v", u["church_brand_color"])
				}
			},
		},
		{name: "short color", req: BrandingRequest{BrandColor: sp("#fff")}, wantErr: ErrBrandColor},
		{name: "named color", req: BrandingRequest{BrandColor: sp("blue")}, wantErr: ErrBrandColor},
		{name: "blank name", req: BrandingRequest{Name: sp("   ")}, wantErr: ErrEmptyName},
		{name: "bad timezone", req: BrandingRequest{Timezone: sp("Mars/Olympus")}, wantErr: ErrTimezone},
		{
			name: "utc timezone",
			req:  BrandingRequest{Timezone: sp("UTC")},
			check: func(t *testing.T, u map[string]any) {
				if u["church_timezone"] != "UTC" {
					t.Fatalf("tz = %v", u["church_timezone"])
				}
			},
		},
		{
			name: "blank welcome clears it",
			req:  BrandingRequest{WelcomeMessage: sp("  ")},
			check: func(t *testing.T, u map[string]any) {
				v, ok := u["church_welcome_message"]
				if !ok || v != nil {
					t.Fatalf("welcome = %v (present %v)", v, ok)
				}
			},
		},
		{
			name: "empty request",
			req:  BrandingRequest{},
			check: func(t *testing.T, u map[string]any) {
				if len(u) != 0 {
					t.Fatalf("updates = %v", u)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := tt.req.ToUpdates()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			tt.check(t, u)
		})
	}
}

func TestTouchesBranding(t *testing.T) {
	if (&BrandingRequest{Name: sp("x"), Timezone: sp("UTC")}).TouchesBranding() {
		t.Fatal("name and timezone are not paid branding")
	}
	if !(&BrandingRequest{BrandColor: sp("#000000")}).TouchesBranding() {
		t.Fatal("brand color is paid branding")
	}
}
