package churches

import (
	"testing"

	"gerejaku_backend/internals/constants"
)

func TestEmbeddedDemoSeedIsConsistent(t *testing.T) {
	seed, err := ParseDemoSeed(DemoData)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !constants.IsValidTier(seed.Church.Tier) {
		t.Errorf("tier %q is not a valid tier", seed.Church.Tier)
	}
	owners := 0
	for _, u := range seed.Users {
		if !constants.IsValidRole(u.Role) {
			t.Errorf("user %s has invalid role %q", u.Email, u.Role)
		}
		if len(u.Password) < 8 {
			t.Errorf("user %s password shorter than the login minimum", u.Email)
		}
		if u.Role == constants.RoleOwner {
			owners++
		}
	}
	if owners != 1 {
		t.Errorf("demo church has %d owners, want 1", owners)
	}
	if limit := constants.MaxAdminUsers(seed.Church.Tier); limit > 0 && len(seed.Users) > limit {
		t.Errorf("%d users exceed the %s seat limit", len(seed.Users), seed.Church.Tier)
	}
	for _, f := range seed.Families {
		if f.Head.FirstName == "" {
			t.Errorf("family head without a first name")
		}
	}
}

func TestParseDemoSeedRequiresChurch(t *testing.T) {
	if _, err := ParseDemoSeed([]byte(`{"church":{"name":""}}`)); err == nil {
		t.Fatalf("expected an error for a seed without church identity")
	}
	if _, err := ParseDemoSeed([]byte(`not json`)); err == nil {
		t.Fatalf("expected a decode error")
	}
}
