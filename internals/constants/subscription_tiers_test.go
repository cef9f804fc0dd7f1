package constants

import "testing"

func TestHasFeature(t *testing.T) {
	tests := []struct {
		tier    string
		feature Feature
		want    bool
	}{
		{TierFree, FeatureKioskMode, false},
		{TierFree, FeatureCustomBranding, false},
		{TierStandard, FeatureKioskMode, true},
		{TierStandard, FeatureExternalCheckIn, true},
		{TierStandard, FeatureBiometricCheckIn, false},
		{TierStandard, FeatureFollowUpMessaging, false},
		{TierPremium, FeatureBiometricCheckIn, true},
		{TierPremium, FeatureFollowUpMessaging, true},
		{"platinum", FeatureKioskMode, false},
	}
	for _, tt := range tests {
		if got := HasFeature(tt.tier, tt.feature); got != tt.want {
			t.Errorf("HasFeature(%s, %s) = %v, want %v", tt.tier, tt.feature, got, tt.want)
		}
	}
}

func TestFeatureMatrixListsEveryFeature(t *testing.T) {
	for _, tier := range AllTiers {
		m := FeatureMatrix(tier)
		if len(m) != len(AllFeatures) {
			t.Errorf("%s matrix has %d entries, want %d", tier, len(m), len(AllFeatures))
		}
	}
	// tiers only ever add features
	for _, f := range AllFeatures {
		if HasFeature(TierStandard, f) && !HasFeature(TierPremium, f) {
			t.Errorf("premium lacks %s", f)
		}
	}
}

func TestRoleRank(t *testing.T) {
	if !(RoleRank(RoleOwner) > RoleRank(RoleAdmin) &&
		RoleRank(RoleAdmin) > RoleRank(RoleStaff) &&
		RoleRank(RoleStaff) > RoleRank(RoleViewer) &&
		RoleRank(RoleViewer) > RoleRank("ghost")) {
		t.Fatalf("role ranks are not strictly ordered")
	}
}
