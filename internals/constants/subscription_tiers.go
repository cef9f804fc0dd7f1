package constants

const (
	TierFree     = "free"
	TierStandard = "standard"
	TierPremium  = "premium"
)

type Feature string

const (
	FeatureKioskMode         Feature = "kiosk_mode"
	FeatureExternalCheckIn   Feature = "external_checkin"
	FeatureBiometricCheckIn  Feature = "biometric_checkin"
	FeatureReportsExport     Feature = "reports_export"
	FeatureFollowUpMessaging Feature = "follow_up_messaging"
	FeatureCustomBranding    Feature = "custom_branding"
)

var AllFeatures = []Feature{
	FeatureKioskMode,
	FeatureExternalCheckIn,
	FeatureBiometricCheckIn,
	FeatureReportsExport,
	FeatureFollowUpMessaging,
	FeatureCustomBranding,
}

var AllTiers = []string{TierFree, TierStandard, TierPremium}

var tierFeatures = map[string]map[Feature]bool{
	TierFree: {},
	TierStandard: {
		FeatureKioskMode:       true,
		FeatureExternalCheckIn: true,
		FeatureReportsExport:   true,
		FeatureCustomBranding:  true,
	},
	TierPremium: {
		FeatureKioskMode:         true,
		FeatureExternalCheckIn:   true,
		FeatureBiometricCheckIn:  true,
		FeatureReportsExport:     true,
		FeatureFollowUpMessaging: true,
		FeatureCustomBranding:    true,
	},
}

// HasFeature reports whether a subscription tier unlocks a feature. Unknown tiers unlock nothing.
func HasFeature(tier string, feature Feature) bool {
	return tierFeatures[tier][feature]
}

// FeatureMatrix lists every feature with its availability for tier.
func FeatureMatrix(tier string) map[Feature]bool {
	out := make(map[Feature]bool, len(AllFeatures))
	for _, f := range AllFeatures {
		out[f] = HasFeature(tier, f)
	}
	return out
}

// MaxAdminUsers is the seat limit per tier; 0 means unlimited.
func MaxAdminUsers(tier string) int {
	switch tier {
	case TierFree:
		return 2
	case TierStandard:
		return 10
	case TierPremium:
		return 0
	}
	return 1
}

func IsValidTier(tier string) bool {
	_, ok := tierFeatures[tier]
	return ok
}

// TierPrice is the monthly price in IDR for paid tiers.
func TierPrice(tier string) int64 {
	switch tier {
	case TierStandard:
		return 99000
	case TierPremium:
		return 249000
	}
	return 0
}
