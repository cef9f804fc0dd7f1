package details

import (
	churchRoute "gerejaku_backend/internals/features/churches/churches/route"
	kioskRoute "gerejaku_backend/internals/features/churches/kiosk/route"
	providerRoute "gerejaku_backend/internals/features/churches/providers/route"
	subscriptionRoute "gerejaku_backend/internals/features/subscriptions/subscriptions/route"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ChurchPublicRoutes(r fiber.Router, db *gorm.DB) {
	// Midtrans calls this without a token; the signature is the credential
	subscriptionRoute.SubscriptionPublicRoutes(r, db)
}

func ChurchAdminRoutes(r fiber.Router, db *gorm.DB) {
	churchRoute.ChurchAdminRoutes(r, db)
	kioskRoute.KioskAdminRoutes(r, db)
	providerRoute.ProviderAdminRoutes(r, db)
	subscriptionRoute.SubscriptionAdminRoutes(r, db)
}

func ChurchKioskRoutes(r fiber.Router, db *gorm.DB) {
	kioskRoute.KioskDeviceRoutes(r, db)
}
