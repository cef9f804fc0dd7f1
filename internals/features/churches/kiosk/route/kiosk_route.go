package route

import (
	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/constants"
	"gerejaku_backend/internals/features/churches/kiosk/controller"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	"gerejaku_backend/internals/middlewares"
	authMiddleware "gerejaku_backend/internals/middlewares/auth"
	middleware "gerejaku_backend/internals/middlewares/features"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// KioskAdminRoutes mounts settings and lifecycle under an already church-scoped router.
func KioskAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewKioskController(db)
	manage := middleware.RequireCapability(helperAuth.CapManageKiosk)
	feature := middleware.RequireFeature(constants.FeatureKioskMode)

	ch := r.Group("/churches")
	ch.Get("/kiosk-settings", middleware.RequireCapability(helperAuth.CapViewData), ctrl.GetSettings)
	ch.Patch("/kiosk-settings", manage, feature, ctrl.UpdateSettings)

	ch.Post("/kiosk-session/start", manage, feature, ctrl.Start)
	ch.Post("/kiosk-session/extend", manage, feature, ctrl.Extend)
	// ending is always allowed, even after a downgrade
	ch.Post("/kiosk-session/end", manage, ctrl.End)
}

// KioskDeviceRoutes is the kiosk capability surface: session status and check-in only.
func KioskDeviceRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewKioskController(db)

	k := r.Group("/kiosk", authMiddleware.KioskAuth(configs.KioskSecret))
	k.Get("/session", ctrl.Session)
	k.Post("/checkin", middlewares.KioskCheckinRateLimiter(), ctrl.CheckIn)
}
