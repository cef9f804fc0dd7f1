package route

import (
	"gerejaku_backend/internals/constants"
	"gerejaku_backend/internals/features/events/external_checkin/controller"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	"gerejaku_backend/internals/middlewares"
	middleware "gerejaku_backend/internals/middlewares/features"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ExternalCheckinAdminRoutes expects a church-scoped router.
func ExternalCheckinAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewExternalCheckinController(db)
	manage := middleware.RequireCapability(helperAuth.CapManageExternalCheck)

	r.Get("/events/:eventId/external-checkin", manage, ctrl.AdminRead)
	// disabling stays allowed after a downgrade so live links can be revoked
	r.Post("/events/:eventId/external-checkin/toggle", manage,
		middleware.RequireFeatureWhen(constants.FeatureExternalCheckIn, controller.Enabling), ctrl.Toggle)
}

// ExternalCheckinPublicRoutes needs no credential; the link token scopes every call.
func ExternalCheckinPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewExternalCheckinController(db)

	g := r.Group("/external-checkin")
	g.Get("/event/:eventUrl", ctrl.Lookup)
	g.Post("/checkin/:eventUrl", middlewares.ExternalCheckinRateLimiter(), ctrl.Submit)
	g.Post("/members", ctrl.Members)
	g.Post("/search", ctrl.Members)
}
