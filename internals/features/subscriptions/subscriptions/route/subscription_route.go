package route

import (
	"gerejaku_backend/internals/features/subscriptions/subscriptions/controller"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	middleware "gerejaku_backend/internals/middlewares/features"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SubscriptionAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewSubscriptionController(db)

	g := r.Group("/subscriptions")
	g.Get("/", middleware.RequireCapability(helperAuth.CapViewData), ctrl.Overview)
	g.Post("/checkout", middleware.RequireCapability(helperAuth.CapManageBilling), ctrl.Checkout)
}

// SubscriptionPublicRoutes carries the payment gateway callback; it authenticates by signature.
func SubscriptionPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewSubscriptionController(db)
	r.Post("/subscriptions/notification", ctrl.Notification)
}
