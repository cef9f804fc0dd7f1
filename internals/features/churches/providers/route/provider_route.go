package route

import (
	"gerejaku_backend/internals/constants"
	"gerejaku_backend/internals/features/churches/providers/controller"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	middleware "gerejaku_backend/internals/middlewares/features"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ProviderAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewProviderController(db)
	manage := middleware.RequireCapability(helperAuth.CapManageProviders)

	g := r.Group("/providers")
	g.Get("/", manage, ctrl.ListProviders)
	g.Put("/:channel", manage, ctrl.UpsertProvider)
	g.Post("/:channel/test", manage, middleware.RequireFeature(constants.FeatureFollowUpMessaging), ctrl.TestProvider)
}
