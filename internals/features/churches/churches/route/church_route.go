package route

import (
	"gerejaku_backend/internals/constants"
	"gerejaku_backend/internals/features/churches/churches/controller"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	middleware "gerejaku_backend/internals/middlewares/features"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ChurchAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewChurchController(db)
	brand := middleware.RequireCapability(helperAuth.CapManageBranding)

	g := r.Group("/churches")
	g.Get("/profile", middleware.RequireCapability(helperAuth.CapViewData), ctrl.GetProfile)
	g.Patch("/branding", brand, ctrl.UpdateBranding)
	g.Post("/branding/logo", brand, middleware.RequireFeature(constants.FeatureCustomBranding), ctrl.UploadLogo)
}
