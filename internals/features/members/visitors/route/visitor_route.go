package route

import (
	"gerejaku_backend/internals/constants"
	"gerejaku_backend/internals/features/members/visitors/controller"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	middleware "gerejaku_backend/internals/middlewares/features"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func VisitorAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewVisitorController(db)
	view := middleware.RequireCapability(helperAuth.CapViewData)
	manage := middleware.RequireCapability(helperAuth.CapManageVisitors)

	g := r.Group("/visitors")
	g.Get("/", view, ctrl.ListVisitors)
	g.Get("/:id", view, ctrl.GetVisitor)
	g.Get("/:id/follow-ups", view, ctrl.ListFollowUps)

	g.Post("/", manage, ctrl.CreateVisitor)
	g.Patch("/:id", manage, ctrl.UpdateVisitor)
	g.Delete("/:id", manage, ctrl.DeleteVisitor)
	g.Patch("/:id/follow-up", manage, ctrl.AdvanceFollowUp)
	g.Post("/:id/convert", manage, middleware.RequireCapability(helperAuth.CapManageMembers), ctrl.ConvertVisitor)
	g.Post("/:id/follow-up/send",
		middleware.RequireCapability(helperAuth.CapSendFollowUp),
		middleware.RequireFeature(constants.FeatureFollowUpMessaging),
		ctrl.SendFollowUp,
	)
}
