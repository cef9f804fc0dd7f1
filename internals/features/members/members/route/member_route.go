package route

import (
	"gerejaku_backend/internals/constants"
	"gerejaku_backend/internals/features/members/members/controller"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	middleware "gerejaku_backend/internals/middlewares/features"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func MemberAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewMemberController(db)
	view := middleware.RequireCapability(helperAuth.CapViewData)
	manage := middleware.RequireCapability(helperAuth.CapManageMembers)

	g := r.Group("/members")
	g.Get("/", view, ctrl.ListMembers)
	g.Get("/:id", view, ctrl.GetMember)
	g.Get("/:id/family", view, ctrl.GetFamily)

	g.Post("/", manage, ctrl.CreateMember)
	g.Patch("/:id", manage, ctrl.UpdateMember)
	g.Delete("/:id", manage, ctrl.DeleteMember)
	g.Put("/:id/parent", manage, ctrl.SetParent)
	g.Put("/:id/biometric", manage, middleware.RequireFeature(constants.FeatureBiometricCheckIn), ctrl.SetBiometric)
}
