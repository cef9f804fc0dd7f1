package route

import (
	"gerejaku_backend/internals/features/events/events/controller"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	middleware "gerejaku_backend/internals/middlewares/features"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func EventAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewEventController(db)
	view := middleware.RequireCapability(helperAuth.CapViewData)
	manage := middleware.RequireCapability(helperAuth.CapManageEvents)

	g := r.Group("/events")
	g.Get("/", view, ctrl.ListEvents)
	g.Get("/:id", view, ctrl.GetEvent)
	g.Post("/", manage, ctrl.CreateEvent)
	g.Patch("/:id", manage, ctrl.UpdateEvent)
	g.Delete("/:id", manage, ctrl.DeleteEvent)
}
