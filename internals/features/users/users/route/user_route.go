package route

import (
	"gerejaku_backend/internals/features/users/users/controller"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	middleware "gerejaku_backend/internals/middlewares/features"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserAdminRoutes mounts staff account management under an already church-scoped router.
func UserAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAdminUserController(db)
	manage := middleware.RequireCapability(helperAuth.CapManageUsers)

	g := r.Group("/users")
	g.Get("/", manage, ctrl.ListUsers)
	g.Get("/:id", manage, ctrl.GetUser)
	g.Post("/", manage, ctrl.CreateUser)
	g.Patch("/:id", manage, ctrl.UpdateUser)
	g.Delete("/:id", manage, ctrl.DeleteUser)
}
