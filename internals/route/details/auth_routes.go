package details

import (
	authRoute "gerejaku_backend/internals/features/users/auth/route"
	userRoute "gerejaku_backend/internals/features/users/users/route"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func AuthRoutes(app *fiber.App, db *gorm.DB) {
	authRoute.AuthRoutes(app, db)
}

// UserAdminRoutes: staff accounts of the caller's church.
func UserAdminRoutes(r fiber.Router, db *gorm.DB) {
	userRoute.UserAdminRoutes(r, db)
}
