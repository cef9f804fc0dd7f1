package route

import (
	"gerejaku_backend/internals/features/users/auth/controller"
	"gerejaku_backend/internals/middlewares"
	authMiddleware "gerejaku_backend/internals/middlewares/auth"
	middleware "gerejaku_backend/internals/middlewares/features"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthRoutes mounts /api/auth. Sign-in endpoints are public and rate limited;
// the rest need a live admin session.
func AuthRoutes(app *fiber.App, db *gorm.DB) {
	ctrl := controller.NewAuthController(db)

	base := app.Group("/api/auth")

	// 🔓 public
	base.Post("/register-church", middlewares.RegisterRateLimiter(), ctrl.RegisterChurch)
	base.Post("/login", middlewares.LoginRateLimiter(), ctrl.Login)
	base.Post("/login-google", middlewares.LoginRateLimiter(), ctrl.LoginGoogle)
	base.Post("/refresh-token", ctrl.RefreshToken)
	base.Post("/logout", ctrl.Logout)

	// 🔒 protected
	jwt := authMiddleware.AdminAuth(db)
	scope := middleware.UseChurchScope(middleware.NewGormScopeLoader(db))

	base.Get("/me", jwt, scope, ctrl.Me)
	base.Post("/change-password", jwt, scope, ctrl.ChangePassword)
	base.Put("/update-user-name", jwt, scope, ctrl.UpdateUserName)
}
