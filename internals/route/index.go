package routes

import (
	"time"

	"gerejaku_backend/internals/configs"
	authMiddleware "gerejaku_backend/internals/middlewares/auth"
	featuresMiddleware "gerejaku_backend/internals/middlewares/features"
	routeDetails "gerejaku_backend/internals/route/details"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	BaseRoutes(app, db)

	// ===================== AUTH =====================
	configs.Log.Info("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(app, db)

	// ===================== GROUPS =====================

	// PUBLIC → no token
	configs.Log.Info("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public")

	// ADMIN → admin token + church scope; capability/feature guards sit on each route
	configs.Log.Info("[INFO] Setting up ADMIN group (Auth + Scope)...")
	admin := app.Group("/api/a",
		authMiddleware.AdminAuth(db),
		featuresMiddleware.UseChurchScope(featuresMiddleware.NewGormScopeLoader(db)),
	)

	// KIOSK → kiosk capability token only
	configs.Log.Info("[INFO] Setting up KIOSK group...")
	kiosk := app.Group("/api")

	// ===================== MOUNT ROUTES =====================

	configs.Log.Info("[INFO] Mounting Church routes...")
	routeDetails.ChurchPublicRoutes(public, db)
	routeDetails.ChurchAdminRoutes(admin, db)
	routeDetails.ChurchKioskRoutes(kiosk, db)

	configs.Log.Info("[INFO] Mounting Congregation routes...")
	routeDetails.CongregationPublicRoutes(public, db)
	routeDetails.CongregationAdminRoutes(admin, db)

	configs.Log.Info("[INFO] Mounting User routes...")
	routeDetails.UserAdminRoutes(admin, db)
}
