package route

import (
	"gerejaku_backend/internals/constants"
	"gerejaku_backend/internals/features/attendance/attendance/controller"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	middleware "gerejaku_backend/internals/middlewares/features"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AttendanceAdminRoutes expects r to already carry AuthJWT + UseChurchScope.
// Guards are per route: a group-level Use would also catch the read endpoint.
func AttendanceAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAttendanceController(db)
	canRecord := middleware.RequireCapability(helperAuth.CapRecordAttendance)

	g := r.Group("/attendance")
	g.Get("/", middleware.RequireCapability(helperAuth.CapViewData), ctrl.ListAttendance)
	g.Post("/manual", canRecord, ctrl.ManualCheckIn)
	g.Post("/family", canRecord, ctrl.FamilyCheckIn)
	g.Post("/guest", canRecord, ctrl.GuestCheckIn)
	g.Post("/biometric", canRecord, middleware.RequireFeature(constants.FeatureBiometricCheckIn), ctrl.BiometricCheckIn)
	g.Delete("/:id", middleware.RequireCapability(helperAuth.CapManageMembers), ctrl.DeleteAttendance)
}
