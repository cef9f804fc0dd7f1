package route

import (
	"gerejaku_backend/internals/constants"
	"gerejaku_backend/internals/features/reports/reports/controller"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	middleware "gerejaku_backend/internals/middlewares/features"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ReportAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewReportController(db)
	view := middleware.RequireCapability(helperAuth.CapViewData)

	g := r.Group("/reports")
	g.Get("/attendance-summary", view, ctrl.AttendanceSummary)
	g.Get("/members/:id/attendance", view, ctrl.MemberHistory)
	g.Get("/follow-up", view, ctrl.FollowUps)
	g.Get("/attendance/export",
		middleware.RequireCapability(helperAuth.CapExportReports),
		middleware.RequireFeature(constants.FeatureReportsExport),
		ctrl.ExportAttendance,
	)
}
