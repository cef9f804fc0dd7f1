package details

import (
	attendanceRoute "gerejaku_backend/internals/features/attendance/attendance/route"
	eventRoute "gerejaku_backend/internals/features/events/events/route"
	externalRoute "gerejaku_backend/internals/features/events/external_checkin/route"
	memberRoute "gerejaku_backend/internals/features/members/members/route"
	visitorRoute "gerejaku_backend/internals/features/members/visitors/route"
	reportRoute "gerejaku_backend/internals/features/reports/reports/route"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func CongregationPublicRoutes(r fiber.Router, db *gorm.DB) {
	externalRoute.ExternalCheckinPublicRoutes(r, db)
}

func CongregationAdminRoutes(r fiber.Router, db *gorm.DB) {
	memberRoute.MemberAdminRoutes(r, db)
	visitorRoute.VisitorAdminRoutes(r, db)
	eventRoute.EventAdminRoutes(r, db)
	externalRoute.ExternalCheckinAdminRoutes(r, db)
	attendanceRoute.AttendanceAdminRoutes(r, db)
	reportRoute.ReportAdminRoutes(r, db)
}
