package controller

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gerejaku_backend/internals/features/reports/reports/repository"
	"gerejaku_backend/internals/features/reports/reports/service"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	"gerejaku_backend/internals/helpers/dbtime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportController struct {
	DB  *gorm.DB
	Svc *service.ReportService
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db, Svc: service.NewReportService(repository.NewReportRepository(db))}
}

func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	t, err := dbtime.ParseDate(s)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" must be YYYY-MM-DD")
	}
	return &t, nil
}

func queryRange(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	from, err := queryDate(c, "from")
	if err != nil {
		return nil, nil, err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// 🟢 GET /api/a/reports/attendance-summary?from=&to=&event_id=
func (ctrl *ReportController) AttendanceSummary(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	from, to, err := queryRange(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var eventID *uuid.UUID
	if s := strings.TrimSpace(c.Query("event_id")); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid event_id")
		}
		eventID = &id
	}

	rep, err := ctrl.Svc.Summary(c.UserContext(), churchID, helperAuth.GetChurchLocation(c), from, to, eventID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Attendance summary", rep)
}

// 🟢 GET /api/a/reports/members/:id/attendance
func (ctrl *ReportController) MemberHistory(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	memberID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid member id")
	}
	rows, err := ctrl.Svc.MemberHistory(c.UserContext(), churchID, memberID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Member attendance", fiber.Map{
		"member_id": memberID,
		"total":     len(rows),
		"records":   rows,
	})
}

// 🟢 GET /api/a/reports/follow-up?weeks=N
func (ctrl *ReportController) FollowUps(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	rep, err := ctrl.Svc.FollowUps(c.UserContext(), churchID, helperAuth.GetChurchLocation(c), c.QueryInt("weeks", 0))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Follow-up queue", rep)
}

// 🟢 GET /api/a/reports/attendance/export?from=&to=
func (ctrl *ReportController) ExportAttendance(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	from, to, err := queryRange(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var buf bytes.Buffer
	r, err := ctrl.Svc.Export(c.UserContext(), &buf, churchID, helperAuth.GetChurchLocation(c), from, to)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="attendance_%s_%s.csv"`,
		dbtime.FormatDate(r.From), dbtime.FormatDate(r.To)))
	return c.Send(buf.Bytes())
}
