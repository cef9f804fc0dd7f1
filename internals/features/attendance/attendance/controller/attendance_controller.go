package controller

import (
	"strings"

	"gerejaku_backend/internals/features/attendance/attendance/dto"
	attModel "gerejaku_backend/internals/features/attendance/attendance/model"
	attRepo "gerejaku_backend/internals/features/attendance/attendance/repository"
	"gerejaku_backend/internals/features/attendance/attendance/service"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	"gerejaku_backend/internals/helpers/dbtime"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceController struct {
	DB        *gorm.DB
	Svc       *service.CheckInService
	Validator *validator.Validate
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{
		DB:        db,
		Svc:       service.NewCheckInService(attRepo.NewAttendanceRepository(db)),
		Validator: validator.New(),
	}
}

// baseInput fills tenant, recorder and zone from the resolved church context.
func baseInput(c *fiber.Ctx, eventID uuid.UUID, method string) (service.CheckInInput, error) {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return service.CheckInInput{}, err
	}
	in := service.CheckInInput{
		ChurchID: churchID,
		EventID:  eventID,
		Method:   method,
		Location: helperAuth.GetChurchLocation(c),
	}
	if uid, err := helperAuth.GetUserID(c); err == nil {
		in.RecordedBy = &uid
	}
	return in, nil
}

func (ctrl *AttendanceController) created(c *fiber.Ctx, res *service.CheckInResult) error {
	return helper.JsonCreated(c, "Check-in recorded",
		dto.ToAttendanceResponse(res.Record, res.SubjectName, helperAuth.GetChurchLocation(c)))
}

// 🟢 POST /api/a/attendance/manual
func (ctrl *AttendanceController) ManualCheckIn(c *fiber.Ctx) error {
	var req dto.ManualCheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	in, err := baseInput(c, req.EventID, attModel.MethodManual)
	if err != nil {
		return err
	}
	in.MemberID = req.MemberID
	in.VisitorID = req.VisitorID
	if req.Date != nil && strings.TrimSpace(*req.Date) != "" {
		d, err := dbtime.ParseDate(*req.Date)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		in.Date = &d
	}

	res, err := ctrl.Svc.Record(c.UserContext(), in)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return ctrl.created(c, res)
}

// 🟢 POST /api/a/attendance/biometric
func (ctrl *AttendanceController) BiometricCheckIn(c *fiber.Ctx) error {
	var req dto.BiometricCheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.BiometricID = strings.TrimSpace(req.BiometricID)
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	in, err := baseInput(c, req.EventID, attModel.MethodBiometric)
	if err != nil {
		return err
	}
	res, err := ctrl.Svc.RecordBiometric(c.UserContext(), in, req.BiometricID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return ctrl.created(c, res)
}

// 🟢 POST /api/a/attendance/family
func (ctrl *AttendanceController) FamilyCheckIn(c *fiber.Ctx) error {
	var req dto.FamilyCheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	in, err := baseInput(c, req.EventID, attModel.MethodFamily)
	if err != nil {
		return err
	}
	results, err := ctrl.Svc.RecordFamily(c.UserContext(), in, req.ParentID, req.MemberIDs)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	checkedIn := 0
	for _, r := range results {
		if r.Status == service.FamilyCheckedIn {
			checkedIn++
		}
	}
	return helper.JsonOK(c, "Family check-in processed", fiber.Map{
		"results":    results,
		"checked_in": checkedIn,
		"total":      len(results),
	})
}

// 🟢 POST /api/a/attendance/guest
func (ctrl *AttendanceController) GuestCheckIn(c *fiber.Ctx) error {
	var req dto.GuestCheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	in, err := baseInput(c, req.EventID, attModel.MethodManual)
	if err != nil {
		return err
	}
	vid := req.VisitorID
	in.VisitorID = &vid
	in.IsGuest = true

	res, err := ctrl.Svc.Record(c.UserContext(), in)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return ctrl.created(c, res)
}

// 🟢 GET /api/a/attendance?event_id=&member_id=&visitor_id=&method=&from=&to=&page=&per_page=
func (ctrl *AttendanceController) ListAttendance(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 50, 200)

	q := ctrl.DB.WithContext(c.UserContext()).
		Table("attendance_records a").
		Joins("JOIN events e ON e.event_id = a.attendance_event_id").
		Joins("LEFT JOIN members m ON m.member_id = a.attendance_member_id").
		Joins("LEFT JOIN visitors v ON v.visitor_id = a.attendance_visitor_id").
		Where("a.attendance_church_id = ?", churchID)

	for param, col := range map[string]string{
		"event_id":   "a.attendance_event_id",
		"member_id":  "a.attendance_member_id",
		"visitor_id": "a.attendance_visitor_id",
	} {
		if s := strings.TrimSpace(c.Query(param)); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				return helper.JsonError(c, fiber.StatusBadRequest, param+" is not a valid UUID")
			}
			q = q.Where(col+" = ?", id)
		}
	}
	if m := strings.TrimSpace(c.Query("method")); m != "" {
		if !attModel.IsValidMethod(m) {
			return helper.JsonError(c, fiber.StatusBadRequest, "Unknown check-in method")
		}
		q = q.Where("a.attendance_check_in_method = ?", m)
	}
	if s := strings.TrimSpace(c.Query("from")); s != "" {
		d, err := dbtime.ParseDate(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		q = q.Where("a.attendance_date >= ?", dbtime.FormatDate(d))
	}
	if s := strings.TrimSpace(c.Query("to")); s != "" {
		d, err := dbtime.ParseDate(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		q = q.Where("a.attendance_date <= ?", dbtime.FormatDate(d))
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	var rows []dto.AttendanceListRow
	if err := q.Select(`
			a.attendance_id, a.attendance_event_id, e.event_name,
			a.attendance_member_id, a.attendance_visitor_id,
			COALESCE(TRIM(m.member_first_name || ' ' || m.member_surname),
			         TRIM(v.visitor_first_name || ' ' || v.visitor_surname)) AS subject_name,
			a.attendance_date, a.attendance_check_in_time, a.attendance_check_in_method,
			a.attendance_is_guest, a.attendance_kiosk_session_id`).
		Order("a.attendance_check_in_time DESC").
		Limit(p.Limit).Offset(p.Offset).
		Scan(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	pg := helper.BuildPagination(total, p, len(rows))
	return helper.JsonList(c, "Attendance records", rows, &pg)
}

// 🔴 DELETE /api/a/attendance/:id
func (ctrl *AttendanceController) DeleteAttendance(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid attendance id")
	}

	res := ctrl.DB.WithContext(c.UserContext()).
		Where("attendance_id = ? AND attendance_church_id = ?", id, churchID).
		Delete(&attModel.AttendanceModel{})
	if res.Error != nil {
		return helper.FromFiberError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Attendance record not found")
	}
	return helper.JsonDeleted(c, "Attendance record deleted", fiber.Map{"attendance_id": id})
}
