package controller

import (
	"gerejaku_backend/internals/configs"
	attRepo "gerejaku_backend/internals/features/attendance/attendance/repository"
	attService "gerejaku_backend/internals/features/attendance/attendance/service"
	"gerejaku_backend/internals/features/churches/kiosk/dto"
	"gerejaku_backend/internals/features/churches/kiosk/repository"
	"gerejaku_backend/internals/features/churches/kiosk/service"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type KioskController struct {
	Svc       *service.KioskService
	Validator *validator.Validate
}

func NewKioskController(db *gorm.DB) *KioskController {
	checkIn := attService.NewCheckInService(attRepo.NewAttendanceRepository(db))
	return &KioskController{
		Svc: service.NewKioskService(
			repository.NewKioskRepository(db),
			checkIn,
			configs.JWTSecret,
			configs.KioskSecret,
			configs.AccessTTL,
		),
		Validator: validator.New(),
	}
}

func actor(c *fiber.Ctx) (service.Actor, error) {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return service.Actor{}, err
	}
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return service.Actor{}, err
	}
	return service.Actor{UserID: userID, ChurchID: churchID, Role: helperAuth.GetRole(c)}, nil
}

// 🟢 GET /api/a/churches/kiosk-settings
func (ctrl *KioskController) GetSettings(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	st, err := ctrl.Svc.GetSettings(c.UserContext(), churchID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.JSON(st)
}

// 🟡 PATCH /api/a/churches/kiosk-settings
func (ctrl *KioskController) UpdateSettings(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateKioskSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if req.KioskModeEnabled == nil && req.KioskSessionTimeout == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Nothing to update")
	}

	st, err := ctrl.Svc.UpdateSettings(c.UserContext(), churchID, req.KioskModeEnabled, req.KioskSessionTimeout)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.JSON(st)
}

// 🟢 POST /api/a/churches/kiosk-session/start
func (ctrl *KioskController) Start(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	res, err := ctrl.Svc.Start(c.UserContext(), a)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	configs.Log.WithField("church_id", a.ChurchID).WithField("user_id", a.UserID).Info("kiosk session started")
	return c.JSON(res)
}

// 🟢 POST /api/a/churches/kiosk-session/extend
func (ctrl *KioskController) Extend(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	res, err := ctrl.Svc.Extend(c.UserContext(), a)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.JSON(res)
}

// 🔴 POST /api/a/churches/kiosk-session/end
func (ctrl *KioskController) End(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	st, err := ctrl.Svc.End(c.UserContext(), churchID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.JSON(st)
}

// 🟢 GET /api/kiosk/session (kiosk token)
func (ctrl *KioskController) Session(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	st, err := ctrl.Svc.Status(c.UserContext(), helperAuth.GetKioskSessionID(c), churchID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.JSON(st)
}

// 🟢 POST /api/kiosk/checkin (kiosk token)
func (ctrl *KioskController) CheckIn(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	var req dto.KioskCheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	results, err := ctrl.Svc.CheckIn(c.UserContext(), helperAuth.GetKioskSessionID(c), churchID, req.EventID, req.Members())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if req.MemberID != nil && len(req.MemberIDs) == 0 {
		r := results[0]
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Checked in successfully",
			"member":  fiber.Map{"name": r.Name, "checkInTime": r.CheckInTime},
		})
	}
	return c.JSON(fiber.Map{"success": true, "results": results})
}
