package controller

import (
	"errors"
	"strings"

	"gerejaku_backend/internals/configs"
	attRepo "gerejaku_backend/internals/features/attendance/attendance/repository"
	attService "gerejaku_backend/internals/features/attendance/attendance/service"
	"gerejaku_backend/internals/features/events/external_checkin/dto"
	"gerejaku_backend/internals/features/events/external_checkin/repository"
	"gerejaku_backend/internals/features/events/external_checkin/service"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExternalCheckinController struct {
	Svc       *service.ExternalCheckinService
	Validator *validator.Validate
}

func NewExternalCheckinController(db *gorm.DB) *ExternalCheckinController {
	return &ExternalCheckinController{
		Svc: service.NewExternalCheckinService(
			repository.NewExternalCheckinRepository(db),
			attService.NewCheckInService(attRepo.NewAttendanceRepository(db)),
			configs.PublicAppURL,
		),
		Validator: validator.New(),
	}
}

/* =========================
   Admin (church-scoped)
========================= */

// Enabling is the feature-gate predicate for Toggle: only switching a link on
// needs the plan feature, switching it off is always allowed.
func Enabling(c *fiber.Ctx) bool {
	var req dto.ToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return false
	}
	return req.Enables()
}

// 🟢 POST /api/a/events/:eventId/external-checkin/toggle
func (ctrl *ExternalCheckinController) Toggle(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	eventID, err := uuid.Parse(c.Params("eventId"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid event id")
	}
	var req dto.ToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	res, err := ctrl.Svc.Toggle(c.UserContext(), churchID, eventID, *req.Enabled)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	configs.Log.WithField("church_id", churchID).
		WithField("event_id", eventID).
		WithField("enabled", *req.Enabled).
		Info("external check-in toggled")

	ev := res.Event
	return c.JSON(fiber.Map{
		"success": true,
		"event": fiber.Map{
			"id":                     ev.EventID,
			"name":                   ev.EventName,
			"externalCheckinEnabled": ev.EventExternalCheckinEnabled,
			"externalCheckinUrl":     ev.EventExternalCheckinURL,
			"externalCheckinPin":     ev.EventExternalCheckinPIN,
		},
		"externalUrl": res.ExternalURL,
	})
}

// 🟢 GET /api/a/events/:eventId/external-checkin
func (ctrl *ExternalCheckinController) AdminRead(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	eventID, err := uuid.Parse(c.Params("eventId"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid event id")
	}
	view, err := ctrl.Svc.AdminRead(c.UserContext(), churchID, eventID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.JSON(view)
}

/* =========================
   Public (link token only)
========================= */

// 🟢 GET /api/public/external-checkin/event/:eventUrl
func (ctrl *ExternalCheckinController) Lookup(c *fiber.Ctx) error {
	info, err := ctrl.Svc.Lookup(c.UserContext(), c.Params("eventUrl"))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.JSON(info)
}

// 🟢 POST /api/public/external-checkin/checkin/:eventUrl
func (ctrl *ExternalCheckinController) Submit(c *fiber.Ctx) error {
	var req dto.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	pin := strings.TrimSpace(req.PIN)

	var memberID uuid.UUID
	if len(pin) == helper.ExternalPINLength {
		id, err := uuid.Parse(strings.TrimSpace(req.MemberID))
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "memberId is required")
		}
		memberID = id
	}

	res, err := ctrl.Svc.Submit(c.UserContext(), c.Params("eventUrl"), pin, memberID)
	if err != nil {
		if !errors.Is(err, helper.ErrDuplicateCheckIn) {
			configs.Log.WithField("ip", c.IP()).WithError(err).Debug("external check-in rejected")
		}
		return helper.FromFiberError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Checked in successfully",
		"member": fiber.Map{
			"name":        res.Name,
			"checkInTime": res.CheckInTime,
		},
	})
}

// 🟢 POST /api/public/external-checkin/members
// 🟢 POST /api/public/external-checkin/search
func (ctrl *ExternalCheckinController) Members(c *fiber.Ctx) error {
	var req dto.MembersRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	members, err := ctrl.Svc.Members(c.UserContext(), req.EventURL, req.Search)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.JSON(fiber.Map{"members": members})
}
