package controller

import (
	"errors"
	"strconv"
	"strings"

	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/features/events/events/dto"
	"gerejaku_backend/internals/features/events/events/model"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewEventController(db *gorm.DB) *EventController {
	return &EventController{DB: db, Validator: validator.New()}
}

// findOwned loads an event of the caller's church; other churches' events are 404 here.
func (ctrl *EventController) findOwned(c *fiber.Ctx, churchID uuid.UUID) (*model.EventModel, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid event id")
	}
	var ev model.EventModel
	err = ctrl.DB.WithContext(c.UserContext()).
		Where("event_id = ? AND event_church_id = ?", id, churchID).
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Event not found")
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// 🟢 POST /api/a/events
func (ctrl *EventController) CreateEvent(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	ev := req.ToModel(churchID)
	if err := ctrl.DB.WithContext(c.UserContext()).Create(ev).Error; err != nil {
		configs.Log.WithError(err).Error("[ERROR] create event")
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonCreated(c, "Event created", dto.ToEventResponse(ev))
}

// 🟢 GET /api/a/events?active=&q=&type=&page=&per_page=
func (ctrl *EventController) ListEvents(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 20, 100)

	q := ctrl.DB.WithContext(c.UserContext()).
		Model(&model.EventModel{}).
		Where("event_church_id = ?", churchID)
	if s := strings.TrimSpace(c.Query("active")); s != "" {
		active, err := strconv.ParseBool(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "active must be true or false")
		}
		q = q.Where("event_is_active = ?", active)
	}
	if s := strings.TrimSpace(c.Query("type")); s != "" {
		q = q.Where("event_type = ?", s)
	}
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("event_name ILIKE ?", helper.ContainsPattern(s))
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	var rows []model.EventModel
	if err := q.Order("event_is_active DESC, event_name ASC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	pg := helper.BuildPagination(total, p, len(rows))
	return helper.JsonList(c, "Events", dto.ToEventResponses(rows), &pg)
}

// 🟢 GET /api/a/events/:id
func (ctrl *EventController) GetEvent(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	ev, err := ctrl.findOwned(c, churchID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Event", dto.ToEventResponse(ev))
}

// 🟡 PATCH /api/a/events/:id
func (ctrl *EventController) UpdateEvent(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	ev, err := ctrl.findOwned(c, churchID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.EventUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	updates := req.ToUpdates()
	if len(updates) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Nothing to update")
	}

	if err := ctrl.DB.WithContext(c.UserContext()).Model(ev).Updates(updates).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	if err := ctrl.DB.WithContext(c.UserContext()).First(ev, "event_id = ?", ev.EventID).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Event updated", dto.ToEventResponse(ev))
}

// 🔴 DELETE /api/a/events/:id
// Soft delete. The public link dies with it because lookups skip deleted rows.
func (ctrl *EventController) DeleteEvent(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	ev, err := ctrl.findOwned(c, churchID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := ctrl.DB.WithContext(c.UserContext()).Delete(ev).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "Event deleted", fiber.Map{"event_id": ev.EventID})
}
