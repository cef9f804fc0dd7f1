package controller

import (
	"errors"
	"strings"

	"gerejaku_backend/internals/configs"
	providerService "gerejaku_backend/internals/features/churches/providers/service"
	memberModel "gerejaku_backend/internals/features/members/members/model"
	"gerejaku_backend/internals/features/members/visitors/dto"
	"gerejaku_backend/internals/features/members/visitors/model"
	"gerejaku_backend/internals/features/members/visitors/service"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	"gerejaku_backend/internals/helpers/dbtime"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrVisitorNotFound = fiber.NewError(fiber.StatusNotFound, "Visitor not found")

type VisitorController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	NewSender providerService.SenderFactory
}

func NewVisitorController(db *gorm.DB) *VisitorController {
	return &VisitorController{DB: db, Validator: validator.New(), NewSender: providerService.NewSender}
}

func (ctrl *VisitorController) loadParam(c *fiber.Ctx, tx *gorm.DB) (*model.VisitorModel, error) {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid visitor id")
	}
	var v model.VisitorModel
	err = tx.Where("visitor_id = ? AND visitor_church_id = ?", id, churchID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVisitorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// 🟢 POST /api/a/visitors
func (ctrl *VisitorController) CreateVisitor(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	var req dto.VisitorRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	today := dbtime.LocalDay(c.Context().Time(), helperAuth.GetChurchLocation(c))
	v, err := req.ToModel(churchID, today)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Dates must be YYYY-MM-DD")
	}
	if err := ctrl.DB.WithContext(c.UserContext()).Create(v).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonCreated(c, "Visitor created", dto.ToVisitorResponse(v))
}

// 🟢 GET /api/a/visitors?status=&q=&page=&per_page=
func (ctrl *VisitorController) ListVisitors(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 25, 200)

	q := ctrl.DB.WithContext(c.UserContext()).
		Model(&model.VisitorModel{}).
		Where("visitor_church_id = ?", churchID)
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		if !model.IsValidFollowUpStatus(s) {
			return helper.JsonError(c, fiber.StatusBadRequest, "Unknown follow-up status")
		}
		q = q.Where("visitor_follow_up_status = ?", s)
	}
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := helper.ContainsPattern(s)
		q = q.Where("(visitor_first_name ILIKE ? OR visitor_surname ILIKE ? OR visitor_phone ILIKE ? OR visitor_email ILIKE ?)",
			like, like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	var rows []model.VisitorModel
	if err := q.Order("visitor_first_visit_date DESC, visitor_created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	pg := helper.BuildPagination(total, p, len(rows))
	return helper.JsonList(c, "Visitors", dto.ToVisitorResponses(rows), &pg)
}

// 🟢 GET /api/a/visitors/:id
func (ctrl *VisitorController) GetVisitor(c *fiber.Ctx) error {
	v, err := ctrl.loadParam(c, ctrl.DB.WithContext(c.UserContext()))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Visitor", dto.ToVisitorResponse(v))
}

// 🟡 PATCH /api/a/visitors/:id
func (ctrl *VisitorController) UpdateVisitor(c *fiber.Ctx) error {
	db := ctrl.DB.WithContext(c.UserContext())
	v, err := ctrl.loadParam(c, db)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.VisitorUpdateRequest
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
	if err := db.Model(v).Updates(updates).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := db.First(v, "visitor_id = ?", v.VisitorID).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Visitor updated", dto.ToVisitorResponse(v))
}

// 🔴 DELETE /api/a/visitors/:id
func (ctrl *VisitorController) DeleteVisitor(c *fiber.Ctx) error {
	db := ctrl.DB.WithContext(c.UserContext())
	v, err := ctrl.loadParam(c, db)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := db.Delete(v).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "Visitor deleted", fiber.Map{"visitor_id": v.VisitorID})
}

// 🟡 PATCH /api/a/visitors/:id/follow-up
func (ctrl *VisitorController) AdvanceFollowUp(c *fiber.Ctx) error {
	var req dto.FollowUpStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var out *model.VisitorModel
	err := ctrl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		v, err := ctrl.loadParam(c, tx.Clauses(clause.Locking{Strength: "UPDATE"}))
		if err != nil {
			return err
		}
		if err := service.CheckAdvance(v.VisitorFollowUpStatus, req.Status); err != nil {
			return err
		}
		if err := tx.Model(v).Update("visitor_follow_up_status", req.Status).Error; err != nil {
			return err
		}
		v.VisitorFollowUpStatus = req.Status
		out = v
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Follow-up status updated", dto.ToVisitorResponse(out))
}

// 🟢 POST /api/a/visitors/:id/convert
// Creates the member and marks the visitor in one transaction.
func (ctrl *VisitorController) ConvertVisitor(c *fiber.Ctx) error {
	today := dbtime.LocalDay(c.Context().Time(), helperAuth.GetChurchLocation(c))

	var (
		visitor *model.VisitorModel
		member  *memberModel.MemberModel
	)
	err := ctrl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		v, err := ctrl.loadParam(c, tx.Clauses(clause.Locking{Strength: "UPDATE"}))
		if err != nil {
			return err
		}
		m, err := service.MemberFromVisitor(v, today)
		if err != nil {
			return err
		}
		if err := tx.Create(m).Error; err != nil {
			return helper.MapPGError(err)
		}
		if err := tx.Model(v).Updates(map[string]any{
			"visitor_follow_up_status":    model.FollowUpMember,
			"visitor_converted_member_id": m.MemberID,
		}).Error; err != nil {
			return err
		}
		v.VisitorFollowUpStatus = model.FollowUpMember
		v.VisitorConvertedMemberID = &m.MemberID
		visitor, member = v, m
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Visitor converted to member", fiber.Map{
		"visitor":   dto.ToVisitorResponse(visitor),
		"member_id": member.MemberID,
	})
}

// 🟢 POST /api/a/visitors/:id/follow-up/send
// Every attempt is logged. Status is left alone; staff advance it explicitly.
func (ctrl *VisitorController) SendFollowUp(c *fiber.Ctx) error {
	db := ctrl.DB.WithContext(c.UserContext())
	v, err := ctrl.loadParam(c, db)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.SendFollowUpRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	recipient, err := service.Recipient(v, req.Channel)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	p, err := providerService.FindActive(c.UserContext(), ctrl.DB, v.VisitorChurchID, req.Channel)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	sender, err := ctrl.NewSender(p)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	res := sender.Send(c.UserContext(), recipient, req.Message)

	logRow := model.VisitorFollowUpModel{
		VisitorFollowUpVisitorID:       v.VisitorID,
		VisitorFollowUpChurchID:        v.VisitorChurchID,
		VisitorFollowUpChannel:         req.Channel,
		VisitorFollowUpRecipient:       recipient,
		VisitorFollowUpMessage:         req.Message,
		VisitorFollowUpSuccess:         res.Success,
		VisitorFollowUpProviderMessage: &res.Message,
	}
	if uid, err := helperAuth.GetUserID(c); err == nil {
		logRow.VisitorFollowUpSentBy = &uid
	}
	if err := db.Create(&logRow).Error; err != nil {
		configs.Log.WithFields(logrus.Fields{"visitor_id": v.VisitorID}).WithError(err).Error("failed to log follow-up")
	}
	return helper.JsonOK(c, "Follow-up processed", fiber.Map{
		"success": res.Success,
		"message": res.Message,
		"channel": req.Channel,
	})
}

// 🟢 GET /api/a/visitors/:id/follow-ups
func (ctrl *VisitorController) ListFollowUps(c *fiber.Ctx) error {
	db := ctrl.DB.WithContext(c.UserContext())
	v, err := ctrl.loadParam(c, db)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var rows []model.VisitorFollowUpModel
	if err := db.Where("visitor_follow_up_visitor_id = ?", v.VisitorID).
		Order("visitor_follow_up_created_at DESC").
		Limit(100).
		Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Follow-up log", rows)
}
