package controller

import (
	"errors"
	"strings"

	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/features/members/members/dto"
	"gerejaku_backend/internals/features/members/members/model"
	"gerejaku_backend/internals/features/members/members/service"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	"gerejaku_backend/internals/helpers/dbtime"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMemberNotFound = fiber.NewError(fiber.StatusNotFound, "Member not found")

type MemberController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewMemberController(db *gorm.DB) *MemberController {
	return &MemberController{DB: db, Validator: validator.New()}
}

func (ctrl *MemberController) load(c *fiber.Ctx, churchID, id uuid.UUID) (*model.MemberModel, error) {
	var m model.MemberModel
	err := ctrl.DB.WithContext(c.UserContext()).
		Where("member_id = ? AND member_church_id = ?", id, churchID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (ctrl *MemberController) loadParam(c *fiber.Ctx) (*model.MemberModel, error) {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid member id")
	}
	return ctrl.load(c, churchID, id)
}

// 🟢 POST /api/a/members
func (ctrl *MemberController) CreateMember(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	var req dto.MemberRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	today := dbtime.LocalDay(c.Context().Time(), helperAuth.GetChurchLocation(c))
	m, err := req.ToModel(churchID, today)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Dates must be YYYY-MM-DD")
	}
	if err := ctrl.DB.WithContext(c.UserContext()).Create(m).Error; err != nil {
		configs.Log.WithError(err).Error("[ERROR] create member")
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonCreated(c, "Member created", dto.ToMemberResponse(m))
}

// 🟢 GET /api/a/members?q=&status=&parents_only=&page=&per_page=
func (ctrl *MemberController) ListMembers(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 25, 200)

	q := ctrl.DB.WithContext(c.UserContext()).
		Model(&model.MemberModel{}).
		Where("member_church_id = ?", churchID)
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		if s != model.MemberStatusActive && s != model.MemberStatusInactive {
			return helper.JsonError(c, fiber.StatusBadRequest, "status must be active or inactive")
		}
		q = q.Where("member_status = ?", s)
	}
	if c.QueryBool("parents_only") {
		q = q.Where("member_parent_id IS NULL")
	}
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := helper.ContainsPattern(s)
		q = q.Where(`(member_first_name ILIKE ? OR member_surname ILIKE ? OR member_phone ILIKE ? OR member_email ILIKE ?
			OR (member_first_name || ' ' || member_surname) ILIKE ?)`, like, like, like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	var rows []model.MemberModel
	if err := q.Order("member_first_name ASC, member_surname ASC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	pg := helper.BuildPagination(total, p, len(rows))
	return helper.JsonList(c, "Members", dto.ToMemberResponses(rows), &pg)
}

// 🟢 GET /api/a/members/:id
func (ctrl *MemberController) GetMember(c *fiber.Ctx) error {
	m, err := ctrl.loadParam(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Member", dto.ToMemberResponse(m))
}

// 🟡 PATCH /api/a/members/:id
func (ctrl *MemberController) UpdateMember(c *fiber.Ctx) error {
	m, err := ctrl.loadParam(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.MemberUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	updates, err := req.ToUpdates()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Dates must be YYYY-MM-DD")
	}
	if len(updates) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Nothing to update")
	}

	db := ctrl.DB.WithContext(c.UserContext())
	if err := db.Model(m).Updates(updates).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	if err := db.First(m, "member_id = ?", m.MemberID).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Member updated", dto.ToMemberResponse(m))
}

// 🔴 DELETE /api/a/members/:id
// Children are detached so they do not point at a deleted parent.
func (ctrl *MemberController) DeleteMember(c *fiber.Ctx) error {
	m, err := ctrl.loadParam(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	err = ctrl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.MemberModel{}).
			Where("member_parent_id = ? AND member_church_id = ?", m.MemberID, m.MemberChurchID).
			Update("member_parent_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "Member deleted", fiber.Map{"member_id": m.MemberID})
}

// 🟢 GET /api/a/members/:id/family
// Resolves to the family head, so asking with a child id returns the whole family too.
func (ctrl *MemberController) GetFamily(c *fiber.Ctx) error {
	m, err := ctrl.loadParam(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	head := m
	if m.MemberParentID != nil {
		if head, err = ctrl.load(c, m.MemberChurchID, *m.MemberParentID); err != nil {
			return helper.FromFiberError(c, err)
		}
	}

	var children []model.MemberModel
	if err := ctrl.DB.WithContext(c.UserContext()).
		Where("member_church_id = ? AND member_parent_id = ?", head.MemberChurchID, head.MemberID).
		Order("member_first_name ASC").
		Find(&children).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Family", dto.FamilyResponse{
		Parent:   dto.ToMemberResponse(head),
		Children: dto.ToMemberResponses(children),
	})
}

// 🟡 PUT /api/a/members/:id/parent
func (ctrl *MemberController) SetParent(c *fiber.Ctx) error {
	m, err := ctrl.loadParam(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.SetParentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var parent *model.MemberModel
	if req.ParentID != nil {
		if parent, err = ctrl.load(c, m.MemberChurchID, *req.ParentID); err != nil {
			if errors.Is(err, ErrMemberNotFound) {
				return helper.FromFiberError(c, service.ErrParentOtherChurch)
			}
			return helper.FromFiberError(c, err)
		}
	}

	var kids int64
	if err := ctrl.DB.WithContext(c.UserContext()).
		Model(&model.MemberModel{}).
		Where("member_parent_id = ?", m.MemberID).
		Count(&kids).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.CheckParentLink(m, parent, kids > 0); err != nil {
		return helper.FromFiberError(c, err)
	}

	if err := ctrl.DB.WithContext(c.UserContext()).
		Model(m).
		Update("member_parent_id", req.ParentID).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	m.MemberParentID = req.ParentID
	return helper.JsonUpdated(c, "Family link updated", dto.ToMemberResponse(m))
}

// 🟡 PUT /api/a/members/:id/biometric
func (ctrl *MemberController) SetBiometric(c *fiber.Ctx) error {
	m, err := ctrl.loadParam(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.SetBiometricRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.BiometricID != nil {
		v := strings.TrimSpace(*req.BiometricID)
		req.BiometricID = &v
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	err = ctrl.DB.WithContext(c.UserContext()).
		Model(m).
		Update("member_biometric_id", req.BiometricID).Error
	if helper.IsDuplicateKey(err) {
		return helper.JsonError(c, fiber.StatusConflict, "This biometric id is already enrolled to another member")
	}
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m.MemberBiometricID = req.BiometricID
	return helper.JsonUpdated(c, "Biometric enrolment updated", dto.ToMemberResponse(m))
}
