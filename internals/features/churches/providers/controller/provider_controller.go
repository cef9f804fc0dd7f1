package controller

import (
	"errors"
	"strings"

	"gerejaku_backend/internals/features/churches/providers/dto"
	"gerejaku_backend/internals/features/churches/providers/model"
	"gerejaku_backend/internals/features/churches/providers/service"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultTestMessage = "This is a test message from your church dashboard."

type ProviderController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	NewSender service.SenderFactory
}

func NewProviderController(db *gorm.DB) *ProviderController {
	return &ProviderController{DB: db, Validator: validator.New(), NewSender: service.NewSender}
}

func channelParam(c *fiber.Ctx) (string, error) {
	ch := strings.ToLower(c.Params("channel"))
	if !model.IsValidChannel(ch) {
		return "", fiber.NewError(fiber.StatusBadRequest, "channel must be sms or email")
	}
	return ch, nil
}

// 🟢 GET /api/a/providers
func (ctrl *ProviderController) ListProviders(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	var rows []model.ProviderModel
	if err := ctrl.DB.WithContext(c.UserContext()).
		Where("provider_church_id = ?", churchID).
		Order("provider_channel ASC").
		Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	out := make([]dto.ProviderResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.ToProviderResponse(&rows[i]))
	}
	return helper.JsonOK(c, "Providers", out)
}

// 🟡 PUT /api/a/providers/:channel
func (ctrl *ProviderController) UpsertProvider(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	channel, err := channelParam(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpsertProviderRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Name = strings.ToLower(strings.TrimSpace(req.Name))
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	db := ctrl.DB.WithContext(c.UserContext())
	var existing model.ProviderModel
	err = db.Where("provider_church_id = ? AND provider_channel = ?", churchID, channel).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.FromFiberError(c, err)
	}
	creds := req.Credentials
	if len(creds) == 0 && existing.ProviderName == req.Name {
		creds = existing.ProviderCredentials
	}
	if err := service.ValidateConfig(channel, req.Name, req.Sender, creds); err != nil {
		return helper.FromFiberError(c, err)
	}

	p := model.ProviderModel{
		ProviderChurchID:    churchID,
		ProviderChannel:     channel,
		ProviderName:        req.Name,
		ProviderSender:      req.Sender,
		ProviderCredentials: datatypes.JSONMap(creds),
		ProviderIsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_church_id"}, {Name: "provider_channel"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"provider_name", "provider_sender", "provider_credentials", "provider_is_active", "provider_updated_at",
		}),
	}).Create(&p).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonUpdated(c, "Provider saved", dto.ToProviderResponse(&p))
}

// 🟢 POST /api/a/providers/:channel/test
func (ctrl *ProviderController) TestProvider(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	channel, err := channelParam(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.TestProviderRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if req.Message == "" {
		req.Message = defaultTestMessage
	}

	p, err := service.FindActive(c.UserContext(), ctrl.DB, churchID, channel)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	sender, err := ctrl.NewSender(p)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	res := sender.Send(c.UserContext(), strings.TrimSpace(req.Recipient), req.Message)
	return helper.JsonOK(c, "Test message processed", res)
}
