package controller

import (
	"errors"
	"io"
	"sync"

	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/constants"
	"gerejaku_backend/internals/features/churches/churches/dto"
	"gerejaku_backend/internals/features/churches/churches/model"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	helperOSS "gerejaku_backend/internals/helpers/oss"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	maxLogoBytes = 5 << 20
	iconSize     = 192
)

var (
	ErrChurchNotFound  = fiber.NewError(fiber.StatusNotFound, "Church not found")
	ErrStorageDisabled = fiber.NewError(fiber.StatusServiceUnavailable, "Object storage is not configured")
	ErrBrandingFeature = fiber.NewError(fiber.StatusForbidden, "Custom branding is not included in your subscription")
	ErrLogoMissing     = fiber.NewError(fiber.StatusBadRequest, "Upload the image in the 'logo' form field")
	ErrLogoTooLarge    = fiber.NewError(fiber.StatusRequestEntityTooLarge, "Logo must be 5MB or smaller")
	ErrLogoUnsupported = fiber.NewError(fiber.StatusUnsupportedMediaType, "Logo must be a PNG, JPEG or WebP image")
)

type ChurchController struct {
	DB        *gorm.DB
	Validator *validator.Validate

	storeOnce sync.Once
	Store     helperOSS.ObjectStore
}

func NewChurchController(db *gorm.DB) *ChurchController {
	return &ChurchController{DB: db, Validator: validator.New()}
}

// store connects to OSS on first use so the API boots without storage credentials.
func (ctrl *ChurchController) store() helperOSS.ObjectStore {
	ctrl.storeOnce.Do(func() {
		if ctrl.Store != nil {
			return
		}
		svc, err := helperOSS.NewOSSServiceFromEnv()
		if err != nil {
			configs.Log.WithError(err).Warn("object storage unavailable, logo upload disabled")
			return
		}
		ctrl.Store = svc
	})
	return ctrl.Store
}

func (ctrl *ChurchController) load(c *fiber.Ctx) (*model.ChurchModel, error) {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return nil, err
	}
	var ch model.ChurchModel
	err = ctrl.DB.WithContext(c.UserContext()).First(&ch, "church_id = ?", churchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChurchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// 🟢 GET /api/a/churches/profile
func (ctrl *ChurchController) GetProfile(c *fiber.Ctx) error {
	ch, err := ctrl.load(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Church profile", dto.ToChurchProfileResponse(ch))
}

// 🟡 PATCH /api/a/churches/branding
// Name and timezone are always editable; color and welcome message need custom_branding.
func (ctrl *ChurchController) UpdateBranding(c *fiber.Ctx) error {
	ch, err := ctrl.load(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.BrandingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if req.TouchesBranding() && !constants.HasFeature(ch.ChurchSubscriptionTier, constants.FeatureCustomBranding) {
		return helper.FromFiberError(c, ErrBrandingFeature)
	}
	updates, err := req.ToUpdates()
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if len(updates) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Nothing to update")
	}

	db := ctrl.DB.WithContext(c.UserContext())
	if err := db.Model(ch).Updates(updates).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := db.First(ch, "church_id = ?", ch.ChurchID).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Branding updated", dto.ToChurchProfileResponse(ch))
}

// 🟢 POST /api/a/churches/branding/logo (multipart, field "logo")
func (ctrl *ChurchController) UploadLogo(c *fiber.Ctx) error {
	ch, err := ctrl.load(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	store := ctrl.store()
	if store == nil {
		return helper.FromFiberError(c, ErrStorageDisabled)
	}

	fh, err := c.FormFile("logo")
	if err != nil {
		return helper.FromFiberError(c, ErrLogoMissing)
	}
	if fh.Size > maxLogoBytes {
		return helper.FromFiberError(c, ErrLogoTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxLogoBytes+1))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if len(raw) > maxLogoBytes {
		return helper.FromFiberError(c, ErrLogoTooLarge)
	}

	logo, icon, err := helperOSS.ConvertLogo(raw, fh.Filename, iconSize)
	if errors.Is(err, helperOSS.ErrUnsupportedImage) {
		return helper.FromFiberError(c, ErrLogoUnsupported)
	}
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	ctx := c.UserContext()
	now := c.Context().Time()
	logoURL, err := store.PutWebP(ctx, helperOSS.BrandingKey(ch.ChurchID.String(), "logo", now), logo)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	iconURL, err := store.PutWebP(ctx, helperOSS.BrandingKey(ch.ChurchID.String(), "icon", now), icon)
	if err != nil {
		_ = store.DeleteByURL(ctx, logoURL)
		return helper.FromFiberError(c, err)
	}

	oldLogo, oldIcon := ch.ChurchLogoURL, ch.ChurchIconURL
	if err := ctrl.DB.WithContext(ctx).Model(ch).Updates(map[string]any{
		"church_logo_url": logoURL,
		"church_icon_url": iconURL,
	}).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	for _, old := range []*string{oldLogo, oldIcon} {
		if old == nil {
			continue
		}
		if err := store.DeleteByURL(ctx, *old); err != nil {
			configs.Log.WithFields(logrus.Fields{"church_id": ch.ChurchID, "url": *old}).WithError(err).Warn("old branding object not deleted")
		}
	}

	ch.ChurchLogoURL, ch.ChurchIconURL = &logoURL, &iconURL
	return helper.JsonUpdated(c, "Logo updated", dto.ToChurchProfileResponse(ch))
}
