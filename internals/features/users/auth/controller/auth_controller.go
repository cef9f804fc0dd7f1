package controller

import (
	"errors"
	"strings"
	"time"

	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/constants"
	"gerejaku_backend/internals/features/users/auth/dto"
	"gerejaku_backend/internals/features/users/auth/service"
	userModel "gerejaku_backend/internals/features/users/users/model"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Service   *service.AuthService
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Validator: validator.New(), Service: service.NewAuthService(db)}
}

func clientMeta(c *fiber.Ctx) service.ClientMeta {
	return service.ClientMeta{UserAgent: c.Get(fiber.HeaderUserAgent), IP: c.IP()}
}

func setAuthCookies(c *fiber.Ctx, sess *service.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     helper.AccessCookie,
		Value:    sess.AccessToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  sess.AccessExpiresAt,
	})
	c.Cookie(&fiber.Cookie{
		Name:     helper.RefreshCookie,
		Value:    sess.RefreshToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  sess.RefreshExpiresAt,
	})
}

func clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	for _, name := range []string{helper.AccessCookie, helper.RefreshCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			HTTPOnly: true,
			Secure:   true,
			SameSite: "None",
			Path:     "/",
			Expires:  expired,
			MaxAge:   -1,
		})
	}
}

func (ac *AuthController) respondSession(c *fiber.Ctx, status int, msg string, sess *service.Session) error {
	setAuthCookies(c, sess)
	resp := dto.LoginResponse{
		User:            service.ToSessionUser(sess.User, sess.Church),
		AccessToken:     sess.AccessToken,
		AccessExpiresAt: sess.AccessExpiresAt,
	}
	if status == fiber.StatusCreated {
		return helper.JsonCreated(c, msg, resp)
	}
	return helper.JsonOK(c, msg, resp)
}

func (ac *AuthController) fail(c *fiber.Ctx, op string, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return err
	}
	configs.Log.WithError(err).WithField("op", op).Error("[ERROR] auth")
	return fiber.NewError(fiber.StatusInternalServerError, "Authentication failed")
}

// 🟢 POST /api/auth/register-church
func (ac *AuthController) RegisterChurch(c *fiber.Ctx) error {
	var req dto.RegisterChurchRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ac.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	sess, err := ac.Service.RegisterChurch(c.UserContext(), req, clientMeta(c))
	if err != nil {
		return ac.fail(c, "register_church", err)
	}
	configs.Log.WithField("church_id", sess.Church.ChurchID).Info("[INFO] church registered")
	return ac.respondSession(c, fiber.StatusCreated, "Church registered", sess)
}

// 🟢 POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ac.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	sess, err := ac.Service.Login(c.UserContext(), req.Email, req.Password, clientMeta(c))
	if err != nil {
		return ac.fail(c, "login", err)
	}
	return ac.respondSession(c, fiber.StatusOK, "Login successful", sess)
}

// 🟢 POST /api/auth/login-google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var req dto.LoginGoogleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ac.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	sess, err := ac.Service.LoginGoogle(c.UserContext(), req.IDToken, clientMeta(c))
	if err != nil {
		return ac.fail(c, "login_google", err)
	}
	return ac.respondSession(c, fiber.StatusOK, "Login successful", sess)
}

// 🟢 POST /api/auth/refresh-token
func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	raw := helper.RefreshToken(c)
	if raw == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "No refresh token")
	}
	sess, err := ac.Service.Refresh(c.UserContext(), raw, clientMeta(c))
	if err != nil {
		clearAuthCookies(c)
		return ac.fail(c, "refresh", err)
	}
	return ac.respondSession(c, fiber.StatusOK, "Token refreshed", sess)
}

// 🟢 POST /api/auth/logout
// Idempotent: cookies are cleared even when no token is presented.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if raw := helper.AccessToken(c); raw != "" {
		if claims, err := helperAuth.ParseAccessToken(configs.JWTSecret, raw); err == nil && claims.ExpiresAt != nil {
			if err := helperAuth.AddToBlacklist(ctx, ac.DB, raw, configs.JWTSecret, claims.ExpiresAt.Time); err != nil {
				configs.Log.WithError(err).Warn("[WARN] blacklist access token")
			}
		}
	}
	if err := ac.Service.RevokeRefresh(ctx, helper.RefreshToken(c)); err != nil {
		configs.Log.WithError(err).Warn("[WARN] revoke refresh token")
	}
	clearAuthCookies(c)
	return helper.JsonOK(c, "Logout successful", nil)
}

// 🟢 GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	user, err := ac.Service.Repo.FindUserByID(c.UserContext(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return service.ErrUserGone
	}
	if err != nil {
		return ac.fail(c, "me", err)
	}
	church, err := ac.Service.Repo.FindChurch(c.UserContext(), user.UserChurchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return service.ErrChurchGone
	}
	if err != nil {
		return ac.fail(c, "me", err)
	}
	return helper.JsonOK(c, "OK", fiber.Map{
		"user":     service.ToSessionUser(user, church),
		"features": constants.FeatureMatrix(church.ChurchSubscriptionTier),
	})
}

// 🟢 POST /api/auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ac.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if err := ac.Service.ChangePassword(c.UserContext(), userID, req.OldPassword, req.NewPassword); err != nil {
		return ac.fail(c, "change_password", err)
	}
	return helper.JsonUpdated(c, "Password changed", nil)
}

// 🟡 PUT /api/auth/update-user-name
func (ac *AuthController) UpdateUserName(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateNameRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ac.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	res := ac.DB.WithContext(c.UserContext()).
		Model(&userModel.UserModel{}).
		Where("user_id = ?", userID).
		Update("user_full_name", strings.TrimSpace(req.FullName))
	if res.Error != nil {
		return ac.fail(c, "update_name", res.Error)
	}
	if res.RowsAffected == 0 {
		return service.ErrUserGone
	}
	return helper.JsonUpdated(c, "Name updated", fiber.Map{"full_name": strings.TrimSpace(req.FullName)})
}
