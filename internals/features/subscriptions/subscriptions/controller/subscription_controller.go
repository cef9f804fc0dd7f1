package controller

import (
	"errors"

	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/features/subscriptions/subscriptions/dto"
	"gerejaku_backend/internals/features/subscriptions/subscriptions/repository"
	"gerejaku_backend/internals/features/subscriptions/subscriptions/service"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SubscriptionController struct {
	DB        *gorm.DB
	Svc       *service.SubscriptionService
	Validator *validator.Validate
}

func NewSubscriptionController(db *gorm.DB) *SubscriptionController {
	snapClient := service.NewSnapClient(configs.MidtransServerKey, configs.MidtransProduction)
	return &SubscriptionController{
		DB:        db,
		Svc:       service.NewSubscriptionService(repository.NewSubscriptionRepository(db), snapClient, configs.MidtransServerKey),
		Validator: validator.New(),
	}
}

// 🟢 GET /api/a/subscriptions
func (ctrl *SubscriptionController) Overview(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	ov, err := ctrl.Svc.Overview(c.UserContext(), churchID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Subscription", ov)
}

// 🟢 POST /api/a/subscriptions/checkout
func (ctrl *SubscriptionController) Checkout(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var cust struct {
		UserFullName string
		UserEmail    string
	}
	if err := ctrl.DB.WithContext(c.UserContext()).
		Table("users").
		Select("user_full_name, user_email").
		Where("user_id = ?", userID).
		Take(&cust).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	res, err := ctrl.Svc.Checkout(c.UserContext(), churchID, req.Tier, service.Customer{
		Name:  cust.UserFullName,
		Email: cust.UserEmail,
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Checkout created", res)
}

// 🟢 POST /api/public/subscriptions/notification
// Midtrans retries on non-2xx, so only signature and lookup failures are reported as errors.
func (ctrl *SubscriptionController) Notification(c *fiber.Ctx) error {
	var n service.Notification
	if err := c.BodyParser(&n); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid notification payload")
	}
	status, err := ctrl.Svc.HandleNotification(c.UserContext(), n, c.Body())
	if err != nil {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			configs.Log.WithFields(logrus.Fields{"order_id": n.OrderID}).WithError(err).Error("subscription notification failed")
		}
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Notification processed", fiber.Map{"order_id": n.OrderID, "status": status})
}
