package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/constants"
	"gerejaku_backend/internals/features/subscriptions/subscriptions/model"
	"gerejaku_backend/internals/features/subscriptions/subscriptions/repository"
	helper "gerejaku_backend/internals/helpers"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrChurchNotFound     = fiber.NewError(fiber.StatusNotFound, "Church not found")
	ErrNotPaidTier        = fiber.NewError(fiber.StatusBadRequest, "tier must be standard or premium")
	ErrAlreadyOnTier      = fiber.NewError(fiber.StatusConflict, "Church is already on this tier")
	ErrBadSignature       = fiber.NewError(fiber.StatusForbidden, "Invalid notification signature")
	ErrOrderNotFound      = fiber.NewError(fiber.StatusNotFound, "Order not found")
	ErrAmountMismatch     = fiber.NewError(fiber.StatusBadRequest, "Gross amount does not match the order")
	ErrGatewayUnavailable = fiber.NewError(fiber.StatusBadGateway, "Payment gateway error")
)

// SnapCreator is the slice of the Midtrans snap client checkout needs.
type SnapCreator interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// NewSnapClient builds a snap client for the configured environment.
func NewSnapClient(serverKey string, production bool) *snap.Client {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var c snap.Client
	c.New(serverKey, env)
	return &c
}

type SubscriptionService struct {
	Repo      repository.SubscriptionRepository
	Snap      SnapCreator
	ServerKey string
	Now       func() time.Time
}

func NewSubscriptionService(repo repository.SubscriptionRepository, snapClient SnapCreator, serverKey string) *SubscriptionService {
	return &SubscriptionService{Repo: repo, Snap: snapClient, ServerKey: serverKey, Now: time.Now}
}

/* ========================= Overview ========================= */

type TierInfo struct {
	Tier          string                     `json:"tier"`
	PriceIDR      int64                      `json:"price_idr"`
	MaxAdminUsers int                        `json:"max_admin_users"`
	Features      map[constants.Feature]bool `json:"features"`
}

type Overview struct {
	CurrentTier    string                           `json:"current_tier"`
	Features       map[constants.Feature]bool       `json:"features"`
	Tiers          []TierInfo                       `json:"tiers"`
	RecentPayments []model.SubscriptionPaymentModel `json:"recent_payments"`
}

func Tiers() []TierInfo {
	out := make([]TierInfo, 0, len(constants.AllTiers))
	for _, t := range constants.AllTiers {
		out = append(out, TierInfo{
			Tier:          t,
			PriceIDR:      constants.TierPrice(t),
			MaxAdminUsers: constants.MaxAdminUsers(t),
			Features:      constants.FeatureMatrix(t),
		})
	}
	return out
}

func (s *SubscriptionService) Overview(ctx context.Context, churchID uuid.UUID) (*Overview, error) {
	ch, err := s.Repo.FindChurch(ctx, churchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChurchNotFound
	}
	if err != nil {
		return nil, err
	}
	pays, err := s.Repo.RecentPayments(ctx, churchID, 10)
	if err != nil {
		return nil, err
	}
	if pays == nil {
		pays = []model.SubscriptionPaymentModel{}
	}
	return &Overview{
		CurrentTier:    ch.ChurchSubscriptionTier,
		Features:       constants.FeatureMatrix(ch.ChurchSubscriptionTier),
		Tiers:          Tiers(),
		RecentPayments: pays,
	}, nil
}

/* ========================= Checkout ========================= */

type Customer struct {
	Name  string
	Email string
}

type CheckoutResult struct {
	OrderID     string `json:"order_id"`
	Tier        string `json:"tier"`
	Amount      int64  `json:"amount"`
	SnapToken   string `json:"snap_token"`
	RedirectURL string `json:"redirect_url"`
}

// NewOrderID is SUB-<church prefix>-<unix>-<random>, at most 64 chars.
func NewOrderID(churchID uuid.UUID, now time.Time) (string, error) {
	suffix, err := helper.NewExternalURLToken()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SUB-%s-%d-%s", churchID.String()[:8], now.Unix(), suffix[:8]), nil
}

func (s *SubscriptionService) Checkout(ctx context.Context, churchID uuid.UUID, tier string, cust Customer) (*CheckoutResult, error) {
	price := constants.TierPrice(tier)
	if price <= 0 {
		return nil, ErrNotPaidTier
	}
	ch, err := s.Repo.FindChurch(ctx, churchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChurchNotFound
	}
	if err != nil {
		return nil, err
	}
	if ch.ChurchSubscriptionTier == tier {
		return nil, ErrAlreadyOnTier
	}

	orderID, err := NewOrderID(churchID, s.Now())
	if err != nil {
		return nil, err
	}
	p := &model.SubscriptionPaymentModel{
		SubscriptionPaymentChurchID: churchID,
		SubscriptionPaymentOrderID:  orderID,
		SubscriptionPaymentTier:     tier,
		SubscriptionPaymentAmount:   price,
		SubscriptionPaymentStatus:   model.PaymentPending,
	}
	if err := s.Repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	resp, merr := s.Snap.CreateTransaction(&snap.Request{
		TransactionDetails: midtrans.TransactionDetails{OrderID: orderID, GrossAmt: price},
		CustomerDetail:     &midtrans.CustomerDetails{FName: cust.Name, Email: cust.Email},
		Items: &[]midtrans.ItemDetails{{
			ID:    "tier-" + tier,
			Name:  "Subscription " + tier + " (" + ch.ChurchName + ")",
			Price: price,
			Qty:   1,
		}},
	})
	if merr != nil {
		configs.Log.WithFields(logrus.Fields{"order_id": orderID}).Error("midtrans snap: " + merr.Error())
		return nil, ErrGatewayUnavailable
	}
	if err := s.Repo.SetSnapToken(ctx, p.SubscriptionPaymentID, resp.Token); err != nil {
		return nil, err
	}
	return &CheckoutResult{
		OrderID:     orderID,
		Tier:        tier,
		Amount:      price,
		SnapToken:   resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

/* ======================= Notification ======================= */

// Notification is the subset of the Midtrans HTTP notification we act on.
type Notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
}

// Signature is SHA512(order_id + status_code + gross_amount + server_key), hex.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func VerifySignature(n Notification, serverKey string) bool {
	if serverKey == "" || n.SignatureKey == "" {
		return false
	}
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(n.SignatureKey))) == 1
}

// MapStatus folds Midtrans transaction/fraud status into a payment status.
func MapStatus(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "settlement":
		return model.PaymentPaid
	case "capture":
		if fraudStatus == "" || fraudStatus == "accept" {
			return model.PaymentPaid
		}
		return model.PaymentPending
	case "expire":
		return model.PaymentExpired
	case "deny", "cancel", "failure":
		return model.PaymentFailed
	}
	return model.PaymentPending
}

// amountMatches compares Midtrans' "99000.00" against the stored integer amount.
func amountMatches(gross string, amount int64) bool {
	g := strings.TrimSpace(gross)
	if i := strings.IndexByte(g, '.'); i >= 0 {
		if strings.Trim(g[i+1:], "0") != "" {
			return false
		}
		g = g[:i]
	}
	return g == fmt.Sprintf("%d", amount)
}

// HandleNotification verifies and applies a payment notification. Replays and
// notifications for already-final payments are accepted and ignored.
func (s *SubscriptionService) HandleNotification(ctx context.Context, n Notification, raw []byte) (string, error) {
	if !VerifySignature(n, s.ServerKey) {
		return "", ErrBadSignature
	}
	next := MapStatus(n.TransactionStatus, n.FraudStatus)

	var applied string
	err := s.Repo.ApplyNotification(ctx, n.OrderID, func(p *model.SubscriptionPaymentModel) (*repository.PaymentUpdate, error) {
		applied = p.SubscriptionPaymentStatus
		if !amountMatches(n.GrossAmount, p.SubscriptionPaymentAmount) {
			return nil, ErrAmountMismatch
		}
		if p.IsFinal() || next == p.SubscriptionPaymentStatus {
			return nil, nil
		}
		fields := map[string]any{}
		if sonic.Valid(raw) {
			fields["subscription_payment_notification"] = datatypes.JSON(raw)
		}
		up := &repository.PaymentUpdate{Status: next, Fields: fields}
		if next == model.PaymentPaid {
			fields["subscription_payment_paid_at"] = s.Now().UTC()
			up.UpgradeTier = true
		}
		applied = next
		return up, nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}
	configs.Log.WithFields(logrus.Fields{
		"order_id":           n.OrderID,
		"transaction_status": n.TransactionStatus,
		"payment_status":     applied,
	}).Info("subscription notification processed")
	return applied, nil
}
