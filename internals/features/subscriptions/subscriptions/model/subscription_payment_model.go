package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
	PaymentExpired = "expired"
)

type SubscriptionPaymentModel struct {
	SubscriptionPaymentID           uuid.UUID      `gorm:"column:subscription_payment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"subscription_payment_id"`
	SubscriptionPaymentChurchID     uuid.UUID      `gorm:"column:subscription_payment_church_id;type:uuid;not null"  json:"subscription_payment_church_id"`
	SubscriptionPaymentOrderID      string         `gorm:"column:subscription_payment_order_id;type:varchar(64);not null;uniqueIndex" json:"subscription_payment_order_id"`
	SubscriptionPaymentTier         string         `gorm:"column:subscription_payment_tier;type:varchar(20);not null" json:"subscription_payment_tier"`
	SubscriptionPaymentAmount       int64          `gorm:"column:subscription_payment_amount;not null"               json:"subscription_payment_amount"`
	SubscriptionPaymentStatus       string         `gorm:"column:subscription_payment_status;type:varchar(20);not null;default:'pending'" json:"subscription_payment_status"`
	SubscriptionPaymentSnapToken    *string        `gorm:"column:subscription_payment_snap_token;type:text"          json:"-"`
	SubscriptionPaymentPaidAt       *time.Time     `gorm:"column:subscription_payment_paid_at;type:timestamptz"      json:"subscription_payment_paid_at,omitempty"`
	SubscriptionPaymentNotification datatypes.JSON `gorm:"column:subscription_payment_notification;type:jsonb"       json:"-"`
	SubscriptionPaymentCreatedAt    time.Time      `gorm:"column:subscription_payment_created_at;type:timestamptz;autoCreateTime" json:"subscription_payment_created_at"`
	SubscriptionPaymentUpdatedAt    time.Time      `gorm:"column:subscription_payment_updated_at;type:timestamptz;autoUpdateTime" json:"subscription_payment_updated_at"`
}

func (SubscriptionPaymentModel) TableName() string {
	return "subscription_payments"
}

func (p *SubscriptionPaymentModel) IsFinal() bool {
	return p.SubscriptionPaymentStatus != PaymentPending
}
