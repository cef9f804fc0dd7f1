package repository

import (
	"context"

	churchModel "gerejaku_backend/internals/features/churches/churches/model"
	"gerejaku_backend/internals/features/subscriptions/subscriptions/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository interface {
	FindChurch(ctx context.Context, churchID uuid.UUID) (*churchModel.ChurchModel, error)
	CreatePayment(ctx context.Context, p *model.SubscriptionPaymentModel) error
	SetSnapToken(ctx context.Context, paymentID uuid.UUID, token string) error
	RecentPayments(ctx context.Context, churchID uuid.UUID, limit int) ([]model.SubscriptionPaymentModel, error)
	// ApplyNotification locks the payment by order id and hands it to fn inside a
	// transaction. fn returns the new status and whether the church tier should change.
	ApplyNotification(ctx context.Context, orderID string, fn func(p *model.SubscriptionPaymentModel) (*PaymentUpdate, error)) error
}

// PaymentUpdate is the write a notification produces. Nil means nothing to do.
type PaymentUpdate struct {
	Status      string
	Fields      map[string]any
	UpgradeTier bool
}

type gormSubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &gormSubscriptionRepository{db: db}
}

func (r *gormSubscriptionRepository) FindChurch(ctx context.Context, churchID uuid.UUID) (*churchModel.ChurchModel, error) {
	var ch churchModel.ChurchModel
	if err := r.db.WithContext(ctx).First(&ch, "church_id = ?", churchID).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *gormSubscriptionRepository) CreatePayment(ctx context.Context, p *model.SubscriptionPaymentModel) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormSubscriptionRepository) SetSnapToken(ctx context.Context, paymentID uuid.UUID, token string) error {
	return r.db.WithContext(ctx).
		Model(&model.SubscriptionPaymentModel{}).
		Where("subscription_payment_id = ?", paymentID).
		Update("subscription_payment_snap_token", token).Error
}

func (r *gormSubscriptionRepository) RecentPayments(ctx context.Context, churchID uuid.UUID, limit int) ([]model.SubscriptionPaymentModel, error) {
	var rows []model.SubscriptionPaymentModel
	err := r.db.WithContext(ctx).
		Where("subscription_payment_church_id = ?", churchID).
		Order("subscription_payment_created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *gormSubscriptionRepository) ApplyNotification(ctx context.Context, orderID string, fn func(p *model.SubscriptionPaymentModel) (*PaymentUpdate, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.SubscriptionPaymentModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("subscription_payment_order_id = ?", orderID).
			First(&p).Error; err != nil {
			return err
		}
		up, err := fn(&p)
		if err != nil || up == nil {
			return err
		}
		fields := map[string]any{"subscription_payment_status": up.Status}
		for k, v := range up.Fields {
			fields[k] = v
		}
		if err := tx.Model(&p).Updates(fields).Error; err != nil {
			return err
		}
		if !up.UpgradeTier {
			return nil
		}
		return tx.Model(&churchModel.ChurchModel{}).
			Where("church_id = ?", p.SubscriptionPaymentChurchID).
			Update("church_subscription_tier", p.SubscriptionPaymentTier).Error
	})
}
