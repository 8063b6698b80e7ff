package repository

import (
	"context"
	"time"

	"github.com/eventful/ticketing-service/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	FindByTicketID(ctx context.Context, ticketID string) (*models.Payment, error)
	FindByReference(ctx context.Context, reference string) (*models.Payment, error)
	FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Payment, int64, error)
	UpdateReference(ctx context.Context, id, reference string) error
	MarkCompleted(ctx context.Context, id string, at time.Time) (int64, error)
	MarkFailed(ctx context.Context, id string) error
	MarkRefunded(ctx context.Context, id string) (int64, error)
	TotalRevenue(ctx context.Context, eventID string) (decimal.Decimal, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Payment{}, "id = ?", id).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByTicketID(ctx context.Context, ticketID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "payment_reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Payment{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *paymentRepository) UpdateReference(ctx context.Context, id, reference string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Update("payment_reference", reference).Error
}

// MarkCompleted transitions pending → completed. The status guard makes the
// transition atomic under the webhook/polling race: the second caller sees
// zero rows affected and must re-read instead of re-applying side effects.
func (r *paymentRepository) MarkCompleted(ctx context.Context, id string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentPending).
		Updates(map[string]any{
			"status":       models.PaymentCompleted,
			"payment_date": at,
		})
	return result.RowsAffected, result.Error
}

func (r *paymentRepository) MarkFailed(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentPending).
		Update("status", models.PaymentFailed).Error
}

// MarkRefunded transitions completed → refunded.
func (r *paymentRepository) MarkRefunded(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentCompleted).
		Update("status", models.PaymentRefunded)
	return result.RowsAffected, result.Error
}

func (r *paymentRepository) TotalRevenue(ctx context.Context, eventID string) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("event_id = ? AND status = ?", eventID, models.PaymentCompleted).
		Select("SUM(amount)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
