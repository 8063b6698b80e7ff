package repository

import (
	"context"
	"time"

	"github.com/eventful/ticketing-service/internal/models"
	"gorm.io/gorm"
)

type TicketRepository interface {
	Create(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error
	FindByID(ctx context.Context, id string) (*models.Ticket, error)
	FindByQRCode(ctx context.Context, qrData string) (*models.Ticket, error)
	FindActiveByUserAndEvent(ctx context.Context, tx *gorm.DB, userID, eventID string) (*models.Ticket, error)
	FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Ticket, int64, error)
	MarkScanned(ctx context.Context, id string, at time.Time) (int64, error)
	MarkRefunded(ctx context.Context, tx *gorm.DB, id string) (int64, error)
	Reinstate(ctx context.Context, tx *gorm.DB, id string) error
	CountActiveByEvent(ctx context.Context, eventID string) (int64, error)
	CountScannedByEvent(ctx context.Context, eventID string) (int64, error)
	GetDB() *gorm.DB
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *ticketRepository) Create(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error {
	return tx.WithContext(ctx).Create(ticket).Error
}

func (r *ticketRepository) FindByID(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.db.WithContext(ctx).First(&ticket, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindByQRCode(ctx context.Context, qrData string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.db.WithContext(ctx).First(&ticket, "qr_code_data = ?", qrData).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindActiveByUserAndEvent(ctx context.Context, tx *gorm.DB, userID, eventID string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := tx.WithContext(ctx).
		Where("user_id = ? AND event_id = ? AND status <> ?", userID, eventID, models.TicketRefunded).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Ticket, int64, error) {
	var tickets []models.Ticket
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Ticket{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("purchase_date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tickets).Error
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// MarkScanned consumes an active ticket. The status guard makes the
// check-and-set atomic: of two concurrent scans exactly one sees a row
// updated, the other gets zero rows affected.
func (r *ticketRepository) MarkScanned(ctx context.Context, id string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ? AND status = ?", id, models.TicketActive).
		Updates(map[string]any{
			"status":        models.TicketUsed,
			"qr_scanned":    true,
			"qr_scanned_at": at,
		})
	return result.RowsAffected, result.Error
}

// MarkRefunded flips an active ticket to refunded, guarded on status so a
// scanned or already-refunded ticket is never refunded.
func (r *ticketRepository) MarkRefunded(ctx context.Context, tx *gorm.DB, id string) (int64, error) {
	result := tx.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ? AND status = ?", id, models.TicketActive).
		Update("status", models.TicketRefunded)
	return result.RowsAffected, result.Error
}

// Reinstate reverses a refund flip after a failed gateway-side refund,
// returning the ticket to active.
func (r *ticketRepository) Reinstate(ctx context.Context, tx *gorm.DB, id string) error {
	return tx.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ? AND status = ?", id, models.TicketRefunded).
		Update("status", models.TicketActive).Error
}

func (r *ticketRepository) CountActiveByEvent(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("event_id = ? AND status <> ?", eventID, models.TicketRefunded).
		Count(&count).Error
	return count, err
}

func (r *ticketRepository) CountScannedByEvent(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("event_id = ? AND qr_scanned = ?", eventID, true).
		Count(&count).Error
	return count, err
}
