package repository

import (
	"context"

	"github.com/eventful/ticketing-service/internal/models"
	"gorm.io/gorm"
)

type EventRepository interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
	ReserveSeat(ctx context.Context, tx *gorm.DB, eventID string) (bool, error)
	ReleaseSeat(ctx context.Context, tx *gorm.DB, eventID string) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// ReserveSeat increments the sold-ticket counter only while capacity remains.
// The conditional update linearizes concurrent purchases; a plain
// read-compare-write here would lose updates under load. Returns false when
// the event is sold out.
func (r *eventRepository) ReserveSeat(ctx context.Context, tx *gorm.DB, eventID string) (bool, error) {
	result := tx.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND sold_tickets < total_tickets", eventID).
		UpdateColumn("sold_tickets", gorm.Expr("sold_tickets + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseSeat decrements the sold-ticket counter, floored at zero.
func (r *eventRepository) ReleaseSeat(ctx context.Context, tx *gorm.DB, eventID string) error {
	return tx.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", eventID).
		UpdateColumn("sold_tickets", gorm.Expr("GREATEST(sold_tickets - 1, 0)")).Error
}
