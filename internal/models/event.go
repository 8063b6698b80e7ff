package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

type Event struct {
	ID           string      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID    string      `gorm:"type:uuid;not null;index" json:"creator_id"`
	Name         string      `gorm:"not null" json:"name"`
	Status       EventStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	TotalTickets int         `gorm:"not null" json:"total_tickets"`
	SoldTickets  int         `gorm:"not null;default:0" json:"sold_tickets"`
	StartDate    time.Time   `gorm:"not null;index" json:"start_date"`
	EndDate      time.Time   `gorm:"not null" json:"end_date"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
