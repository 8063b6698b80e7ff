package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID               string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string          `gorm:"type:uuid;not null;index" json:"user_id"`
	EventID          string          `gorm:"type:uuid;not null;index" json:"event_id"`
	TicketID         string          `gorm:"type:uuid;not null;index" json:"ticket_id"`
	Amount           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency         string          `gorm:"type:varchar(10);not null;default:'NGN'" json:"currency"`
	PaymentReference string          `gorm:"type:varchar(255);index" json:"payment_reference"`
	Status           PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentDate      *time.Time      `json:"payment_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Ticket *Ticket `gorm:"foreignKey:TicketID" json:"ticket,omitempty"`
}
