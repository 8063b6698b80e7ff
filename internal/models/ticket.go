package models

import "time"

type TicketStatus string

const (
	TicketActive   TicketStatus = "active"
	TicketUsed     TicketStatus = "used"
	TicketRefunded TicketStatus = "refunded"
)

// Ticket is one attendee's right of entry. QRCodeData stores the serialized
// signed payload verbatim as issued; it is never re-signed after creation.
type Ticket struct {
	ID           string       `gorm:"type:uuid;primaryKey" json:"id"`
	EventID      string       `gorm:"type:uuid;not null;index" json:"event_id"`
	UserID       string       `gorm:"type:uuid;not null;index" json:"user_id"`
	QRCodeData   string       `gorm:"type:text;not null" json:"qr_code_data"`
	QRCodeImage  []byte       `gorm:"type:bytea" json:"-"`
	QRScanned    bool         `gorm:"not null;default:false" json:"qr_scanned"`
	QRScannedAt  *time.Time   `json:"qr_scanned_at,omitempty"`
	Status       TicketStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	PurchaseDate time.Time    `gorm:"not null" json:"purchase_date"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}
