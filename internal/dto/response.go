package dto

import (
	"time"

	"github.com/eventful/ticketing-service/internal/models"
	"github.com/shopspring/decimal"
)

type TicketResponse struct {
	ID           string              `json:"id"`
	EventID      string              `json:"event_id"`
	UserID       string              `json:"user_id"`
	Status       models.TicketStatus `json:"status"`
	QRCodeData   string              `json:"qr_code_data"`
	QRScanned    bool                `json:"qr_scanned"`
	QRScannedAt  *time.Time          `json:"qr_scanned_at,omitempty"`
	PurchaseDate time.Time           `json:"purchase_date"`
}

type TicketListResponse struct {
	Tickets []TicketResponse `json:"tickets"`
	Total   int64            `json:"total"`
	Pages   int64            `json:"pages"`
}

type PaymentResponse struct {
	ID               string               `json:"id"`
	UserID           string               `json:"user_id"`
	EventID          string               `json:"event_id"`
	TicketID         string               `json:"ticket_id"`
	Amount           decimal.Decimal      `json:"amount"`
	Currency         string               `json:"currency"`
	PaymentReference string               `json:"payment_reference,omitempty"`
	Status           models.PaymentStatus `json:"status"`
	PaymentDate      *time.Time           `json:"payment_date,omitempty"`
}

type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Total    int64             `json:"total"`
	Pages    int64             `json:"pages"`
}

type CheckoutResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type RevenueResponse struct {
	EventID string          `json:"event_id"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToTicketResponse(t *models.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		EventID:      t.EventID,
		UserID:       t.UserID,
		Status:       t.Status,
		QRCodeData:   t.QRCodeData,
		QRScanned:    t.QRScanned,
		QRScannedAt:  t.QRScannedAt,
		PurchaseDate: t.PurchaseDate,
	}
}

func ToPaymentResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		EventID:          p.EventID,
		TicketID:         p.TicketID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		PaymentReference: p.PaymentReference,
		Status:           p.Status,
		PaymentDate:      p.PaymentDate,
	}
}

func Pages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return pages
}
