package dto

import "github.com/shopspring/decimal"

type PurchaseTicketRequest struct {
	UserID string `json:"user_id"`
}

type ScanTicketRequest struct {
	QRData string `json:"qr_data"`
}

type RefundTicketRequest struct {
	UserID string `json:"user_id"`
}

type InitializePaymentRequest struct {
	UserID   string          `json:"user_id"`
	EventID  string          `json:"event_id"`
	TicketID string          `json:"ticket_id"`
	Email    string          `json:"email"`
	Amount   decimal.Decimal `json:"amount"`
}

type RefundPaymentRequest struct {
	UserID string `json:"user_id"`
}
