package service

import "errors"

// Business outcomes of the ticketing workflow. Handlers map these to HTTP
// status codes with errors.Is; no caller should string-match messages.
var (
	ErrEventNotFound   = errors.New("event not found")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrPaymentNotFound = errors.New("payment not found")

	ErrEventNotPublished = errors.New("event is not available for ticket purchase")
	ErrInvalidAmount     = errors.New("payment amount must be positive")
	ErrUnauthorized      = errors.New("unauthorized access to this resource")

	ErrCapacityExceeded = errors.New("no tickets available for this event")
	ErrDuplicateTicket  = errors.New("user already has a ticket for this event")

	ErrAlreadyScanned      = errors.New("ticket has already been scanned")
	ErrAlreadyUsed         = errors.New("cannot refund a ticket that has been used")
	ErrNotRefundable       = errors.New("ticket is not refundable")
	ErrInvalidToken        = errors.New("invalid or expired QR code")
	ErrPaymentNotCompleted = errors.New("payment not completed for this ticket")

	ErrPaymentAlreadyCompleted = errors.New("payment already completed for this ticket")
	ErrPaymentFailed           = errors.New("payment was not successful")
	ErrInvalidSignature        = errors.New("invalid webhook signature")
	ErrMalformedWebhook        = errors.New("malformed webhook body")
	ErrUnsupportedEvent        = errors.New("unsupported webhook event")
	ErrGateway                 = errors.New("payment gateway failure")
)
