package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/eventful/ticketing-service/internal/models"
	"github.com/eventful/ticketing-service/internal/monitoring"
	"github.com/eventful/ticketing-service/internal/repository"
	"github.com/eventful/ticketing-service/pkg/paystack"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentService interface {
	Initialize(ctx context.Context, in InitializePaymentInput) (*CheckoutInfo, error)
	Verify(ctx context.Context, reference string) (*models.Payment, error)
	HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*models.Payment, error)
	Refund(ctx context.Context, paymentID, userID string) (*models.Payment, error)
	GetPayment(ctx context.Context, paymentID, userID string) (*models.Payment, error)
	ListUserPayments(ctx context.Context, userID string, page, limit int) ([]models.Payment, int64, error)
	EventRevenue(ctx context.Context, eventID string) (decimal.Decimal, error)
}

type InitializePaymentInput struct {
	UserID   string
	EventID  string
	TicketID string
	Email    string
	Amount   decimal.Decimal
}

type CheckoutInfo struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Gateway is the server-to-server surface of the payment provider.
type Gateway interface {
	Initialize(ctx context.Context, email string, amountMinor int64, reference string, metadata map[string]string) (*paystack.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error)
	Refund(ctx context.Context, transactionReference string) error
}

type paymentService struct {
	paymentRepo   repository.PaymentRepository
	ticketRepo    repository.TicketRepository
	eventRepo     repository.EventRepository
	gateway       Gateway
	webhookSecret string
	cache         EventCache
	publisher     Publisher
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	ticketRepo repository.TicketRepository,
	eventRepo repository.EventRepository,
	gateway Gateway,
	webhookSecret string,
	cache EventCache,
	publisher Publisher,
) PaymentService {
	return &paymentService{
		paymentRepo:   paymentRepo,
		ticketRepo:    ticketRepo,
		eventRepo:     eventRepo,
		gateway:       gateway,
		webhookSecret: webhookSecret,
		cache:         cache,
		publisher:     publisher,
	}
}

// Initialize creates a pending payment and requests a hosted-checkout
// session. The payment's own ID is the gateway correlation key. A gateway
// failure rolls the pending row back so no orphans accumulate.
func (s *paymentService) Initialize(ctx context.Context, in InitializePaymentInput) (*CheckoutInfo, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	ticket, err := s.ticketRepo.FindByID(ctx, in.TicketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	if ticket.UserID != in.UserID {
		return nil, ErrUnauthorized
	}

	existing, err := s.paymentRepo.FindByTicketID(ctx, in.TicketID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == models.PaymentCompleted {
		return nil, ErrPaymentAlreadyCompleted
	}

	payment := &models.Payment{
		ID:       uuid.New().String(),
		UserID:   in.UserID,
		EventID:  in.EventID,
		TicketID: in.TicketID,
		Amount:   in.Amount,
		Currency: "NGN",
		Status:   models.PaymentPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	amountMinor := in.Amount.Mul(decimal.NewFromInt(100)).IntPart()
	result, err := s.gateway.Initialize(ctx, in.Email, amountMinor, payment.ID, map[string]string{
		"userId":   in.UserID,
		"eventId":  in.EventID,
		"ticketId": in.TicketID,
	})
	if err != nil {
		// no orphan pending rows
		if delErr := s.paymentRepo.Delete(ctx, payment.ID); delErr != nil {
			log.Printf("[PaymentService] failed to roll back pending payment %s: %v", payment.ID, delErr)
		}
		log.Printf("[PaymentService] gateway initialization failed: %v", err)
		return nil, ErrGateway
	}

	if err := s.paymentRepo.UpdateReference(ctx, payment.ID, result.Reference); err != nil {
		return nil, err
	}

	return &CheckoutInfo{
		AuthorizationURL: result.AuthorizationURL,
		AccessCode:       result.AccessCode,
		Reference:        result.Reference,
	}, nil
}

// Verify reconciles a payment against the gateway's authoritative status.
// It is called by both the redirect-return flow and the webhook flow, which
// may race: an already-completed payment returns unchanged, and the
// pending→completed transition is a conditional update so the loser of the
// race observes the winner's write instead of re-applying it. A transport
// failure leaves the payment pending; a timeout is not evidence of payment
// failure.
func (s *paymentService) Verify(ctx context.Context, reference string) (*models.Payment, error) {
	payment, err := s.paymentRepo.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.Status == models.PaymentCompleted {
		return payment, nil
	}

	result, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		log.Printf("[PaymentService] gateway verify failed for %s, payment left pending: %v", reference, err)
		return nil, ErrGateway
	}

	if result.Status != "success" {
		if err := s.paymentRepo.MarkFailed(ctx, payment.ID); err != nil {
			return nil, err
		}
		monitoring.PaymentFailed()
		return nil, ErrPaymentFailed
	}

	rows, err := s.paymentRepo.MarkCompleted(ctx, payment.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	updated, err := s.paymentRepo.FindByID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}

	if rows > 0 {
		monitoring.PaymentCompleted()
		s.publish("payment.completed", updated)
	}
	return updated, nil
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

// HandleWebhook authenticates a gateway callback before reading it. The
// signature is recomputed over the raw body; a mismatch means the body is
// never parsed.
func (s *paymentService) HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*models.Payment, error) {
	if !paystack.ValidSignature(s.webhookSecret, rawBody, signature) {
		monitoring.WebhookRejected()
		return nil, ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		monitoring.WebhookRejected()
		return nil, ErrMalformedWebhook
	}

	if event.Event != "charge.success" {
		return nil, ErrUnsupportedEvent
	}

	return s.Verify(ctx, event.Data.Reference)
}

// Refund reverses a completed payment and its unscanned ticket. The ticket
// flip commits first so concurrent scans are blocked immediately; the seat
// is released only after the gateway refund succeeds. If the gateway fails,
// the ticket is reinstated and the seat was never given away, so the sold
// counter keeps tracking outstanding tickets even when a concurrent purchase
// fills the event in between.
func (s *paymentService) Refund(ctx context.Context, paymentID, userID string) (*models.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.UserID != userID {
		return nil, ErrUnauthorized
	}
	if payment.Status != models.PaymentCompleted {
		return nil, ErrNotRefundable
	}

	ticket, err := s.ticketRepo.FindByID(ctx, payment.TicketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	if ticket.QRScanned || ticket.Status == models.TicketUsed {
		return nil, ErrAlreadyUsed
	}

	rows, err := s.ticketRepo.MarkRefunded(ctx, s.ticketRepo.GetDB(), ticket.ID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// lost a race with a concurrent scan or refund
		return nil, ErrAlreadyUsed
	}

	if err := s.gateway.Refund(ctx, payment.PaymentReference); err != nil {
		log.Printf("[PaymentService] gateway refund failed for %s, reinstating ticket: %v", payment.ID, err)
		if revErr := s.ticketRepo.Reinstate(ctx, s.ticketRepo.GetDB(), ticket.ID); revErr != nil {
			log.Printf("[PaymentService] failed to reinstate ticket %s: %v", ticket.ID, revErr)
		}
		return nil, ErrGateway
	}

	if err := s.eventRepo.ReleaseSeat(ctx, s.ticketRepo.GetDB(), ticket.EventID); err != nil {
		return nil, err
	}
	if _, err := s.paymentRepo.MarkRefunded(ctx, payment.ID); err != nil {
		return nil, err
	}

	s.invalidateEvent(ctx, ticket.EventID)
	monitoring.TicketRefunded(ticket.EventID)

	updated, err := s.paymentRepo.FindByID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}

	s.publish("payment.refunded", updated)
	if refundedTicket, err := s.ticketRepo.FindByID(ctx, ticket.ID); err == nil {
		s.publish("ticket.refunded", refundedTicket)
	}

	return updated, nil
}

func (s *paymentService) GetPayment(ctx context.Context, paymentID, userID string) (*models.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if userID != "" && payment.UserID != userID {
		return nil, ErrUnauthorized
	}
	return payment, nil
}

func (s *paymentService) ListUserPayments(ctx context.Context, userID string, page, limit int) ([]models.Payment, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.paymentRepo.FindByUserID(ctx, userID, page, limit)
}

func (s *paymentService) EventRevenue(ctx context.Context, eventID string) (decimal.Decimal, error) {
	return s.paymentRepo.TotalRevenue(ctx, eventID)
}

func (s *paymentService) invalidateEvent(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		log.Printf("[PaymentService] cache invalidation failed for event %s: %v", eventID, err)
	}
}

func (s *paymentService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		log.Printf("[PaymentService] publish %s failed: %v", routingKey, err)
	}
}
