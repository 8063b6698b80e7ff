package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/eventful/ticketing-service/internal/models"
	"github.com/eventful/ticketing-service/internal/monitoring"
	"github.com/eventful/ticketing-service/internal/qrcode"
	"github.com/eventful/ticketing-service/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketService interface {
	Purchase(ctx context.Context, userID, eventID string) (*models.Ticket, error)
	Scan(ctx context.Context, qrData string) (*models.Ticket, error)
	Refund(ctx context.Context, ticketID, userID string) (*models.Ticket, error)
	GetTicket(ctx context.Context, ticketID, userID string) (*models.Ticket, error)
	ListUserTickets(ctx context.Context, userID string, page, limit int) ([]models.Ticket, int64, error)
	AttendanceStats(ctx context.Context, eventID string) (*AttendanceStats, error)
}

type AttendanceStats struct {
	TotalTickets   int64   `json:"total_tickets"`
	ScannedTickets int64   `json:"scanned_tickets"`
	ScanRate       float64 `json:"scan_rate"`
}

// PaymentRefunder is the slice of the payment workflow the ticket lifecycle
// needs: reversing the completed payment behind a ticket being refunded.
type PaymentRefunder interface {
	Refund(ctx context.Context, paymentID, userID string) (*models.Payment, error)
}

// EventCache fronts event reads. Entries are invalidated after every
// sold-ticket counter mutation; correctness never depends on a hit.
type EventCache interface {
	Get(ctx context.Context, eventID string, dest any) (bool, error)
	Set(ctx context.Context, eventID string, value any) error
	Invalidate(ctx context.Context, eventID string) error
}

// Publisher emits lifecycle events for the notification service.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

type ticketService struct {
	ticketRepo  repository.TicketRepository
	eventRepo   repository.EventRepository
	paymentRepo repository.PaymentRepository
	payments    PaymentRefunder
	codec       *qrcode.Codec
	cache       EventCache
	publisher   Publisher
}

func NewTicketService(
	ticketRepo repository.TicketRepository,
	eventRepo repository.EventRepository,
	paymentRepo repository.PaymentRepository,
	payments PaymentRefunder,
	codec *qrcode.Codec,
	cache EventCache,
	publisher Publisher,
) TicketService {
	return &ticketService{
		ticketRepo:  ticketRepo,
		eventRepo:   eventRepo,
		paymentRepo: paymentRepo,
		payments:    payments,
		codec:       codec,
		cache:       cache,
		publisher:   publisher,
	}
}

// Purchase issues a new active ticket. The capacity reservation, duplicate
// guard and ticket insert run in one transaction so a failure leaves no
// partial writes; the partial unique index on (event_id, user_id) closes the
// duplicate race the pre-check alone would leave open.
func (s *ticketService) Purchase(ctx context.Context, userID, eventID string) (*models.Ticket, error) {
	event, err := s.lookupEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if event.Status != models.EventPublished {
		return nil, ErrEventNotPublished
	}

	var ticket *models.Ticket

	err = s.ticketRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.ticketRepo.FindActiveByUserAndEvent(ctx, tx, userID, eventID)
		if err == nil {
			return ErrDuplicateTicket
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		reserved, err := s.eventRepo.ReserveSeat(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if !reserved {
			return ErrCapacityExceeded
		}

		ticketID := uuid.New().String()
		payload := s.codec.Issue(ticketID, userID, eventID)

		qrData, err := s.codec.Serialize(payload)
		if err != nil {
			return err
		}
		qrImage, err := s.codec.Render(payload)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		ticket = &models.Ticket{
			ID:           ticketID,
			EventID:      eventID,
			UserID:       userID,
			QRCodeData:   qrData,
			QRCodeImage:  qrImage,
			Status:       models.TicketActive,
			PurchaseDate: now,
		}
		if err := s.ticketRepo.Create(ctx, tx, ticket); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateTicket
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateEvent(ctx, eventID)
	monitoring.TicketIssued(eventID)
	s.publish("ticket.issued", ticket)

	return ticket, nil
}

// Scan redeems a ticket for entry. Token failures collapse into a single
// invalid-token outcome so the scanning client learns nothing about the
// signing key. Entry additionally requires the linked payment to be
// completed; ticket status alone does not prove the ticket was paid for.
func (s *ticketService) Scan(ctx context.Context, qrData string) (*models.Ticket, error) {
	payload, err := s.codec.Parse(qrData)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !s.codec.Verify(payload) {
		return nil, ErrInvalidToken
	}

	ticket, err := s.ticketRepo.FindByQRCode(ctx, qrData)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	payment, err := s.paymentRepo.FindByTicketID(ctx, ticket.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotCompleted
		}
		return nil, err
	}
	if payment.Status != models.PaymentCompleted {
		return nil, ErrPaymentNotCompleted
	}

	// Conditional update: of two concurrent scans exactly one succeeds.
	rows, err := s.ticketRepo.MarkScanned(ctx, ticket.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrAlreadyScanned
	}

	updated, err := s.ticketRepo.FindByID(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	monitoring.TicketScanned(ticket.EventID)
	s.publish("ticket.scanned", updated)

	return updated, nil
}

// Refund reverses an unscanned ticket. The payment-side refund owns the
// state transitions (ticket flip, seat release, gateway call, compensation
// on gateway failure); see PaymentService.Refund for the ordering guarantee.
func (s *ticketService) Refund(ctx context.Context, ticketID, userID string) (*models.Ticket, error) {
	ticket, err := s.GetTicket(ctx, ticketID, userID)
	if err != nil {
		return nil, err
	}

	switch ticket.Status {
	case models.TicketRefunded:
		return nil, ErrNotRefundable
	case models.TicketUsed:
		return nil, ErrAlreadyUsed
	}
	if ticket.QRScanned {
		return nil, ErrAlreadyUsed
	}

	payment, err := s.paymentRepo.FindByTicketID(ctx, ticket.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotRefundable
		}
		return nil, err
	}
	if payment.Status != models.PaymentCompleted {
		return nil, ErrNotRefundable
	}

	if _, err := s.payments.Refund(ctx, payment.ID, userID); err != nil {
		return nil, err
	}

	return s.ticketRepo.FindByID(ctx, ticket.ID)
}

func (s *ticketService) GetTicket(ctx context.Context, ticketID, userID string) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	if userID != "" && ticket.UserID != userID {
		return nil, ErrUnauthorized
	}
	return ticket, nil
}

func (s *ticketService) ListUserTickets(ctx context.Context, userID string, page, limit int) ([]models.Ticket, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.ticketRepo.FindByUserID(ctx, userID, page, limit)
}

func (s *ticketService) AttendanceStats(ctx context.Context, eventID string) (*AttendanceStats, error) {
	total, err := s.ticketRepo.CountActiveByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	scanned, err := s.ticketRepo.CountScannedByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	stats := &AttendanceStats{
		TotalTickets:   total,
		ScannedTickets: scanned,
	}
	if total > 0 {
		stats.ScanRate = float64(scanned) / float64(total) * 100
	}
	return stats, nil
}

// lookupEvent reads through the cache. Cache failures degrade to a direct
// store read.
func (s *ticketService) lookupEvent(ctx context.Context, eventID string) (*models.Event, error) {
	if s.cache != nil {
		var cached models.Event
		found, err := s.cache.Get(ctx, eventID, &cached)
		if err != nil {
			log.Printf("[TicketService] cache read failed for event %s: %v", eventID, err)
		} else if found {
			return &cached, nil
		}
	}

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, eventID, event); err != nil {
			log.Printf("[TicketService] cache write failed for event %s: %v", eventID, err)
		}
	}
	return event, nil
}

func (s *ticketService) invalidateEvent(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		log.Printf("[TicketService] cache invalidation failed for event %s: %v", eventID, err)
	}
}

func (s *ticketService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		log.Printf("[TicketService] publish %s failed: %v", routingKey, err)
	}
}
