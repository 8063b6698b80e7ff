package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eventful/ticketing-service/internal/models"
	"github.com/eventful/ticketing-service/pkg/paystack"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// newFakeDB returns a gorm handle whose Transaction just runs the callback.
// Repository mocks ignore the tx argument, so no connection is needed.
type fakeConnPool struct{ gorm.ConnPool }

func (fakeConnPool) Commit() error   { return nil }
func (fakeConnPool) Rollback() error { return nil }

func newFakeDB() *gorm.DB {
	db := &gorm.DB{Config: &gorm.Config{DisableNestedTransaction: true}}
	db.Statement = &gorm.Statement{DB: db, ConnPool: fakeConnPool{}}
	return db
}

// --- Mock TicketRepository ---

type mockTicketRepo struct {
	createFn           func(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error
	findByIDFn         func(ctx context.Context, id string) (*models.Ticket, error)
	findByQRCodeFn     func(ctx context.Context, qrData string) (*models.Ticket, error)
	findActiveFn       func(ctx context.Context, tx *gorm.DB, userID, eventID string) (*models.Ticket, error)
	findByUserFn       func(ctx context.Context, userID string, page, limit int) ([]models.Ticket, int64, error)
	markScannedFn      func(ctx context.Context, id string, at time.Time) (int64, error)
	markRefundedFn     func(ctx context.Context, tx *gorm.DB, id string) (int64, error)
	reinstateFn        func(ctx context.Context, tx *gorm.DB, id string) error
	countActiveFn      func(ctx context.Context, eventID string) (int64, error)
	countScannedFn     func(ctx context.Context, eventID string) (int64, error)
}

func (m *mockTicketRepo) Create(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error {
	if m.createFn != nil {
		return m.createFn(ctx, tx, ticket)
	}
	return nil
}
func (m *mockTicketRepo) FindByID(ctx context.Context, id string) (*models.Ticket, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockTicketRepo) FindByQRCode(ctx context.Context, qrData string) (*models.Ticket, error) {
	return m.findByQRCodeFn(ctx, qrData)
}
func (m *mockTicketRepo) FindActiveByUserAndEvent(ctx context.Context, tx *gorm.DB, userID, eventID string) (*models.Ticket, error) {
	if m.findActiveFn != nil {
		return m.findActiveFn(ctx, tx, userID, eventID)
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockTicketRepo) FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Ticket, int64, error) {
	return m.findByUserFn(ctx, userID, page, limit)
}
func (m *mockTicketRepo) MarkScanned(ctx context.Context, id string, at time.Time) (int64, error) {
	return m.markScannedFn(ctx, id, at)
}
func (m *mockTicketRepo) MarkRefunded(ctx context.Context, tx *gorm.DB, id string) (int64, error) {
	return m.markRefundedFn(ctx, tx, id)
}
func (m *mockTicketRepo) Reinstate(ctx context.Context, tx *gorm.DB, id string) error {
	if m.reinstateFn != nil {
		return m.reinstateFn(ctx, tx, id)
	}
	return nil
}
func (m *mockTicketRepo) CountActiveByEvent(ctx context.Context, eventID string) (int64, error) {
	return m.countActiveFn(ctx, eventID)
}
func (m *mockTicketRepo) CountScannedByEvent(ctx context.Context, eventID string) (int64, error) {
	return m.countScannedFn(ctx, eventID)
}
func (m *mockTicketRepo) GetDB() *gorm.DB { return newFakeDB() }

// --- Mock EventRepository ---

type mockEventRepo struct {
	findByIDFn    func(ctx context.Context, id string) (*models.Event, error)
	reserveSeatFn func(ctx context.Context, tx *gorm.DB, eventID string) (bool, error)
	releaseSeatFn func(ctx context.Context, tx *gorm.DB, eventID string) error
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockEventRepo) ReserveSeat(ctx context.Context, tx *gorm.DB, eventID string) (bool, error) {
	if m.reserveSeatFn != nil {
		return m.reserveSeatFn(ctx, tx, eventID)
	}
	return true, nil
}
func (m *mockEventRepo) ReleaseSeat(ctx context.Context, tx *gorm.DB, eventID string) error {
	if m.releaseSeatFn != nil {
		return m.releaseSeatFn(ctx, tx, eventID)
	}
	return nil
}

// --- Mock PaymentRepository ---

type mockPaymentRepo struct {
	createFn          func(ctx context.Context, payment *models.Payment) error
	deleteFn          func(ctx context.Context, id string) error
	findByIDFn        func(ctx context.Context, id string) (*models.Payment, error)
	findByTicketFn    func(ctx context.Context, ticketID string) (*models.Payment, error)
	findByReferenceFn func(ctx context.Context, reference string) (*models.Payment, error)
	findByUserFn      func(ctx context.Context, userID string, page, limit int) ([]models.Payment, int64, error)
	updateReferenceFn func(ctx context.Context, id, reference string) error
	markCompletedFn   func(ctx context.Context, id string, at time.Time) (int64, error)
	markFailedFn      func(ctx context.Context, id string) error
	markRefundedFn    func(ctx context.Context, id string) (int64, error)
	totalRevenueFn    func(ctx context.Context, eventID string) (decimal.Decimal, error)
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	if m.createFn != nil {
		return m.createFn(ctx, payment)
	}
	return nil
}
func (m *mockPaymentRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockPaymentRepo) FindByTicketID(ctx context.Context, ticketID string) (*models.Payment, error) {
	return m.findByTicketFn(ctx, ticketID)
}
func (m *mockPaymentRepo) FindByReference(ctx context.Context, reference string) (*models.Payment, error) {
	return m.findByReferenceFn(ctx, reference)
}
func (m *mockPaymentRepo) FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Payment, int64, error) {
	return m.findByUserFn(ctx, userID, page, limit)
}
func (m *mockPaymentRepo) UpdateReference(ctx context.Context, id, reference string) error {
	if m.updateReferenceFn != nil {
		return m.updateReferenceFn(ctx, id, reference)
	}
	return nil
}
func (m *mockPaymentRepo) MarkCompleted(ctx context.Context, id string, at time.Time) (int64, error) {
	return m.markCompletedFn(ctx, id, at)
}
func (m *mockPaymentRepo) MarkFailed(ctx context.Context, id string) error {
	if m.markFailedFn != nil {
		return m.markFailedFn(ctx, id)
	}
	return nil
}
func (m *mockPaymentRepo) MarkRefunded(ctx context.Context, id string) (int64, error) {
	return m.markRefundedFn(ctx, id)
}
func (m *mockPaymentRepo) TotalRevenue(ctx context.Context, eventID string) (decimal.Decimal, error) {
	return m.totalRevenueFn(ctx, eventID)
}

// --- Mock Gateway ---

type mockGateway struct {
	initializeFn func(ctx context.Context, email string, amountMinor int64, reference string, metadata map[string]string) (*paystack.InitializeResult, error)
	verifyFn     func(ctx context.Context, reference string) (*paystack.VerifyResult, error)
	refundFn     func(ctx context.Context, transactionReference string) error
}

func (m *mockGateway) Initialize(ctx context.Context, email string, amountMinor int64, reference string, metadata map[string]string) (*paystack.InitializeResult, error) {
	return m.initializeFn(ctx, email, amountMinor, reference, metadata)
}
func (m *mockGateway) Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
	return m.verifyFn(ctx, reference)
}
func (m *mockGateway) Refund(ctx context.Context, transactionReference string) error {
	if m.refundFn != nil {
		return m.refundFn(ctx, transactionReference)
	}
	return nil
}

// --- Mock EventCache and Publisher ---

// mockCache stores entries like the real cache does: JSON under the event ID.
type mockCache struct {
	entries     map[string][]byte
	sets        []string
	invalidated []string
	err         error
}

func (m *mockCache) Get(ctx context.Context, eventID string, dest any) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	raw, ok := m.entries[eventID]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *mockCache) Set(ctx context.Context, eventID string, value any) error {
	if m.err != nil {
		return m.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[eventID] = raw
	m.sets = append(m.sets, eventID)
	return nil
}

func (m *mockCache) Invalidate(ctx context.Context, eventID string) error {
	m.invalidated = append(m.invalidated, eventID)
	delete(m.entries, eventID)
	return m.err
}

type mockPublisher struct {
	published []string
	err       error
}

func (m *mockPublisher) Publish(routingKey string, payload any) error {
	m.published = append(m.published, routingKey)
	return m.err
}

// --- Mock PaymentRefunder ---

type mockRefunder struct {
	refundFn func(ctx context.Context, paymentID, userID string) (*models.Payment, error)
}

func (m *mockRefunder) Refund(ctx context.Context, paymentID, userID string) (*models.Payment, error) {
	return m.refundFn(ctx, paymentID, userID)
}
