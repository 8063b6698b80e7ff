package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eventful/ticketing-service/internal/dto"
	"github.com/eventful/ticketing-service/internal/models"
	"github.com/eventful/ticketing-service/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTicketService struct {
	purchaseFn   func(ctx context.Context, userID, eventID string) (*models.Ticket, error)
	scanFn       func(ctx context.Context, qrData string) (*models.Ticket, error)
	refundFn     func(ctx context.Context, ticketID, userID string) (*models.Ticket, error)
	getFn        func(ctx context.Context, ticketID, userID string) (*models.Ticket, error)
	listFn       func(ctx context.Context, userID string, page, limit int) ([]models.Ticket, int64, error)
	attendanceFn func(ctx context.Context, eventID string) (*service.AttendanceStats, error)
}

func (m *mockTicketService) Purchase(ctx context.Context, userID, eventID string) (*models.Ticket, error) {
	return m.purchaseFn(ctx, userID, eventID)
}
func (m *mockTicketService) Scan(ctx context.Context, qrData string) (*models.Ticket, error) {
	return m.scanFn(ctx, qrData)
}
func (m *mockTicketService) Refund(ctx context.Context, ticketID, userID string) (*models.Ticket, error) {
	return m.refundFn(ctx, ticketID, userID)
}
func (m *mockTicketService) GetTicket(ctx context.Context, ticketID, userID string) (*models.Ticket, error) {
	return m.getFn(ctx, ticketID, userID)
}
func (m *mockTicketService) ListUserTickets(ctx context.Context, userID string, page, limit int) ([]models.Ticket, int64, error) {
	return m.listFn(ctx, userID, page, limit)
}
func (m *mockTicketService) AttendanceStats(ctx context.Context, eventID string) (*service.AttendanceStats, error) {
	return m.attendanceFn(ctx, eventID)
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func ticketEcho(svc *mockTicketService) *echo.Echo {
	e := echo.New()
	NewTicketHandler(svc).RegisterRoutes(e)
	return e
}

func TestPurchaseTicketEndpoint_Created(t *testing.T) {
	svc := &mockTicketService{
		purchaseFn: func(ctx context.Context, userID, eventID string) (*models.Ticket, error) {
			assert.Equal(t, "user-1", userID)
			assert.Equal(t, "event-1", eventID)
			return &models.Ticket{ID: "ticket-1", EventID: eventID, UserID: userID, Status: models.TicketActive, QRCodeData: "token"}, nil
		},
	}

	rec := doJSON(ticketEcho(svc), http.MethodPost, "/api/v1/events/event-1/tickets", `{"user_id":"user-1"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.TicketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ticket-1", resp.ID)
	assert.Equal(t, models.TicketActive, resp.Status)
	assert.Equal(t, "token", resp.QRCodeData)
}

func TestPurchaseTicketEndpoint_MissingUser(t *testing.T) {
	svc := &mockTicketService{}

	rec := doJSON(ticketEcho(svc), http.MethodPost, "/api/v1/events/event-1/tickets", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchaseTicketEndpoint_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"event not found", service.ErrEventNotFound, http.StatusNotFound},
		{"not published", service.ErrEventNotPublished, http.StatusBadRequest},
		{"duplicate", service.ErrDuplicateTicket, http.StatusConflict},
		{"sold out", service.ErrCapacityExceeded, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockTicketService{
				purchaseFn: func(ctx context.Context, userID, eventID string) (*models.Ticket, error) {
					return nil, tc.err
				},
			}

			rec := doJSON(ticketEcho(svc), http.MethodPost, "/api/v1/events/event-1/tickets", `{"user_id":"user-1"}`)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestScanTicketEndpoint_OK(t *testing.T) {
	svc := &mockTicketService{
		scanFn: func(ctx context.Context, qrData string) (*models.Ticket, error) {
			assert.Equal(t, "token", qrData)
			return &models.Ticket{ID: "ticket-1", Status: models.TicketUsed, QRScanned: true}, nil
		},
	}

	rec := doJSON(ticketEcho(svc), http.MethodPost, "/api/v1/tickets/scan", `{"qr_data":"token"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.TicketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.TicketUsed, resp.Status)
	assert.True(t, resp.QRScanned)
}

func TestScanTicketEndpoint_UniformRejection(t *testing.T) {
	// every scan failure returns the same body so the endpoint leaks nothing
	for _, scanErr := range []error{
		service.ErrInvalidToken,
		service.ErrTicketNotFound,
		service.ErrAlreadyScanned,
		service.ErrPaymentNotCompleted,
	} {
		svc := &mockTicketService{
			scanFn: func(ctx context.Context, qrData string) (*models.Ticket, error) {
				return nil, scanErr
			},
		}

		rec := doJSON(ticketEcho(svc), http.MethodPost, "/api/v1/tickets/scan", `{"qr_data":"token"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "error %v", scanErr)
		assert.Contains(t, rec.Body.String(), scanRejection, "error %v", scanErr)
	}
}

func TestRefundTicketEndpoint_OK(t *testing.T) {
	svc := &mockTicketService{
		refundFn: func(ctx context.Context, ticketID, userID string) (*models.Ticket, error) {
			assert.Equal(t, "ticket-1", ticketID)
			assert.Equal(t, "user-1", userID)
			return &models.Ticket{ID: ticketID, UserID: userID, Status: models.TicketRefunded}, nil
		},
	}

	rec := doJSON(ticketEcho(svc), http.MethodPost, "/api/v1/tickets/ticket-1/refund", `{"user_id":"user-1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.TicketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.TicketRefunded, resp.Status)
}

func TestRefundTicketEndpoint_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", service.ErrTicketNotFound, http.StatusNotFound},
		{"not owner", service.ErrUnauthorized, http.StatusForbidden},
		{"already used", service.ErrAlreadyUsed, http.StatusConflict},
		{"not refundable", service.ErrNotRefundable, http.StatusConflict},
		{"gateway down", service.ErrGateway, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockTicketService{
				refundFn: func(ctx context.Context, ticketID, userID string) (*models.Ticket, error) {
					return nil, tc.err
				},
			}

			rec := doJSON(ticketEcho(svc), http.MethodPost, "/api/v1/tickets/ticket-1/refund", `{"user_id":"user-1"}`)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestGetTicketEndpoint(t *testing.T) {
	svc := &mockTicketService{
		getFn: func(ctx context.Context, ticketID, userID string) (*models.Ticket, error) {
			assert.Equal(t, "user-1", userID)
			return &models.Ticket{ID: ticketID, UserID: userID, Status: models.TicketActive}, nil
		},
	}

	rec := doJSON(ticketEcho(svc), http.MethodGet, "/api/v1/tickets/ticket-1?user_id=user-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListUserTicketsEndpoint_Pagination(t *testing.T) {
	svc := &mockTicketService{
		listFn: func(ctx context.Context, userID string, page, limit int) ([]models.Ticket, int64, error) {
			assert.Equal(t, "user-1", userID)
			assert.Equal(t, 2, page)
			assert.Equal(t, 5, limit)
			return []models.Ticket{{ID: "t1"}, {ID: "t2"}}, 12, nil
		},
	}

	rec := doJSON(ticketEcho(svc), http.MethodGet, "/api/v1/users/user-1/tickets?page=2&limit=5", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.TicketListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Tickets, 2)
	assert.Equal(t, int64(12), resp.Total)
	assert.Equal(t, int64(3), resp.Pages)
}

func TestGetAttendanceEndpoint(t *testing.T) {
	svc := &mockTicketService{
		attendanceFn: func(ctx context.Context, eventID string) (*service.AttendanceStats, error) {
			return &service.AttendanceStats{TotalTickets: 100, ScannedTickets: 40, ScanRate: 40}, nil
		},
	}

	rec := doJSON(ticketEcho(svc), http.MethodGet, "/api/v1/events/event-1/attendance", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var stats service.AttendanceStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(100), stats.TotalTickets)
	assert.InDelta(t, 40.0, stats.ScanRate, 0.001)
}
