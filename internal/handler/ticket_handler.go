package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/eventful/ticketing-service/internal/dto"
	"github.com/eventful/ticketing-service/internal/service"
	"github.com/labstack/echo/v4"
)

// scanRejection is the uniform client-facing message for every scan failure.
// The real cause (bad signature, stale token, already used, unpaid) stays
// server-side so the scanning endpoint cannot be used as an oracle.
const scanRejection = "invalid or already-used ticket"

type TicketHandler struct {
	svc service.TicketService
}

func NewTicketHandler(svc service.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

func (h *TicketHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/events/:id/tickets", h.PurchaseTicket)
	e.GET("/api/v1/events/:id/attendance", h.GetAttendance)

	e.POST("/api/v1/tickets/scan", h.ScanTicket)
	e.POST("/api/v1/tickets/:id/refund", h.RefundTicket)
	e.GET("/api/v1/tickets/:id", h.GetTicket)
	e.GET("/api/v1/users/:id/tickets", h.ListUserTickets)
}

func (h *TicketHandler) PurchaseTicket(c echo.Context) error {
	eventID := c.Param("id")

	var req dto.PurchaseTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	ticket, err := h.svc.Purchase(c.Request().Context(), req.UserID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrEventNotPublished):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateTicket):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrCapacityExceeded):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "could not purchase ticket")
		}
	}

	return c.JSON(http.StatusCreated, dto.ToTicketResponse(ticket))
}

func (h *TicketHandler) ScanTicket(c echo.Context) error {
	var req dto.ScanTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.QRData == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "qr_data is required")
	}

	ticket, err := h.svc.Scan(c.Request().Context(), req.QRData)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken),
			errors.Is(err, service.ErrTicketNotFound),
			errors.Is(err, service.ErrAlreadyScanned),
			errors.Is(err, service.ErrPaymentNotCompleted):
			return echo.NewHTTPError(http.StatusBadRequest, scanRejection)
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "could not scan ticket")
		}
	}

	return c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}

func (h *TicketHandler) RefundTicket(c echo.Context) error {
	ticketID := c.Param("id")

	var req dto.RefundTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	ticket, err := h.svc.Refund(c.Request().Context(), ticketID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrAlreadyUsed):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrNotRefundable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrGateway):
			return echo.NewHTTPError(http.StatusBadGateway, "refund could not be completed")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "could not refund ticket")
		}
	}

	return c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}

func (h *TicketHandler) GetTicket(c echo.Context) error {
	ticketID := c.Param("id")
	userID := c.QueryParam("user_id")

	ticket, err := h.svc.GetTicket(c.Request().Context(), ticketID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "could not load ticket")
		}
	}

	return c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}

func (h *TicketHandler) ListUserTickets(c echo.Context) error {
	userID := c.Param("id")
	page, limit := pagination(c)

	tickets, total, err := h.svc.ListUserTickets(c.Request().Context(), userID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list tickets")
	}

	resp := dto.TicketListResponse{
		Tickets: make([]dto.TicketResponse, len(tickets)),
		Total:   total,
		Pages:   dto.Pages(total, limit),
	}
	for i := range tickets {
		resp.Tickets[i] = dto.ToTicketResponse(&tickets[i])
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *TicketHandler) GetAttendance(c echo.Context) error {
	eventID := c.Param("id")

	stats, err := h.svc.AttendanceStats(c.Request().Context(), eventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load attendance stats")
	}

	return c.JSON(http.StatusOK, stats)
}

func pagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}
