package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/eventful/ticketing-service/internal/dto"
	"github.com/eventful/ticketing-service/internal/service"
	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/payments/initialize", h.InitializePayment)
	e.GET("/api/v1/payments/verify/:reference", h.VerifyPayment)
	e.POST("/api/v1/payments/webhook", h.Webhook)
	e.POST("/api/v1/payments/:id/refund", h.RefundPayment)
	e.GET("/api/v1/payments/:id", h.GetPayment)
	e.GET("/api/v1/users/:id/payments", h.ListUserPayments)
	e.GET("/api/v1/events/:id/revenue", h.GetRevenue)
}

func (h *PaymentHandler) InitializePayment(c echo.Context) error {
	var req dto.InitializePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" || req.EventID == "" || req.TicketID == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id, event_id, ticket_id and email are required")
	}

	info, err := h.svc.Initialize(c.Request().Context(), service.InitializePaymentInput{
		UserID:   req.UserID,
		EventID:  req.EventID,
		TicketID: req.TicketID,
		Email:    req.Email,
		Amount:   req.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidAmount):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPaymentAlreadyCompleted):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrGateway):
			return echo.NewHTTPError(http.StatusBadGateway, "payment could not be initialized")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "payment could not be initialized")
		}
	}

	return c.JSON(http.StatusOK, dto.CheckoutResponse{
		AuthorizationURL: info.AuthorizationURL,
		AccessCode:       info.AccessCode,
		Reference:        info.Reference,
	})
}

func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	reference := c.Param("reference")
	if reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reference is required")
	}

	payment, err := h.svc.Verify(c.Request().Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPaymentFailed):
			return echo.NewHTTPError(http.StatusBadRequest, "payment could not be completed")
		case errors.Is(err, service.ErrGateway):
			return echo.NewHTTPError(http.StatusBadGateway, "payment could not be verified")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "payment could not be verified")
		}
	}

	return c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// Webhook handles gateway callbacks. Unsupported event types are
// acknowledged with 200 so the gateway stops retrying; a bad signature is
// not.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	rawBody, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read body")
	}
	signature := c.Request().Header.Get("x-paystack-signature")

	payment, err := h.svc.HandleWebhook(c.Request().Context(), rawBody, signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrMalformedWebhook):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUnsupportedEvent):
			return c.JSON(http.StatusOK, dto.ErrorResponse{Message: err.Error()})
		case errors.Is(err, service.ErrPaymentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "webhook could not be processed")
		}
	}

	return c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

func (h *PaymentHandler) RefundPayment(c echo.Context) error {
	paymentID := c.Param("id")

	var req dto.RefundPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	payment, err := h.svc.Refund(c.Request().Context(), paymentID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound), errors.Is(err, service.ErrTicketNotFound):
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
			return echo.NewHTTPError(http.StatusInternalServerError, "refund could not be completed")
		}
	}

	return c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	paymentID := c.Param("id")
	userID := c.QueryParam("user_id")

	payment, err := h.svc.GetPayment(c.Request().Context(), paymentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "could not load payment")
		}
	}

	return c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

func (h *PaymentHandler) ListUserPayments(c echo.Context) error {
	userID := c.Param("id")
	page, limit := pagination(c)

	payments, total, err := h.svc.ListUserPayments(c.Request().Context(), userID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list payments")
	}

	resp := dto.PaymentListResponse{
		Payments: make([]dto.PaymentResponse, len(payments)),
		Total:    total,
		Pages:    dto.Pages(total, limit),
	}
	for i := range payments {
		resp.Payments[i] = dto.ToPaymentResponse(&payments[i])
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) GetRevenue(c echo.Context) error {
	eventID := c.Param("id")

	revenue, err := h.svc.EventRevenue(c.Request().Context(), eventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not compute revenue")
	}

	return c.JSON(http.StatusOK, dto.RevenueResponse{EventID: eventID, Revenue: revenue})
}
