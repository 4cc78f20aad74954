package api

import (
	"github.com/labstack/echo/v4"

	"commerce-backend/internal/entity"
	"commerce-backend/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new instance of PaymentHandler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePreference builds a gateway checkout session --> POST /payments/create-preference
func (h *PaymentHandler) CreatePreference(c echo.Context) error {
	req := entity.PreferenceRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if req.OrderID == "" || len(req.Items) == 0 {
		return c.JSON(400, map[string]string{"error": "order id and items are required"})
	}

	pref, err := h.paymentService.BuildPreference(c.Request().Context(), &req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, pref)
}

// Webhook acknowledges gateway notifications --> POST /payments/webhook?type=&id=
func (h *PaymentHandler) Webhook(c echo.Context) error {
	payload := map[string]interface{}{}
	if err := c.Bind(&payload); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid notification payload"})
	}

	notificationType := c.QueryParam("type")
	id := c.QueryParam("id")

	if err := h.paymentService.HandleWebhook(c.Request().Context(), notificationType, id, payload); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "notification received"})
}

// PaymentStatus --> GET /payments/status/:paymentId
func (h *PaymentHandler) PaymentStatus(c echo.Context) error {
	status, err := h.paymentService.GetPaymentStatus(c.Request().Context(), c.Param("paymentId"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{
		"payment_id": c.Param("paymentId"),
		"status":     status,
	})
}
