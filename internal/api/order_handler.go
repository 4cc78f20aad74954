package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"commerce-backend/internal/entity"
	"commerce-backend/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new instance of OrderHandler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder --> POST /orders
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	req := entity.CreateOrderRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if len(req.Items) == 0 {
		return c.JSON(400, map[string]string{"error": "order has no items"})
	}
	if req.UserID == uuid.Nil && req.Email == "" {
		return c.JSON(400, map[string]string{"error": "a user id or email is required"})
	}

	order, err := h.orderService.Create(c.Request().Context(), &req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, order)
}

// GetOrderByID --> GET /orders/:id
func (h *OrderHandler) GetOrderByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	order, err := h.orderService.GetByID(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, order)
}

// ListOrders --> GET /orders
func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.orderService.ListAll(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, orders)
}

// ListOrdersByUser --> GET /orders/user/:userId
func (h *OrderHandler) ListOrdersByUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid user ID"})
	}

	orders, err := h.orderService.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, orders)
}

// UpdateOrderStatus --> PATCH /orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	body := struct {
		Status string `json:"status"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	order, err := h.orderService.UpdateStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, order)
}

// UpdateOrder --> PUT /orders/:id
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	req := entity.CreateOrderRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	order, err := h.orderService.Update(c.Request().Context(), id, &req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, order)
}

// DeleteOrder --> DELETE /orders/:id
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	if err := h.orderService.Delete(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "order deleted"})
}
