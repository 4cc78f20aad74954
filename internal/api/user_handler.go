package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"commerce-backend/internal/entity"
	"commerce-backend/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new instance of UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register creates a user account and issues a token --> POST /auth/register
func (h *UserHandler) Register(c echo.Context) error {
	req := entity.RegisterRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(400, map[string]string{"error": "email and password are required"})
	}

	user, token, err := h.userService.Register(c.Request().Context(), &req)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(200, map[string]interface{}{"token": token, "user": user})
}

// Login authenticates a user and issues a token --> POST /auth/login
func (h *UserHandler) Login(c echo.Context) error {
	login := entity.LoginRequest{}
	if err := c.Bind(&login); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if login.Email == "" || login.Password == "" {
		return c.JSON(401, map[string]string{"error": "email and password are required"})
	}

	user, token, err := h.userService.Login(c.Request().Context(), login.Email, login.Password)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(200, map[string]interface{}{"token": token, "user": user})
}

// CreateUser creates a user without starting a session --> POST /users
func (h *UserHandler) CreateUser(c echo.Context) error {
	req := entity.RegisterRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	user, _, err := h.userService.Register(c.Request().Context(), &req)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(200, user)
}

// GetUserByID retrieves a user by ID --> GET /users/:id
func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	user, err := h.userService.GetByID(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, user)
}

// GetUserByEmail retrieves a user by email --> GET /users/email/:email
func (h *UserHandler) GetUserByEmail(c echo.Context) error {
	user, err := h.userService.GetByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, user)
}

// ListUsers lists every user --> GET /users
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, users)
}

// UpdateUser applies a partial profile update --> PUT /users/:id
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	req := entity.RegisterRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	user, err := h.userService.Update(c.Request().Context(), id, &req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, user)
}

// DeleteUser removes a user --> DELETE /users/:id
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	if err := h.userService.Delete(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "user deleted"})
}

// UserOrders lists a user's orders, most recent first --> GET /users/:id/orders
func (h *UserHandler) UserOrders(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	orders, err := h.userService.Orders(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, orders)
}

// CountUserOrders --> GET /users/:id/orders/count
func (h *UserHandler) CountUserOrders(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	count, err := h.userService.CountOrders(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]int64{"count": count})
}
