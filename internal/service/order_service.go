package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"commerce-backend/internal/cache"
	"commerce-backend/internal/entity"
)

// guestPasswordHash is the placeholder credential for users created
// implicitly at checkout. It is not a valid bcrypt hash, so login can never
// succeed against it until the user sets a real password.
const guestPasswordHash = "$2a$10$guest-checkout-placeholder"

const defaultGuestName = "Customer"

// OrderService orchestrates order creation: purchaser resolution, stock
// validation and the atomic debit-and-persist handled by the order store.
type OrderService struct {
	orders    OrderStore
	products  ProductStore
	users     UserStore
	cache     cache.Client
	publisher EventPublisher
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(orders OrderStore, products ProductStore, users UserStore, cache cache.Client, publisher EventPublisher) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		users:     users,
		cache:     cache,
		publisher: publisher,
	}
}

// ResolveOrCreateUserByEmail finds the purchaser by email, creating a guest
// account with a placeholder credential when none exists.
func (s *OrderService) ResolveOrCreateUserByEmail(ctx context.Context, email, name string) (*entity.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, entity.ErrUserNotFound) {
		return nil, err
	}

	if name == "" {
		name = defaultGuestName
	}
	now := time.Now().UTC()
	guest := &entity.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: guestPasswordHash,
		RegisteredAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.CreateUser(ctx, guest)
	if err != nil {
		logger.Error().Err(err).Msgf("Error creating guest user for %s", email)
		return nil, err
	}
	logger.Info().Msgf("Created guest user %s for checkout", created.ID)
	return created, nil
}

// Create validates every line item against current stock, then hands the
// order to the store, whose transaction debits all stock and persists the
// order as one atomic unit. On any failure nothing is persisted.
func (s *OrderService) Create(ctx context.Context, req *entity.CreateOrderRequest) (*entity.Order, error) {
	var purchaser *entity.User
	var err error
	if req.UserID != uuid.Nil {
		purchaser, err = s.users.GetUserByID(ctx, req.UserID)
	} else {
		purchaser, err = s.ResolveOrCreateUserByEmail(ctx, req.Email, req.Name)
	}
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range req.Items {
		product, err := s.products.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < item.Quantity {
			logger.Warn().Msgf("Product %s short on stock: have %d, want %d", product.ID, product.Stock, item.Quantity)
			return nil, entity.ErrInsufficientStock
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	// The total is caller-supplied, not derived. A mismatch against the
	// line-item subtotal is logged but not rejected.
	if !subtotal.Equal(req.Total) {
		logger.Warn().Msgf("Order total %s does not match line-item subtotal %s", req.Total, subtotal)
	}

	now := time.Now().UTC()
	order := &entity.Order{
		ID:              uuid.New(),
		UserID:          purchaser.ID,
		Status:          entity.OrderStatusPending,
		Total:           req.Total,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, entity.OrderItem{
			ID:        uuid.New(),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	created, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating order")
		return nil, err
	}

	// Stock changed under the cache.
	for _, item := range created.Items {
		if err := s.cache.Del(ctx, productCacheKey(item.ProductID)); err != nil {
			logger.Error().Err(err).Msgf("Error invalidating cache for product %s", item.ProductID)
		}
	}

	s.publishOrderEvent(ctx, created, "created")
	return created, nil
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return s.orders.GetOrderByID(ctx, id)
}

// ListByUser returns the user's orders, most recent first.
func (s *OrderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.orders.ListOrdersByUser(ctx, userID)
}

func (s *OrderService) ListAll(ctx context.Context) ([]*entity.Order, error) {
	return s.orders.ListOrders(ctx)
}

// UpdateStatus overwrites the status unconditionally; any string is a legal
// status.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*entity.Order, error) {
	if err := s.orders.UpdateOrderStatus(ctx, id, status); err != nil {
		return nil, err
	}
	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishOrderEvent(ctx, order, "status-updated")
	return order, nil
}

// Update replaces total, shipping address and payment method. Line items and
// stock are not touched.
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req *entity.CreateOrderRequest) (*entity.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	order.Total = req.Total
	order.ShippingAddress = req.ShippingAddress
	order.PaymentMethod = req.PaymentMethod
	order.UpdatedAt = time.Now().UTC()

	return s.orders.UpdateOrder(ctx, order)
}

// Delete removes the order. Stock is not restored.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orders.DeleteOrder(ctx, id); err != nil {
		return err
	}
	s.publishOrderEvent(ctx, &entity.Order{ID: id}, "deleted")
	return nil
}

func (s *OrderService) publishOrderEvent(ctx context.Context, order *entity.Order, event string) {
	key := fmt.Sprintf("order-%s-%s", event, order.ID)
	if err := s.publisher.Publish(ctx, key, order); err != nil {
		logger.Error().Err(err).Msgf("Error publishing order %s event", event)
	}
}
