package service

import (
	"context"

	"github.com/google/uuid"

	"commerce-backend/internal/entity"
)

// Store interfaces implemented by the MySQL repositories. Services accept
// these so tests can substitute in-memory fakes.

type UserStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	UpdateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context) ([]*entity.User, error)
}

type ProductStore interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context) ([]*entity.Product, error)
	SearchProductsByName(ctx context.Context, name string) ([]*entity.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]*entity.Product, error)
}

// OrderStore's CreateOrder must debit stock and insert the order atomically:
// either every line item's conditional stock decrement succeeds and the order
// is persisted, or nothing is written.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error)
	ListOrders(ctx context.Context) ([]*entity.Order, error)
	UpdateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
