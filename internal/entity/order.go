package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const OrderStatusPending = "pending"

type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Status          string          `json:"status"` // e.g. "pending", "paid", "cancelled"
	Total           decimal.Decimal `json:"total"`
	ShippingAddress string          `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem locks the unit price at order time, decoupled from the
// product's current price.
type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest carries the cart. UserID may be zero, in which case the
// purchaser is resolved (or created) by email.
type CreateOrderRequest struct {
	UserID          uuid.UUID          `json:"user_id"`
	Email           string             `json:"email"`
	Name            string             `json:"name"`
	Total           decimal.Decimal    `json:"total"`
	ShippingAddress string             `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
	Items           []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

/*
MySQL schema:

CREATE TABLE orders (
	id CHAR(36) PRIMARY KEY,
	user_id CHAR(36) NOT NULL,
	status VARCHAR(30) NOT NULL,
	total DECIMAL(12,2) NOT NULL,
	shipping_address VARCHAR(255) NOT NULL,
	payment_method VARCHAR(50) NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE order_items (
	id CHAR(36) PRIMARY KEY,
	order_id CHAR(36) NOT NULL,
	product_id CHAR(36) NOT NULL,
	quantity INT NOT NULL,
	unit_price DECIMAL(12,2) NOT NULL,
	FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
);
*/
