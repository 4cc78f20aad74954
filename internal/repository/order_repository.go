package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"commerce-backend/internal/entity"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db}
}

// CreateOrder debits stock and persists the order with its items in a single
// transaction. The stock debit is a conditional update, so two concurrent
// orders against the same product cannot both pass the check: the row is
// locked for the duration of the statement and stock never goes negative.
// Any failure rolls back every debit in the call.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	debitQuery := `UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?`
	for _, item := range order.Items {
		res, err := tx.ExecContext(ctx, debitQuery, item.Quantity, order.CreatedAt, item.ProductID, item.Quantity)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if affected == 0 {
			// Zero rows means the product is missing or short on stock;
			// look inside the same transaction to tell which.
			var stock int
			err := tx.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = ?`, item.ProductID).Scan(&stock)
			tx.Rollback()
			if errors.Is(err, sql.ErrNoRows) {
				return nil, entity.ErrProductNotFound
			}
			if err != nil {
				return nil, err
			}
			return nil, entity.ErrInsufficientStock
		}
	}

	orderQuery := `INSERT INTO orders (id, user_id, status, total, shipping_address, payment_method, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, orderQuery,
		order.ID, order.UserID, order.Status, order.Total,
		order.ShippingAddress, order.PaymentMethod, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Batch insert the line items.
	itemQuery := `INSERT INTO order_items (id, order_id, product_id, quantity, unit_price) VALUES `
	var values []interface{}
	for _, item := range order.Items {
		itemQuery += "(?, ?, ?, ?, ?),"
		values = append(values, item.ID, order.ID, item.ProductID, item.Quantity, item.UnitPrice)
	}
	itemQuery = itemQuery[:len(itemQuery)-1]

	_, err = tx.ExecContext(ctx, itemQuery, values...)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	orderQuery := `SELECT id, user_id, status, total, shipping_address, payment_method, created_at, updated_at
		FROM orders WHERE id = ?`

	order := &entity.Order{}
	err := r.db.QueryRowContext(ctx, orderQuery, id).Scan(
		&order.ID, &order.UserID, &order.Status, &order.Total,
		&order.ShippingAddress, &order.PaymentMethod, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.itemsForOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ListOrdersByUser returns a user's orders, most recent first.
func (r *OrderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	query := `SELECT id, user_id, status, total, shipping_address, payment_method, created_at, updated_at
		FROM orders WHERE user_id = ? ORDER BY created_at DESC`
	return r.listOrders(ctx, query, userID)
}

func (r *OrderRepository) ListOrders(ctx context.Context) ([]*entity.Order, error) {
	query := `SELECT id, user_id, status, total, shipping_address, payment_method, created_at, updated_at
		FROM orders`
	return r.listOrders(ctx, query)
}

func (r *OrderRepository) listOrders(ctx context.Context, query string, args ...interface{}) ([]*entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order := &entity.Order{}
		err := rows.Scan(
			&order.ID, &order.UserID, &order.Status, &order.Total,
			&order.ShippingAddress, &order.PaymentMethod, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		items, err := r.itemsForOrder(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}

	return orders, nil
}

func (r *OrderRepository) itemsForOrder(ctx context.Context, orderID uuid.UUID) ([]entity.OrderItem, error) {
	query := `SELECT id, product_id, quantity, unit_price FROM order_items WHERE order_id = ?`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		item := entity.OrderItem{}
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateOrder replaces total, shipping address and payment method. Line
// items and stock are untouched.
func (r *OrderRepository) UpdateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	query := `UPDATE orders SET total = ?, shipping_address = ?, payment_method = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		order.Total, order.ShippingAddress, order.PaymentMethod, order.UpdatedAt, order.ID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, entity.ErrOrderNotFound
	}
	return order, nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrOrderNotFound
	}
	return nil
}

// DeleteOrder removes the order and its items. Stock is not restored.
func (r *OrderRepository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, id)
	if err != nil {
		tx.Rollback()
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}
	if affected == 0 {
		tx.Rollback()
		return entity.ErrOrderNotFound
	}

	return tx.Commit()
}

func (r *OrderRepository) CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
