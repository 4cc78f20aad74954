package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"commerce-backend/internal/entity"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db}
}

const productColumns = `id, name, description, category, price, stock, created_at, updated_at`

func (r *ProductRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product := &entity.Product{}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID, &product.Name, &product.Description, &product.Category,
		&product.Price, &product.Stock, &product.CreatedAt, &product.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *ProductRepository) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `INSERT INTO products (` + productColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Description, product.Category,
		product.Price, product.Stock, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `UPDATE products SET name = ?, description = ?, category = ?, price = ?, stock = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, product.Category,
		product.Price, product.Stock, product.UpdatedAt, product.ID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, entity.ErrProductNotFound
	}
	return product, nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products`)
}

func (r *ProductRepository) SearchProductsByName(ctx context.Context, name string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name LIKE ?`
	return r.queryProducts(ctx, query, "%"+name+"%")
}

func (r *ProductRepository) ListProductsByCategory(ctx context.Context, category string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category = ?`
	return r.queryProducts(ctx, query, category)
}

func (r *ProductRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		product := &entity.Product{}
		err := rows.Scan(
			&product.ID, &product.Name, &product.Description, &product.Category,
			&product.Price, &product.Stock, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
