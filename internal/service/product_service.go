package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"commerce-backend/internal/cache"
	"commerce-backend/internal/entity"
)

const productCacheTTL = 1 * time.Minute

func productCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

type ProductService struct {
	products ProductStore
	cache    cache.Client
}

// NewProductService creates a new instance of ProductService.
func NewProductService(products ProductStore, cache cache.Client) *ProductService {
	return &ProductService{products: products, cache: cache}
}

// GetByID reads through the cache. A cache failure falls back to the store;
// only the store decides existence.
func (p *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	key := productCacheKey(id)

	cached, err := p.cache.Get(ctx, key)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		logger.Error().Err(err).Msgf("Error reading product %s from cache", id)
	}
	if cached != "" {
		product := &entity.Product{}
		if err := json.Unmarshal([]byte(cached), product); err == nil {
			return product, nil
		}
		logger.Warn().Msgf("Discarding unreadable cache entry for product %s", id)
	}

	product, err := p.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(product); err == nil {
		if err := p.cache.Set(ctx, key, string(payload), productCacheTTL); err != nil {
			logger.Error().Err(err).Msgf("Error caching product %s", id)
		}
	}

	return product, nil
}

func (p *ProductService) Create(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	now := time.Now().UTC()
	product.ID = uuid.New()
	product.CreatedAt = now
	product.UpdatedAt = now

	created, err := p.products.CreateProduct(ctx, product)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating product")
		return nil, err
	}
	return created, nil
}

func (p *ProductService) Update(ctx context.Context, id uuid.UUID, product *entity.Product) (*entity.Product, error) {
	product.ID = id
	product.UpdatedAt = time.Now().UTC()

	updated, err := p.products.UpdateProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	p.invalidate(ctx, id)
	return updated, nil
}

func (p *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := p.products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	p.invalidate(ctx, id)
	return nil
}

func (p *ProductService) List(ctx context.Context) ([]*entity.Product, error) {
	return p.products.ListProducts(ctx)
}

func (p *ProductService) SearchByName(ctx context.Context, name string) ([]*entity.Product, error) {
	return p.products.SearchProductsByName(ctx, name)
}

func (p *ProductService) ListByCategory(ctx context.Context, category string) ([]*entity.Product, error) {
	return p.products.ListProductsByCategory(ctx, category)
}

func (p *ProductService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := p.cache.Del(ctx, productCacheKey(id)); err != nil {
		logger.Error().Err(err).Msgf("Error invalidating cache for product %s", id)
	}
}
