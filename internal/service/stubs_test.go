package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"commerce-backend/internal/entity"
)

// In-memory stores mirroring the MySQL repositories' contracts.

type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*entity.User)}
}

func (m *memUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memUserStore) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, entity.ErrUserNotFound
}

func (m *memUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserStore) CreateUser(_ context.Context, user *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return nil, entity.ErrEmailTaken
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return user, nil
}

func (m *memUserStore) UpdateUser(_ context.Context, user *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return nil, entity.ErrUserNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return user, nil
}

func (m *memUserStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return entity.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserStore) ListUsers(_ context.Context) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []*entity.User
	for _, user := range m.users {
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}

type memProductStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*entity.Product
}

func newMemProductStore() *memProductStore {
	return &memProductStore{products: make(map[uuid.UUID]*entity.Product)}
}

func (m *memProductStore) GetProductByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return nil, entity.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (m *memProductStore) CreateProduct(_ context.Context, product *entity.Product) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *product
	m.products[product.ID] = &copied
	return product, nil
}

func (m *memProductStore) UpdateProduct(_ context.Context, product *entity.Product) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return nil, entity.ErrProductNotFound
	}
	copied := *product
	m.products[product.ID] = &copied
	return product, nil
}

func (m *memProductStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return entity.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memProductStore) ListProducts(_ context.Context) ([]*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var products []*entity.Product
	for _, product := range m.products {
		copied := *product
		products = append(products, &copied)
	}
	return products, nil
}

func (m *memProductStore) SearchProductsByName(ctx context.Context, name string) ([]*entity.Product, error) {
	return m.ListProducts(ctx)
}

func (m *memProductStore) ListProductsByCategory(_ context.Context, category string) ([]*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var products []*entity.Product
	for _, product := range m.products {
		if product.Category == category {
			copied := *product
			products = append(products, &copied)
		}
	}
	return products, nil
}

// memOrderStore honors the OrderStore contract: CreateOrder checks and
// debits every line item's stock against the product store, all or nothing.
type memOrderStore struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]*entity.Order
	products *memProductStore
}

func newMemOrderStore(products *memProductStore) *memOrderStore {
	return &memOrderStore{orders: make(map[uuid.UUID]*entity.Order), products: products}
}

func (m *memOrderStore) CreateOrder(_ context.Context, order *entity.Order) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products.mu.Lock()
	defer m.products.mu.Unlock()

	for _, item := range order.Items {
		product, ok := m.products.products[item.ProductID]
		if !ok {
			return nil, entity.ErrProductNotFound
		}
		if product.Stock < item.Quantity {
			return nil, entity.ErrInsufficientStock
		}
	}
	for _, item := range order.Items {
		m.products.products[item.ProductID].Stock -= item.Quantity
	}

	copied := *order
	m.orders[order.ID] = &copied
	return order, nil
}

func (m *memOrderStore) GetOrderByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, entity.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *memOrderStore) ListOrdersByUser(_ context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []*entity.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			copied := *order
			orders = append(orders, &copied)
		}
	}
	return orders, nil
}

func (m *memOrderStore) ListOrders(_ context.Context) ([]*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []*entity.Order
	for _, order := range m.orders {
		copied := *order
		orders = append(orders, &copied)
	}
	return orders, nil
}

func (m *memOrderStore) UpdateOrder(_ context.Context, order *entity.Order) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[order.ID]; !ok {
		return nil, entity.ErrOrderNotFound
	}
	copied := *order
	m.orders[order.ID] = &copied
	return order, nil
}

func (m *memOrderStore) UpdateOrderStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return entity.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (m *memOrderStore) DeleteOrder(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return entity.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *memOrderStore) CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	orders, _ := m.ListOrdersByUser(ctx, userID)
	return int64(len(orders)), nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, key)
	return nil
}
