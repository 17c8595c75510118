// Package memory implements the repositories on process memory. Used by
// default and in tests; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"storebot/internal/domain/entity"
	"storebot/internal/domain/repository"

	"github.com/samber/lo"
)

// Store is the combined in-memory catalog and order store.
type Store struct {
	mu       sync.RWMutex
	products map[string]entity.Product
	orders   map[string]*entity.Order
}

var (
	_ repository.CatalogRepository = (*Store)(nil)
	_ repository.OrderRepository   = (*Store)(nil)
)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		products: make(map[string]entity.Product),
		orders:   make(map[string]*entity.Order),
	}
}

func (m *Store) ListProducts(_ context.Context) ([]*entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*entity.Product, 0, len(m.products))
	for _, p := range m.products {
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (m *Store) FindProduct(_ context.Context, id string) (*entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}

	return &p, nil
}

func (m *Store) PutProduct(_ context.Context, product *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := m.products[product.ID]; ok {
		product.CreatedAt = existing.CreatedAt
	} else if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	m.products[product.ID] = *product

	return nil
}

func (m *Store) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)

	return nil
}

func (m *Store) CreateOrder(_ context.Context, order *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[order.ID]; ok {
		return repository.ErrDuplicateOrder
	}
	m.orders[order.ID] = order.Clone()

	return nil
}

func (m *Store) FindOrder(_ context.Context, id string) (*entity.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}

	return o.Clone(), nil
}

func (m *Store) ListOrders(_ context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := lo.MapToSlice(m.orders, func(_ string, o *entity.Order) *entity.Order { return o })

	return ApplyFilter(all, filter), nil
}

func (m *Store) UpdateOrder(_ context.Context, order *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[order.ID]; !ok {
		return repository.ErrOrderNotFound
	}
	m.orders[order.ID] = order.Clone()

	return nil
}

// ApplyFilter sorts orders newest first and applies the filter. The
// returned orders are copies.
func ApplyFilter(orders []*entity.Order, filter repository.OrderFilter) []*entity.Order {
	matched := lo.Filter(orders, func(o *entity.Order, _ int) bool {
		if filter.Status != nil && o.Status != *filter.Status {
			return false
		}
		if filter.UserID != nil && o.UserID != *filter.UserID {
			return false
		}
		return true
	})

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	return lo.Map(matched, func(o *entity.Order, _ int) *entity.Order { return o.Clone() })
}
