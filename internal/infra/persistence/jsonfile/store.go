// Package jsonfile stores the catalog and the order book as JSON documents
// on local disk: products.json and orders.json, both keyed by id.
package jsonfile

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"storebot/internal/domain/entity"
	"storebot/internal/domain/repository"
	"storebot/internal/errors"
	"storebot/internal/infra/persistence/memory"

	"github.com/samber/lo"
)

const (
	productsFile = "products.json"
	ordersFile   = "orders.json"
)

// Store keeps both documents in memory and rewrites the affected file
// after each mutation.
type Store struct {
	dir    string
	logger *slog.Logger

	mu       sync.RWMutex
	products map[string]*entity.Product
	orders   map[string]*entity.Order
}

var (
	_ repository.CatalogRepository = (*Store)(nil)
	_ repository.OrderRepository   = (*Store)(nil)
)

// Open loads the documents from dir, creating the directory if needed.
// Missing files are treated as empty.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create data dir %s", dir)
	}

	s := &Store{
		dir:      dir,
		logger:   logger,
		products: make(map[string]*entity.Product),
		orders:   make(map[string]*entity.Order),
	}

	if err := s.read(productsFile, &s.products); err != nil {
		return nil, err
	}
	if err := s.read(ordersFile, &s.orders); err != nil {
		return nil, err
	}

	logger.Info("JSON store opened",
		slog.String("dir", dir),
		slog.Int("products", len(s.products)),
		slog.Int("orders", len(s.orders)),
	)

	return s, nil
}

func (s *Store) read(name string, into any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "read %s", name)
	}
	if len(data) == 0 {
		return nil
	}

	return errors.Wrapf(json.Unmarshal(data, into), "decode %s", name)
}

// write replaces name atomically through a temp file and rename.
func (s *Store) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", name)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp for %s", name)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", name)
	}

	return errors.Wrapf(os.Rename(tmp.Name(), filepath.Join(s.dir, name)), "replace %s", name)
}

func (s *Store) ListProducts(_ context.Context) ([]*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := lo.MapToSlice(s.products, func(_ string, p *entity.Product) *entity.Product {
		cp := *p
		return &cp
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (s *Store) FindProduct(_ context.Context, id string) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p

	return &cp, nil
}

func (s *Store) PutProduct(_ context.Context, product *entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	prev, existed := s.products[product.ID]
	if existed {
		product.CreatedAt = prev.CreatedAt
	} else if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	cp := *product
	s.products[product.ID] = &cp
	if err := s.write(productsFile, s.products); err != nil {
		if existed {
			s.products[product.ID] = prev
		} else {
			delete(s.products, product.ID)
		}

		return err
	}

	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}

	delete(s.products, id)
	if err := s.write(productsFile, s.products); err != nil {
		s.products[id] = prev

		return err
	}

	return nil
}

func (s *Store) CreateOrder(_ context.Context, order *entity.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; ok {
		return repository.ErrDuplicateOrder
	}

	s.orders[order.ID] = order.Clone()
	if err := s.write(ordersFile, s.orders); err != nil {
		delete(s.orders, order.ID)

		return err
	}

	return nil
}

func (s *Store) FindOrder(_ context.Context, id string) (*entity.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}

	return o.Clone(), nil
}

func (s *Store) ListOrders(_ context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return memory.ApplyFilter(lo.Values(s.orders), filter), nil
}

func (s *Store) UpdateOrder(_ context.Context, order *entity.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.orders[order.ID]
	if !ok {
		return repository.ErrOrderNotFound
	}

	s.orders[order.ID] = order.Clone()
	if err := s.write(ordersFile, s.orders); err != nil {
		s.orders[order.ID] = prev

		return err
	}

	return nil
}
