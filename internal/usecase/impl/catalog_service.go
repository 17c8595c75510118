// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"storebot/internal/domain/entity"
	domainerrors "storebot/internal/domain/errors"
	"storebot/internal/domain/repository"
	"storebot/internal/errors"
	"storebot/internal/usecase"
)

// catalogService caches the catalog in memory. Every mutation goes to the
// store first and then reloads the cache before returning.
type catalogService struct {
	repo   repository.CatalogRepository
	logger *slog.Logger

	mu     sync.RWMutex
	loaded bool
	byID   map[string]entity.Product
	order  []string
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(repo repository.CatalogRepository, logger *slog.Logger) usecase.CatalogUsecase {
	return &catalogService{
		repo:   repo,
		logger: logger,
		byID:   make(map[string]entity.Product),
	}
}

// List returns every product ordered by id.
func (srv *catalogService) List(ctx context.Context) ([]*entity.Product, error) {
	if err := srv.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	srv.mu.RLock()
	defer srv.mu.RUnlock()

	out := make([]*entity.Product, 0, len(srv.order))
	for _, id := range srv.order {
		p := srv.byID[id]
		out = append(out, &p)
	}

	return out, nil
}

// Get returns a copy of the cached product.
func (srv *catalogService) Get(ctx context.Context, id string) (*entity.Product, error) {
	if err := srv.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	srv.mu.RLock()
	defer srv.mu.RUnlock()

	p, ok := srv.byID[id]
	if !ok {
		return nil, errors.Wrapf(domainerrors.ErrProductNotFound, "product %q", id)
	}

	return &p, nil
}

// Put validates and stores a product, then reloads the cache.
func (srv *catalogService) Put(ctx context.Context, product *entity.Product) error {
	if err := product.Validate(); err != nil {
		return errors.Wrap(domainerrors.ErrInvalidProduct, err.Error())
	}

	if err := srv.repo.PutProduct(ctx, product); err != nil {
		return domainerrors.NewStorageError(err, "put product")
	}
	srv.logger.Info("Product saved", slog.String("productID", product.ID))

	return srv.Reload(ctx)
}

// Delete removes a product, then reloads the cache.
func (srv *catalogService) Delete(ctx context.Context, id string) error {
	if err := srv.repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return errors.Wrapf(domainerrors.ErrProductNotFound, "product %q", id)
		}

		return domainerrors.NewStorageError(err, "delete product")
	}
	srv.logger.Info("Product deleted", slog.String("productID", id))

	return srv.Reload(ctx)
}

// Reload replaces the cache with the store contents. Stored products that
// fail validation are left out.
func (srv *catalogService) Reload(ctx context.Context) error {
	products, err := srv.repo.ListProducts(ctx)
	if err != nil {
		srv.Invalidate()

		return domainerrors.NewStorageError(err, "list products")
	}

	byID := make(map[string]entity.Product, len(products))
	order := make([]string, 0, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			srv.logger.Warn("Skipping invalid stored product", slog.String("productID", p.ID), slog.Any("error", err))
			continue
		}
		byID[p.ID] = *p
		order = append(order, p.ID)
	}
	sort.Strings(order)

	srv.mu.Lock()
	srv.byID = byID
	srv.order = order
	srv.loaded = true
	srv.mu.Unlock()

	srv.logger.Debug("Catalog reloaded", slog.Int("products", len(order)))

	return nil
}

// Invalidate drops the cache; the next read reloads it.
func (srv *catalogService) Invalidate() {
	srv.mu.Lock()
	srv.loaded = false
	srv.mu.Unlock()
}

func (srv *catalogService) ensureLoaded(ctx context.Context) error {
	srv.mu.RLock()
	loaded := srv.loaded
	srv.mu.RUnlock()

	if loaded {
		return nil
	}

	return srv.Reload(ctx)
}
