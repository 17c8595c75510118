// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"storebot/internal/domain/entity"

	"github.com/pkg/errors"
)

// Domain-specific errors for persistence.
var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound is returned when an order is not found.
	ErrOrderNotFound = errors.New("order not found")
	// ErrSessionNotFound is returned when a user has no active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrDuplicateOrder is returned when an order id is already taken.
	ErrDuplicateOrder = errors.New("order already exists")
)

// CatalogRepository defines the operations over product records.
type CatalogRepository interface {
	// ListProducts returns every product ordered by id.
	ListProducts(ctx context.Context) ([]*entity.Product, error)

	// FindProduct retrieves a product by id.
	FindProduct(ctx context.Context, id string) (*entity.Product, error)

	// PutProduct creates or replaces a product.
	PutProduct(ctx context.Context, product *entity.Product) error

	// DeleteProduct removes a product by id.
	DeleteProduct(ctx context.Context, id string) error
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status *entity.OrderStatus
	UserID *int64
	Limit  int
}

// OrderRepository defines the operations over order records. Orders are never deleted.
type OrderRepository interface {
	// CreateOrder persists a new order.
	CreateOrder(ctx context.Context, order *entity.Order) error

	// FindOrder retrieves an order by id.
	FindOrder(ctx context.Context, id string) (*entity.Order, error)

	// ListOrders returns orders newest first.
	ListOrders(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)

	// UpdateOrder replaces the mutable fields of an existing order.
	UpdateOrder(ctx context.Context, order *entity.Order) error
}

// SessionRepository stores per-user flow state.
type SessionRepository interface {
	GetSession(ctx context.Context, userID int64) (*entity.Session, error)
	SaveSession(ctx context.Context, session *entity.Session) error
	DeleteSession(ctx context.Context, userID int64) error
}

// BasketRepository stores per-user baskets.
type BasketRepository interface {
	// GetBasket returns the basket of userID, empty when none exists.
	GetBasket(ctx context.Context, userID int64) (*entity.Basket, error)
	SaveBasket(ctx context.Context, basket *entity.Basket) error
	DeleteBasket(ctx context.Context, userID int64) error
}
