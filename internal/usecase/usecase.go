// Package usecase declares the application services driven by the
// delivery layer.
package usecase

import (
	"context"
	"strconv"

	"storebot/internal/domain/entity"
	"storebot/internal/fsm"

	"github.com/shopspring/decimal"
)

// UserInfo identifies the author of an inbound event.
type UserInfo struct {
	UserID   int64
	ChatID   int64
	Username string
	FullName string
}

// Actor is the status history actor label of the user.
func (u UserInfo) Actor() string {
	return "user:" + strconv.FormatInt(u.UserID, 10)
}

// AdminActor is the status history actor label of an operator.
func AdminActor(userID int64) string {
	return "admin:" + strconv.FormatInt(userID, 10)
}

// CheckoutReply is the result of one checkout step.
type CheckoutReply struct {
	Session entity.Session
	Effects []fsm.Effect
	Outcome fsm.Outcome
	// Order is set once the checkout is committed.
	Order *entity.Order
}

// CheckoutUsecase drives the checkout state machine against the stores.
type CheckoutUsecase interface {
	// SelectProduct starts a single-product checkout.
	SelectProduct(ctx context.Context, user UserInfo, productID string) (*CheckoutReply, error)

	// StartBasketCheckout starts a checkout over the user's basket.
	StartBasketCheckout(ctx context.Context, user UserInfo) (*CheckoutReply, error)

	// Handle feeds an event into the user's current checkout.
	Handle(ctx context.Context, user UserInfo, ev fsm.Event) (*CheckoutReply, error)

	// Cancel discards the user's session without persisting anything.
	Cancel(ctx context.Context, user UserInfo) (*CheckoutReply, error)

	// Current returns the user's live session, or nil when there is none.
	Current(ctx context.Context, userID int64) (*entity.Session, error)
}

// OrderUsecase owns order status changes and operator fan-out.
type OrderUsecase interface {
	// Relay forwards a committed order to the operator surface. It never fails.
	Relay(ctx context.Context, order *entity.Order)

	// Transition moves an order to status and notifies its customer.
	Transition(ctx context.Context, orderID string, status entity.OrderStatus, actor string) (*entity.Order, error)

	// AddNote appends an operator note.
	AddNote(ctx context.Context, orderID, text, actor string) (*entity.Order, error)

	// UserOrders lists the latest orders of a user.
	UserOrders(ctx context.Context, userID int64, limit int) ([]*entity.Order, error)

	// Wait blocks until pending customer notifications finish. Later
	// notifications are sent synchronously.
	Wait()
}

// CatalogUsecase serves the product catalog from a cache.
type CatalogUsecase interface {
	List(ctx context.Context) ([]*entity.Product, error)
	Get(ctx context.Context, id string) (*entity.Product, error)
	Put(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error

	// Reload refreshes the cache from the store.
	Reload(ctx context.Context) error
	// Invalidate forces the next read to reload.
	Invalidate()
}

// BasketUsecase manages per-user baskets.
type BasketUsecase interface {
	Add(ctx context.Context, userID int64, productID string) (*entity.Basket, error)
	// Lines prices the basket against the current catalog.
	Lines(ctx context.Context, userID int64) ([]entity.OrderLine, error)
	Clear(ctx context.Context, userID int64) error
}

// AdminReply is the result of one admin editing step.
type AdminReply struct {
	Session entity.Session
	Effects []fsm.Effect
	Outcome fsm.Outcome
	Product *entity.Product
	Order   *entity.Order
}

// Stats summarizes the order book.
type Stats struct {
	Orders   int
	ByStatus map[entity.OrderStatus]int
	Revenue  decimal.Decimal // Sum of exact totals of completed orders.
	Products int
}

// AdminUsecase is the operator console. Every method rejects callers
// outside the allow-list with ErrForbidden.
type AdminUsecase interface {
	IsAdmin(userID int64) bool

	ListOrders(ctx context.Context, userID int64, status *entity.OrderStatus) ([]*entity.Order, error)
	GetOrder(ctx context.Context, userID int64, orderID string) (*entity.Order, error)
	SetStatus(ctx context.Context, userID int64, orderID string, status entity.OrderStatus) (*entity.Order, error)

	ListProducts(ctx context.Context, userID int64) ([]*entity.Product, error)
	GetProduct(ctx context.Context, userID int64, productID string) (*entity.Product, error)
	DeleteProduct(ctx context.Context, userID int64, productID string) error

	BeginAddProduct(ctx context.Context, userID int64) (*AdminReply, error)
	BeginEditProduct(ctx context.Context, userID int64, productID string, field entity.ProductField) (*AdminReply, error)
	BeginOrderNote(ctx context.Context, userID int64, orderID string) (*AdminReply, error)
	HandleEdit(ctx context.Context, userID int64, ev fsm.Event) (*AdminReply, error)

	Stats(ctx context.Context, userID int64) (*Stats, error)
}
