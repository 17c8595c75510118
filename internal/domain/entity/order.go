package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of order lifecycle states.
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// IsValid reports whether s belongs to the status taxonomy.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusNew, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}

	return false
}

// IsTerminal reports whether s ends the lifecycle.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// StatusChange is one entry of the append-only status history.
type StatusChange struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Actor     string      `json:"actor"`
}

// DeliveryInfo is where and to whom the order is shipped.
type DeliveryInfo struct {
	Region   string   `json:"region" validate:"required"`
	District string   `json:"district,omitempty"`
	Address  string   `json:"address,omitempty"`
	Phone    string   `json:"phone" validate:"required,max=32"`
	Lat      *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lon      *float64 `json:"lon,omitempty" validate:"omitempty,longitude"`
}

// Validate checks that the delivery target is complete.
func (d *DeliveryInfo) Validate() error {
	return validate.Struct(d)
}

// HasLocation reports whether shared coordinates are attached.
func (d *DeliveryInfo) HasLocation() bool {
	return d.Lat != nil && d.Lon != nil
}

// OrderLine is a single product position of an order.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// OrderNote is an operator annotation.
type OrderNote struct {
	Text      string    `json:"text"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

// Order is a committed checkout. Only Status, StatusHistory, the status
// timestamps and Notes change after creation.
type Order struct {
	ID             string          `json:"id"`
	UserID         int64           `json:"user_id"`
	ChatID         int64           `json:"chat_id"`
	Username       string          `json:"username"`
	FullName       string          `json:"full_name"`
	ProductID      string          `json:"product_id,omitempty"`
	Medicine       string          `json:"medicine"`
	Months         int             `json:"months,omitempty"`
	Quantity       int             `json:"quantity,omitempty"`
	Lines          []OrderLine     `json:"lines,omitempty"`
	Price          string          `json:"price"`
	Total          decimal.Decimal `json:"total"`
	Status         OrderStatus     `json:"status"`
	StatusHistory  []StatusChange  `json:"status_history"`
	Delivery       DeliveryInfo    `json:"delivery_info"`
	ReceiptPhotoID string          `json:"receipt_photo_id,omitempty"`
	Notes          []OrderNote     `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"timestamp"`
	UpdatedAt      time.Time       `json:"updated_at"`
	ProcessingAt   *time.Time      `json:"processing_at,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
}

// ApplyStatus appends a history entry and updates the denormalized timestamps.
func (o *Order) ApplyStatus(status OrderStatus, actor string, at time.Time) {
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, StatusChange{
		Status:    status,
		Timestamp: at,
		Actor:     actor,
	})
	o.UpdatedAt = at

	stamp := at
	switch status {
	case OrderStatusProcessing:
		o.ProcessingAt = &stamp
	case OrderStatusCompleted:
		o.CompletedAt = &stamp
	case OrderStatusCancelled:
		o.CancelledAt = &stamp
	}
}

// CustomerName returns the best available display name.
func (o *Order) CustomerName() string {
	if o.FullName != "" {
		return o.FullName
	}
	if o.Username != "" {
		return "@" + o.Username
	}

	return "N/A"
}

// NewOrderID returns a random 8-character alphanumeric identifier.
// Uniqueness is enforced by the order stores.
func NewOrderID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
