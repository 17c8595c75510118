package model

import (
	"time"

	"storebot/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// OrderModel is the GORM-specific struct for the 'orders' table.
type OrderModel struct {
	ID               string             `gorm:"type:varchar(16);primaryKey"`
	UserID           int64              `gorm:"not null;index"`
	ChatID           int64              `gorm:"not null"`
	Username         string             `gorm:"type:varchar(64)"`
	FullName         string             `gorm:"type:varchar(255)"`
	ProductID        string             `gorm:"type:varchar(32)"`
	Medicine         string             `gorm:"type:text;not null"`
	Months           int                `gorm:"not null;default:0"`
	Quantity         int                `gorm:"not null;default:0"`
	Lines            []entity.OrderLine `gorm:"type:jsonb;serializer:json"`
	Price            string             `gorm:"type:varchar(255)"`
	Total            decimal.Decimal    `gorm:"type:numeric;not null;default:0"`
	Status           string             `gorm:"type:varchar(16);not null;default:'new';index"`
	DeliveryRegion   string             `gorm:"type:varchar(128)"`
	DeliveryDistrict string             `gorm:"type:varchar(128)"`
	DeliveryAddress  string             `gorm:"type:text"`
	Phone            string             `gorm:"type:varchar(32)"`
	Lat              *float64
	Lon              *float64
	ReceiptPhotoID   string    `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"index"`
	UpdatedAt        time.Time
	ProcessingAt     *time.Time
	CompletedAt      *time.Time
	CancelledAt      *time.Time

	StatusHistory []OrderStatusChangeModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Notes         []OrderNoteModel         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}

// OrderStatusChangeModel is one row of the append-only status history.
type OrderStatusChangeModel struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   string `gorm:"type:varchar(16);not null;index:idx_status_changes_order_seq,priority:1"`
	Seq       int    `gorm:"not null;index:idx_status_changes_order_seq,priority:2"`
	Status    string `gorm:"type:varchar(16);not null"`
	Actor     string `gorm:"type:varchar(64)"`
	Timestamp time.Time
}

// TableName explicitly sets the table name for GORM.
func (OrderStatusChangeModel) TableName() string {
	return "order_status_changes"
}

// OrderNoteModel is an operator annotation on an order.
type OrderNoteModel struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   string `gorm:"type:varchar(16);not null;index"`
	Seq       int    `gorm:"not null"`
	Text      string `gorm:"type:text;not null"`
	Actor     string `gorm:"type:varchar(64)"`
	Timestamp time.Time
}

// TableName explicitly sets the table name for GORM.
func (OrderNoteModel) TableName() string {
	return "order_notes"
}
