package model

import (
	"time"

	"storebot/internal/domain/entity"
)

// SessionModel is the GORM-specific struct for the 'sessions' table. The
// whole flow state is kept as one JSON document.
type SessionModel struct {
	UserID    int64          `gorm:"primaryKey;autoIncrement:false"`
	Data      entity.Session `gorm:"type:jsonb;serializer:json;not null"`
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}

// BasketModel is the GORM-specific struct for the 'baskets' table.
type BasketModel struct {
	UserID    int64          `gorm:"primaryKey;autoIncrement:false"`
	Items     map[string]int `gorm:"type:jsonb;serializer:json;not null"`
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (BasketModel) TableName() string {
	return "baskets"
}

// All lists every model for migrations.
func All() []any {
	return []any{
		&ProductModel{},
		&OrderModel{},
		&OrderStatusChangeModel{},
		&OrderNoteModel{},
		&SessionModel{},
		&BasketModel{},
	}
}
