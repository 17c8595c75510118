// Package model holds the GORM table mappings.
package model

import "time"

// ProductModel is the GORM-specific struct for the 'products' table.
type ProductModel struct {
	ID                string `gorm:"type:varchar(32);primaryKey"`
	Name              string `gorm:"type:varchar(128);not null"`
	Benefits          string `gorm:"type:text"`
	Description       string `gorm:"type:text"`
	Contraindications string `gorm:"type:text"`
	Price             string `gorm:"type:varchar(64);not null"`
	Photo             string `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}
