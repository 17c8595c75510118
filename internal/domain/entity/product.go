package entity

import (
	"strings"
	"time"
)

// Product is a catalog entry offered to users.
type Product struct {
	ID                string    `json:"id" validate:"required,slug"` // Stable slug used in callbacks.
	Name              string    `json:"name" validate:"required,max=128"`
	Benefits          string    `json:"benefits,omitempty" validate:"max=2048"`
	Description       string    `json:"description,omitempty" validate:"max=2048"`
	Contraindications string    `json:"contraindications,omitempty" validate:"max=2048"`
	Price             string    `json:"price" validate:"required,max=64"` // Display price, e.g. "150,000 UZS".
	Photo             string    `json:"photo,omitempty"`                  // Telegram file id or URL.
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// MaxProductIDLen keeps every callback payload carrying a product id
// within the 64-byte button data limit.
const MaxProductIDLen = 32

// ValidProductID reports whether id is a usable catalog slug: lowercase
// letters, digits, '_' and '-', at most MaxProductIDLen bytes.
func ValidProductID(id string) bool {
	if id == "" || len(id) > MaxProductIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}

	return true
}

// Validate checks the product against its field constraints.
func (p *Product) Validate() error {
	return validate.Struct(p)
}

// Summary returns the benefits text, falling back to the description.
func (p *Product) Summary() string {
	if strings.TrimSpace(p.Benefits) != "" {
		return p.Benefits
	}

	return p.Description
}

// ProductField names an editable product attribute.
type ProductField string

const (
	ProductFieldName              ProductField = "name"
	ProductFieldPrice             ProductField = "price"
	ProductFieldBenefits          ProductField = "benefits"
	ProductFieldContraindications ProductField = "contraindications"
	ProductFieldPhoto             ProductField = "photo"
)

// ProductFields lists the editable fields in menu order.
var ProductFields = []ProductField{
	ProductFieldName,
	ProductFieldPrice,
	ProductFieldBenefits,
	ProductFieldContraindications,
	ProductFieldPhoto,
}

// IsValid reports whether f is a known editable field.
func (f ProductField) IsValid() bool {
	for _, known := range ProductFields {
		if f == known {
			return true
		}
	}

	return false
}

// Set assigns value to the field named by f.
func (p *Product) Set(f ProductField, value string) {
	switch f {
	case ProductFieldName:
		p.Name = value
	case ProductFieldPrice:
		p.Price = value
	case ProductFieldBenefits:
		p.Benefits = value
	case ProductFieldContraindications:
		p.Contraindications = value
	case ProductFieldPhoto:
		p.Photo = value
	}
}
