package entity

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

// Basket maps product ids to quantities for one user.
type Basket struct {
	UserID    int64          `json:"user_id"`
	Items     map[string]int `json:"items"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewBasket returns an empty basket for userID.
func NewBasket(userID int64) *Basket {
	return &Basket{UserID: userID, Items: make(map[string]int)}
}

// Add increases the quantity of productID by qty.
func (b *Basket) Add(productID string, qty int) {
	if b.Items == nil {
		b.Items = make(map[string]int)
	}
	b.Items[productID] += qty
}

// IsEmpty reports whether the basket has no items.
func (b *Basket) IsEmpty() bool {
	return b == nil || len(b.Items) == 0
}

// ProductIDs returns the basket product ids in a stable order.
func (b *Basket) ProductIDs() []string {
	if b == nil {
		return nil
	}
	ids := lo.Keys(b.Items)
	sort.Strings(ids)

	return ids
}
